package ai

import (
	"context"

	"github.com/Zinko5/newsbot/pkg/models"
)

// Provider represents a generative chat backend
type Provider interface {
	// GetName returns provider name
	GetName() string

	// IsEnabled returns whether provider is configured and usable
	IsEnabled() bool

	// Chat sends the system prompt, bounded history and user turn,
	// returning the generated answer text
	Chat(ctx context.Context, system string, history []models.ChatTurn, user string) (string, error)
}

// FirstEnabled returns the first usable provider, or nil when none is
func FirstEnabled(providers []Provider) Provider {
	for _, p := range providers {
		if p != nil && p.IsEnabled() {
			return p
		}
	}
	return nil
}
