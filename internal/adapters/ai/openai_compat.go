package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

const (
	groqBaseURL     = "https://api.groq.com/openai/v1"
	groqModel       = "llama-3.1-8b-instant"
	openaiModel     = "gpt-4o-mini"
	defaultTimeout  = 30 * time.Second
	maxAnswerTokens = 500
)

// CompatProvider is a chat provider speaking the OpenAI chat-completions
// protocol. Groq exposes the same API under its own base URL, so both
// backends share this implementation.
type CompatProvider struct {
	name    string
	client  *openai.Client
	model   string
	enabled bool
}

// NewGroqProvider creates the Groq chat provider
func NewGroqProvider(cfg *config.AIProviderConfig) *CompatProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = groqModel
	}
	return newCompatProvider("groq", cfg, baseURL, model)
}

// NewOpenAIProvider creates the OpenAI chat provider
func NewOpenAIProvider(cfg *config.AIProviderConfig) *CompatProvider {
	model := cfg.Model
	if model == "" {
		model = openaiModel
	}
	return newCompatProvider("openai", cfg, cfg.BaseURL, model)
}

func newCompatProvider(name string, cfg *config.AIProviderConfig, baseURL, model string) *CompatProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &CompatProvider{
		name:    name,
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		enabled: cfg.Enabled && cfg.APIKey != "",
	}
}

func (p *CompatProvider) GetName() string {
	return p.name
}

func (p *CompatProvider) IsEnabled() bool {
	return p.enabled
}

// Chat sends the conversation to the backend and returns the answer text
func (p *CompatProvider) Chat(ctx context.Context, system string, history []models.ChatTurn, user string) (string, error) {
	if !p.enabled {
		return "", fmt.Errorf("provider %s is not enabled", p.name)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	ctxWithTimeout, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	startTime := time.Now()
	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   maxAnswerTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", p.name)
	}

	logger.Debug("generative answer",
		zap.String("provider", p.name),
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}
