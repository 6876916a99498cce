package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/pkg/logger"
)

// Client calls a hosted multilingual star-rating sentiment model
// (HF inference protocol: text in, ranked "N stars" labels out).
type Client struct {
	url    string
	apiKey string
	client *http.Client
}

// NewClient creates new inference client
func NewClient(cfg *config.SentimentConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:    cfg.ModelURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Rate classifies the text and returns the top star rating with its score
func (c *Client) Rate(ctx context.Context, text string) (int, float64, error) {
	reqBody, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, 0, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	// The API nests candidates one level deep: [[{label, score}, ...]]
	var result [][]labelScore
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result) == 0 || len(result[0]) == 0 {
		return 0, 0, fmt.Errorf("empty response from sentiment model")
	}

	best := result[0][0]
	for _, cand := range result[0][1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}

	stars, err := parseStars(best.Label)
	if err != nil {
		return 0, 0, err
	}

	logger.Debug("sentiment model response",
		zap.Int("stars", stars),
		zap.Float64("score", best.Score),
		zap.Duration("latency", time.Since(startTime)),
	)

	return stars, best.Score, nil
}

// parseStars extracts N from labels like "4 stars" or "1 star"
func parseStars(label string) (int, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, fmt.Errorf("unparseable model label %q", label)
	}
	stars, err := strconv.Atoi(fields[0])
	if err != nil || stars < 1 || stars > 5 {
		return 0, fmt.Errorf("unparseable model label %q", label)
	}
	return stars, nil
}
