package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/pkg/logger"
)

// Repository interface for storage implementations.
// Embeddings are deterministic and expensive, so they are stored
// permanently to avoid redundant API calls across re-index cycles.
type Repository interface {
	Get(ctx context.Context, textHash string) ([]float32, bool)
	Set(ctx context.Context, textHash string, embedding []float32, model string, textLength int) error
}

// Client generates embeddings via the OpenAI API with optional deduplication
type Client struct {
	repository   Repository
	openaiClient *openai.Client
	model        openai.EmbeddingModel
}

// Config for embedding client
type Config struct {
	OpenAIClient *openai.Client
	Repository   Repository // Optional repository for deduplication
	Model        openai.EmbeddingModel
}

// NewClient creates new embedding client
func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.AdaEmbeddingV2
	}

	if cfg.Repository != nil {
		logger.Info("embedding deduplication enabled")
	}

	return &Client{
		openaiClient: cfg.OpenAIClient,
		repository:   cfg.Repository,
		model:        model,
	}
}

// EmbedBatch creates embeddings for multiple texts, deduplicating through
// the repository and batching API calls (up to 2048 inputs per request).
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if c.openaiClient == nil {
		return nil, fmt.Errorf("OpenAI embedding client not configured - please set OPENAI_API_KEY")
	}

	const maxBatchSize = 2048

	all := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		var missingIndices []int
		var missingTexts []string

		for j, text := range batch {
			if c.repository != nil {
				if existing, found := c.repository.Get(ctx, hashText(text)); found {
					all[i+j] = existing
					continue
				}
			}
			missingIndices = append(missingIndices, i+j)
			missingTexts = append(missingTexts, text)
		}

		if len(missingTexts) == 0 {
			logger.Debug("embedding batch fully deduplicated",
				zap.Int("batch_size", len(batch)),
			)
			continue
		}

		vectors, err := c.embedWithRetry(ctx, missingTexts, 3)
		if err != nil {
			return nil, fmt.Errorf("embedding API failed after retries: %w", err)
		}
		if len(vectors) != len(missingTexts) {
			return nil, fmt.Errorf("embedding response size mismatch: expected %d, got %d", len(missingTexts), len(vectors))
		}

		for j, vector := range vectors {
			all[missingIndices[j]] = vector

			if c.repository != nil {
				if err := c.repository.Set(ctx, hashText(missingTexts[j]), vector, string(c.model), len(missingTexts[j])); err != nil {
					logger.Warn("failed to store embedding in repository", zap.Error(err))
				}
			}
		}

		logger.Debug("embedding batch generated",
			zap.Int("batch_size", len(batch)),
			zap.Int("deduplicated", len(batch)-len(missingTexts)),
			zap.Int("generated", len(missingTexts)),
		)
	}

	return all, nil
}

// embedWithRetry calls the embeddings API with exponential backoff
func (c *Client) embedWithRetry(ctx context.Context, texts []string, maxRetries int) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			logger.Debug("retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}

		resp, err := c.openaiClient.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: c.model,
			Input: texts,
		})
		if err == nil {
			vectors := make([][]float32, len(resp.Data))
			for i, data := range resp.Data {
				vectors[i] = data.Embedding
			}
			return vectors, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			logger.Warn("non-retryable embedding API error, aborting", zap.Error(err))
			return nil, err
		}

		logger.Warn("retryable embedding API error",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

// isRetryableError checks if error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= 500
	}

	errStr := err.Error()
	for _, marker := range []string{
		"429", "rate limit",
		"timeout", "deadline exceeded",
		"connection refused", "connection reset",
		"500", "502", "503",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}

	return false
}

// hashText creates the SHA256 repository key for a text
func hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
