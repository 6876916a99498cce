package embeddings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/pkg/logger"
)

// Repository persists embeddings in Postgres.
// Not a cache in the eviction sense: vectors are deterministic per text and
// model, so they are kept permanently and reused across re-index cycles.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new Postgres embedding repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves a stored embedding and bumps its usage counters
func (r *Repository) Get(ctx context.Context, textHash string) ([]float32, bool) {
	query := `
		UPDATE embedding_cache
		SET last_used_at = NOW(), use_count = use_count + 1
		WHERE text_hash = $1
		RETURNING embedding
	`

	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, textHash).Scan(&raw); err != nil {
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal(raw, &embedding); err != nil {
		logger.Warn("failed to deserialize stored embedding", zap.Error(err))
		return nil, false
	}

	return embedding, true
}

// Set stores an embedding, bumping counters if the text was already stored
func (r *Repository) Set(ctx context.Context, textHash string, embedding []float32, model string, textLength int) error {
	raw, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}

	query := `
		INSERT INTO embedding_cache (text_hash, embedding, model, text_length, created_at, last_used_at, use_count)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
		ON CONFLICT (text_hash) DO UPDATE SET
			last_used_at = NOW(),
			use_count = embedding_cache.use_count + 1
	`

	if _, err := r.db.ExecContext(ctx, query, textHash, raw, model, textLength); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}

// Count returns how many embeddings are stored
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embedding_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}
