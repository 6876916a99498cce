package articles

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

// Repository persists scraped articles in Postgres so a restart can
// warm the store before the first scrape completes.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new Postgres article repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveAll upserts a batch of articles keyed by URL. Sentiment columns
// are overwritten so re-enriched labels survive.
func (r *Repository) SaveAll(ctx context.Context, articles []models.Article) error {
	query := `
		INSERT INTO articles (url, title, summary, content, section, sentiment, sentiment_confidence, sentiment_rationale, scraped_at)
		VALUES (:url, :title, :summary, :content, :section, :sentiment, :sentiment_confidence, :sentiment_rationale, :scraped_at)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			content = EXCLUDED.content,
			section = EXCLUDED.section,
			sentiment = EXCLUDED.sentiment,
			sentiment_confidence = EXCLUDED.sentiment_confidence,
			sentiment_rationale = EXCLUDED.sentiment_rationale,
			scraped_at = EXCLUDED.scraped_at
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range articles {
		if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
			return fmt.Errorf("failed to upsert article %s: %w", a.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit article batch: %w", err)
	}

	logger.Debug("article batch saved",
		zap.Int("count", len(articles)),
	)

	return nil
}

// LoadRecent returns the most recently scraped articles, newest first
func (r *Repository) LoadRecent(ctx context.Context, limit int) ([]models.Article, error) {
	query := `
		SELECT url, title, summary, content, section, sentiment, sentiment_confidence, sentiment_rationale, scraped_at
		FROM articles
		ORDER BY scraped_at DESC
		LIMIT $1
	`

	articles := make([]models.Article, 0)
	if err := r.db.SelectContext(ctx, &articles, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	return articles, nil
}

// Count returns how many articles are stored
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
