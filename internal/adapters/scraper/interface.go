package scraper

import (
	"context"
	"strings"
	"sync"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
	"go.uber.org/zap"
)

// Source represents a news source
type Source interface {
	// Name returns source name
	Name() string

	// Fetch collects the latest articles from the source
	Fetch(ctx context.Context) ([]models.Article, error)
}

// Collector aggregates articles from multiple sources
type Collector struct {
	sources []Source
}

// NewCollector creates new article collector
func NewCollector(sources ...Source) *Collector {
	return &Collector{sources: sources}
}

// Collect fetches from all sources in parallel. A failing source is
// logged and skipped, never aborting the batch. Duplicate URLs keep
// the first occurrence.
func (c *Collector) Collect(ctx context.Context) []models.Article {
	type result struct {
		source   string
		articles []models.Article
		err      error
	}

	results := make(chan result, len(c.sources))
	var wg sync.WaitGroup

	for _, source := range c.sources {
		wg.Add(1)
		go func(s Source) {
			defer wg.Done()
			articles, err := s.Fetch(ctx)
			results <- result{source: s.Name(), articles: articles, err: err}
		}(source)
	}

	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	all := make([]models.Article, 0)

	for res := range results {
		// A failing source may still return a partial batch
		// (e.g. cancellation mid-scrape); keep what it got
		if res.err != nil {
			logger.Warn("source fetch failed",
				zap.String("source", res.source),
				zap.Int("partial", len(res.articles)),
				zap.Error(res.err),
			)
		}
		for _, a := range res.articles {
			key := strings.TrimSpace(a.URL)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, a)
		}
	}

	logger.Info("📰 collection finished",
		zap.Int("sources", len(c.sources)),
		zap.Int("articles", len(all)),
	)

	return all
}
