package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

// Embedder turns texts into fixed-dimension vectors
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds the hand-tuned search parameters
type Config struct {
	KeywordBoost       float64
	RelevanceThreshold float64
}

// Index is the in-memory semantic index over the article set.
// Build replaces the whole index; there is no incremental update because
// the collector replaces the article set wholesale anyway.
type Index struct {
	mu       sync.RWMutex
	embedder Embedder
	cfg      Config

	articles []models.Article
	vectors  [][]float32
}

// NewIndex creates an empty index
func NewIndex(embedder Embedder, cfg Config) *Index {
	return &Index{embedder: embedder, cfg: cfg}
}

// Build embeds every article's title+summary and swaps the index
func (ix *Index) Build(ctx context.Context, articles []models.Article) error {
	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Document()
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed articles: %w", err)
	}
	if len(vectors) != len(articles) {
		return fmt.Errorf("embedding count mismatch: %d articles, %d vectors", len(articles), len(vectors))
	}

	ix.mu.Lock()
	ix.articles = articles
	ix.vectors = vectors
	ix.mu.Unlock()

	logger.Info("📊 semantic index built",
		zap.Int("articles", len(articles)),
	)

	return nil
}

// Size returns the number of indexed articles
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.articles)
}

// Search runs hybrid retrieval: max-pooled cosine similarity over query
// variants plus a keyword boost when the literal query appears in the
// article text. Results carry their boosted score and are cut at topK
// and at the relevance threshold.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]models.Article, error) {
	ix.mu.RLock()
	articles := ix.articles
	vectors := ix.vectors
	ix.mu.RUnlock()

	if len(articles) == 0 {
		return nil, nil
	}

	// Short proper-noun queries often arrive all lower-case ("kast");
	// a title-cased variant recovers the embedding quality of the name.
	variants := []string{query}
	if query == strings.ToLower(query) {
		if titled := titleCase(query); titled != query {
			variants = append(variants, titled)
		}
	}

	queryVectors, err := ix.embedder.EmbedBatch(ctx, variants)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	queryLower := strings.ToLower(query)

	type scored struct {
		idx   int
		score float64
	}

	results := make([]scored, 0, len(articles))
	for i := range articles {
		// Max-pool over the raw similarities. Cosine lives in [-1, 1],
		// so the accumulator must not floor negatives at zero.
		score := math.Inf(-1)
		for _, qv := range queryVectors {
			if sim := cosineSimilarity(qv, vectors[i]); sim > score {
				score = sim
			}
		}

		content := strings.ToLower(articles[i].Title + " " + articles[i].Summary)
		if queryLower != "" && strings.Contains(content, queryLower) {
			score += ix.cfg.KeywordBoost
		}

		results = append(results, scored{idx: i, score: score})
	}

	// Stable sort keeps ties in original article order
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	if topK > len(results) {
		topK = len(results)
	}

	// Threshold applies to the boosted value
	top := make([]models.Article, 0, topK)
	for _, r := range results[:topK] {
		if r.score <= ix.cfg.RelevanceThreshold {
			continue
		}
		article := articles[r.idx]
		article.Score = r.score
		top = append(top, article)
	}

	logger.Debug("semantic search",
		zap.String("query", query),
		zap.Int("variants", len(variants)),
		zap.Int("results", len(top)),
	)

	return top, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float32
	for i := 0; i < len(a); i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return float64(dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))))
}

// titleCase upper-cases the first letter of each word
func titleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			startOfWord = true
			b.WriteRune(r)
			continue
		}
		if startOfWord {
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
