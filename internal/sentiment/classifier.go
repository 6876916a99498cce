package sentiment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

// maxModelChars bounds the input sent to the star-rating model
const maxModelChars = 512

// StarModel is the backing multilingual star-rating sentiment model.
// It rates a short text 1-5 stars with a 0-1 confidence score.
type StarModel interface {
	Rate(ctx context.Context, text string) (stars int, score float64, err error)
}

// Result is the outcome of classifying one text
type Result struct {
	Label      models.Sentiment
	Confidence models.Confidence
	Rationale  string
}

// Classifier assigns sentiment labels with a two-stage hybrid policy:
// domain keywords first, star-rating model as fallback.
type Classifier struct {
	lexicon *Lexicon
	model   StarModel
}

// NewClassifier creates a classifier; model may be nil (keyword-only mode)
func NewClassifier(lexicon *Lexicon, model StarModel) *Classifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Classifier{lexicon: lexicon, model: model}
}

// Classify labels a single text. It is a pure function over the text:
// running it twice yields the same result.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{models.SentimentNeutral, models.ConfidenceLow, "sin contenido"}
	}

	textLower := strings.ToLower(text)

	// Stage 1: keyword override. Negative terms win outright, even when
	// positive terms also match.
	if n := c.lexicon.CountNegative(textLower); n > 0 {
		return Result{models.SentimentNegative, models.ConfidenceHigh, pluralTerms(n, "negativo")}
	}
	if n := c.lexicon.CountPositive(textLower); n > 0 {
		return Result{models.SentimentPositive, models.ConfidenceHigh, pluralTerms(n, "positivo")}
	}

	// Stage 2: star-rating model fallback
	if c.model == nil {
		return Result{models.SentimentNeutral, models.ConfidenceLow, "sin modelo"}
	}

	stars, score, err := c.model.Rate(ctx, truncateRunes(text, maxModelChars))
	if err != nil {
		logger.Warn("sentiment model failed", zap.Error(err))
		return Result{models.SentimentNeutral, models.ConfidenceLow, "error de análisis"}
	}

	var label models.Sentiment
	switch {
	case stars <= 2:
		label = models.SentimentNegative
	case stars == 3:
		label = models.SentimentNeutral
	default:
		label = models.SentimentPositive
	}

	confidence := models.ConfidenceMedium
	if score > 0.7 {
		confidence = models.ConfidenceHigh
	}

	return Result{label, confidence, fmt.Sprintf("modelo: %d★ (confianza: %.2f)", stars, score)}
}

// EnrichAll annotates every article in place and reports progress through
// the callback after each item. Idempotent: already-labeled articles get
// the same labels again.
func (c *Classifier) EnrichAll(ctx context.Context, articles []models.Article, progress func(analyzed int)) {
	for i := range articles {
		res := c.Classify(ctx, articles[i].Title+" "+articles[i].Content)

		articles[i].Sentiment = res.Label
		articles[i].SentimentConfidence = res.Confidence
		articles[i].SentimentRationale = res.Rationale

		if progress != nil {
			progress(i + 1)
		}
	}

	logger.Info("🎭 sentiment enrichment complete",
		zap.Int("articles", len(articles)),
	)
}

// Tally counts labels over an article set
func Tally(articles []models.Article) models.SentimentStats {
	stats := models.SentimentStats{Total: len(articles)}
	for _, a := range articles {
		switch a.Sentiment {
		case models.SentimentPositive:
			stats.Positive++
		case models.SentimentNegative:
			stats.Negative++
		default:
			stats.Neutral++
		}
	}
	return stats
}

// FilterByLabel returns articles with the given label, preserving order
func FilterByLabel(articles []models.Article, label models.Sentiment) []models.Article {
	filtered := make([]models.Article, 0)
	for _, a := range articles {
		if a.Sentiment == label {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// Summary renders the Spanish sentiment overview text
func Summary(stats models.SentimentStats) string {
	if stats.Total == 0 {
		return "No hay noticias para analizar."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Resumen de Sentimientos* (%d noticias):\n\n", stats.Total)
	fmt.Fprintf(&b, "😊 *Positivas:* %d (%.1f%%)\n", stats.Positive, stats.Percentage(models.SentimentPositive))
	fmt.Fprintf(&b, "😐 *Neutrales:* %d (%.1f%%)\n", stats.Neutral, stats.Percentage(models.SentimentNeutral))
	fmt.Fprintf(&b, "😞 *Negativas:* %d (%.1f%%)\n", stats.Negative, stats.Percentage(models.SentimentNegative))
	return b.String()
}

func pluralTerms(n int, kind string) string {
	if n == 1 {
		return fmt.Sprintf("1 término %s", kind)
	}
	return fmt.Sprintf("%d términos %ss", n, kind)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
