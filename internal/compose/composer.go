package compose

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Zinko5/newsbot/internal/adapters/ai"
	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
	"go.uber.org/zap"
)

const (
	maxAnswerArticles = 3
	maxSourceEntries  = 3
	summaryChars      = 150
	sourceTitleChars  = 50
	weatherScore      = 0.99
)

// Request carries everything needed to compose one answer turn.
type Request struct {
	Question     string
	Articles     []models.Article
	PriorContext []models.Article
	History      []models.ChatTurn
	FollowUp     bool
	Stats        models.SentimentStats
	Weather      *models.WeatherReport
}

// Result is the composed answer. Generative reports whether a language
// model produced the text; when it did not, FallbackReason says why.
type Result struct {
	Text           string
	Generative     bool
	FallbackReason string
}

// Composer renders answers from search results, preferring a chat
// provider and falling back to a fixed template when none is usable.
type Composer struct {
	provider     ai.Provider
	historyTurns int
}

func NewComposer(provider ai.Provider, historyTurns int) *Composer {
	return &Composer{
		provider:     provider,
		historyTurns: historyTurns,
	}
}

// Compose builds the answer text for a request. A weather report, when
// present, is prepended to the article set as a synthetic high-score
// item so both rendering modes surface it first.
func (c *Composer) Compose(ctx context.Context, req Request) Result {
	if req.Weather != nil {
		req.Articles = append([]models.Article{weatherArticle(req.Weather)}, req.Articles...)
	}

	if c.provider == nil || !c.provider.IsEnabled() {
		return Result{
			Text:           c.renderTemplate(req),
			FallbackReason: "no generative provider configured",
		}
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		logger.Warn("generative compose failed, using template",
			zap.String("provider", c.provider.GetName()),
			zap.Error(err),
		)
		return Result{
			Text:           c.renderTemplate(req),
			FallbackReason: err.Error(),
		}
	}

	return Result{
		Text:       text + sourcesFooter(req.Articles),
		Generative: true,
	}
}

func (c *Composer) generate(ctx context.Context, req Request) (string, error) {
	in := ai.PromptInput{
		Question:     req.Question,
		Articles:     req.Articles,
		PriorContext: req.PriorContext,
		FollowUp:     req.FollowUp,
		Stats:        req.Stats,
		Weather:      req.Weather,
	}

	history := req.History
	if c.historyTurns > 0 && len(history) > c.historyTurns {
		history = history[len(history)-c.historyTurns:]
	}

	answer, err := c.provider.Chat(ctx, ai.BuildSystemPrompt(in), history, ai.BuildUserPrompt(in))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("provider %s returned an empty answer", c.provider.GetName())
	}
	return answer, nil
}

func (c *Composer) renderTemplate(req Request) string {
	if len(req.Articles) == 0 {
		return "No encontré noticias sobre ese tema. 🔍\n\n" +
			"Puedes intentar con otras palabras o preguntarme qué noticias tengo hoy."
	}

	var b strings.Builder
	b.WriteString("Esto es lo que encontré:\n")

	for i, a := range req.Articles {
		if i >= maxAnswerArticles {
			break
		}
		fmt.Fprintf(&b, "\n%d. *%s*\n", i+1, a.Title)
		fmt.Fprintf(&b, "   Relevancia: %s %d%%\n", relevanceBar(a.Score), int(math.Round(a.Score*100)))
		if summary := strings.TrimSpace(a.Summary); summary != "" {
			fmt.Fprintf(&b, "   %s\n", cutRunes(summary, summaryChars))
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "   🔗 %s\n", a.URL)
		}
	}

	b.WriteString(sourcesFooter(req.Articles))
	return b.String()
}

// sourcesFooter lists up to three source articles with their sentiment
// when it has been classified. Synthetic entries without a URL are
// skipped.
func sourcesFooter(articles []models.Article) string {
	var b strings.Builder
	n := 0
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if n == 0 {
			b.WriteString("\n📰 Fuentes:\n")
		}
		n++
		fmt.Fprintf(&b, "%d. %s", n, cutRunes(a.Title, sourceTitleChars))
		if a.IsEnriched() {
			fmt.Fprintf(&b, " %s %s (%s)", a.Sentiment.Emoji(), a.Sentiment, a.SentimentConfidence)
		}
		fmt.Fprintf(&b, "\n   %s\n", a.URL)
		if n >= maxSourceEntries {
			break
		}
	}
	return b.String()
}

func weatherArticle(w *models.WeatherReport) models.Article {
	return models.Article{
		Title:   fmt.Sprintf("Clima en %s", w.City),
		Summary: fmt.Sprintf("%s %s, %.1f°C en %s.", w.Icon, w.Condition, w.Temperature, w.City),
		Content: fmt.Sprintf("Ahora mismo en %s: %s %s con %.1f°C.", w.City, w.Icon, w.Condition, w.Temperature),
		Score:   weatherScore,
	}
}

// relevanceBar renders one block per 20 points of score; scores below
// 0.2 show an empty bar. Boosted scores above 1 are capped at 5 blocks.
func relevanceBar(score float64) string {
	blocks := int(score * 100 / 20)
	if blocks < 0 {
		blocks = 0
	}
	if blocks > 5 {
		blocks = 5
	}
	return strings.Repeat("█", blocks)
}

func cutRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
