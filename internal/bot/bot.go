package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/internal/compose"
	"github.com/Zinko5/newsbot/internal/sentiment"
	"github.com/Zinko5/newsbot/internal/session"
	"github.com/Zinko5/newsbot/internal/status"
	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

const (
	maxFilterResults = 5
	warmStartLimit   = 300
)

// Collector gathers fresh articles from the configured sources
type Collector interface {
	Collect(ctx context.Context) []models.Article
}

// Enricher labels articles with sentiment in place
type Enricher interface {
	EnrichAll(ctx context.Context, articles []models.Article, progress func(analyzed int))
}

// Searcher is the semantic index over the working article set
type Searcher interface {
	Build(ctx context.Context, articles []models.Article) error
	Search(ctx context.Context, query string, topK int) ([]models.Article, error)
	Size() int
}

// WeatherService resolves weather questions to a current report
type WeatherService interface {
	ForQuestion(ctx context.Context, question string) *models.WeatherReport
}

// Composer renders the final answer text
type Composer interface {
	Compose(ctx context.Context, req compose.Request) compose.Result
}

// ArticleStore persists the working set between restarts
type ArticleStore interface {
	SaveAll(ctx context.Context, articles []models.Article) error
	LoadRecent(ctx context.Context, limit int) ([]models.Article, error)
}

// Deps wires the orchestrator. Store and Weather may be nil.
type Deps struct {
	Collector  Collector
	Classifier Enricher
	Index      Searcher
	Weather    WeatherService
	Composer   Composer
	Sessions   *session.Store
	Tracker    *status.Tracker
	Store      ArticleStore
	TopK       int
}

// Bot orchestrates the collect-enrich-index pipeline and answers
// questions against the resulting working set.
type Bot struct {
	collector  Collector
	classifier Enricher
	index      Searcher
	weather    WeatherService
	composer   Composer
	sessions   *session.Store
	tracker    *status.Tracker
	store      ArticleStore
	topK       int

	mu       sync.RWMutex
	articles []models.Article

	initializing atomic.Bool
	initialized  atomic.Bool
}

// New creates new bot orchestrator
func New(deps Deps) *Bot {
	return &Bot{
		collector:  deps.Collector,
		classifier: deps.Classifier,
		index:      deps.Index,
		weather:    deps.Weather,
		composer:   deps.Composer,
		sessions:   deps.Sessions,
		tracker:    deps.Tracker,
		store:      deps.Store,
		topK:       deps.TopK,
	}
}

// Initialize runs the pipeline in the background. Concurrent calls
// coalesce: while one run is in flight the rest are no-ops, so the
// periodic refresh can fire blindly.
func (b *Bot) Initialize(ctx context.Context) {
	if !b.initializing.CompareAndSwap(false, true) {
		logger.Debug("initialization already in progress, skipping")
		return
	}
	b.tracker.SetInitializing(true)

	go func() {
		defer func() {
			b.initializing.Store(false)
			b.tracker.SetInitializing(false)
		}()

		if err := b.runPipeline(ctx); err != nil {
			logger.Error("initialization failed", zap.Error(err))
			return
		}

		b.initialized.Store(true)
		b.tracker.SetInitialized(true)
	}()
}

// Ready reports whether the bot has a searchable working set
func (b *Bot) Ready() bool {
	return b.initialized.Load()
}

// Articles returns a snapshot of the current working set
func (b *Bot) Articles() []models.Article {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Article, len(b.articles))
	copy(out, b.articles)
	return out
}

func (b *Bot) setArticles(articles []models.Article) {
	b.mu.Lock()
	b.articles = articles
	b.mu.Unlock()
}

// runPipeline executes collect -> enrich -> persist -> index
func (b *Bot) runPipeline(ctx context.Context) error {
	b.warmStart(ctx)

	b.tracker.SetAction("Leyendo noticias de El Deber...", 5)
	collected := b.collector.Collect(ctx)
	if len(collected) == 0 {
		if b.initialized.Load() {
			logger.Warn("collection returned nothing, keeping previous working set")
			return nil
		}
		return fmt.Errorf("no articles collected")
	}
	b.tracker.SetNewsCount(len(collected))

	b.tracker.SetAction("Analizando sentimientos...", 50)
	total := len(collected)
	b.classifier.EnrichAll(ctx, collected, func(analyzed int) {
		b.tracker.SetAnalyzed(analyzed)
		b.tracker.SetAction("Analizando sentimientos...", 50+30*analyzed/total)
	})

	if b.store != nil {
		if err := b.store.SaveAll(ctx, collected); err != nil {
			logger.Warn("failed to persist article batch", zap.Error(err))
		}
	}

	b.tracker.SetAction("Construyendo índice semántico...", 85)
	if err := b.index.Build(ctx, collected); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	b.setArticles(collected)
	b.tracker.SetAction("¡Listo!", 100)

	logger.Info("✅ pipeline finished",
		zap.Int("articles", len(collected)),
	)

	return nil
}

// warmStart restores the last persisted batch so the bot can answer
// while the first scrape is still running. Only useful before the
// first successful pipeline run.
func (b *Bot) warmStart(ctx context.Context) {
	if b.store == nil || b.initialized.Load() {
		return
	}

	cached, err := b.store.LoadRecent(ctx, warmStartLimit)
	if err != nil || len(cached) == 0 {
		return
	}

	b.tracker.SetAction("Restaurando noticias guardadas...", 3)
	if err := b.index.Build(ctx, cached); err != nil {
		logger.Warn("warm start index build failed", zap.Error(err))
		return
	}

	b.setArticles(cached)
	b.tracker.SetNewsCount(len(cached))
	b.initialized.Store(true)
	b.tracker.SetInitialized(true)

	logger.Info("♻️ warm start from persisted articles",
		zap.Int("articles", len(cached)),
	)
}

// Answer produces the reply for one question within a session. It
// never panics outward: any failure becomes an apology string.
func (b *Bot) Answer(ctx context.Context, question, sessionID string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while answering",
				zap.Any("panic", r),
				zap.String("session", sessionID),
			)
			answer = "❌ Error interno. Intenta de nuevo en un momento."
		}
	}()

	question = strings.TrimSpace(question)
	if question == "" {
		return "Hazme una pregunta sobre las noticias de hoy. 📰"
	}

	if !b.initialized.Load() {
		if b.initializing.Load() {
			return "⏳ Todavía estoy leyendo las noticias de hoy. Inténtalo en unos segundos."
		}
		return "Aún no tengo noticias cargadas. Intenta de nuevo más tarde."
	}

	working := b.Articles()

	if session.IsSentimentSummaryQuery(question) {
		text := sentiment.Summary(sentiment.Tally(working))
		b.sessions.Update(sessionID, question, text, nil)
		return text
	}

	if label := session.DetectSentimentQuery(question); label != "" {
		text, shown := b.sentimentListing(working, label)
		b.sessions.Update(sessionID, question, text, shown)
		return text
	}

	followUp := session.IsFollowUp(question)
	prior := b.sessions.Context(sessionID)

	var results []models.Article
	if followUp && len(prior) > 0 {
		// stay on the articles the user is referring to
		results = prior
	} else {
		var err error
		results, err = b.index.Search(ctx, question, b.topK)
		if err != nil {
			logger.Error("search failed",
				zap.String("question", question),
				zap.Error(err),
			)
		}
	}

	var weather *models.WeatherReport
	if b.weather != nil {
		weather = b.weather.ForQuestion(ctx, question)
	}

	res := b.composer.Compose(ctx, compose.Request{
		Question:     question,
		Articles:     results,
		PriorContext: prior,
		History:      b.sessions.History(sessionID),
		FollowUp:     followUp,
		Stats:        sentiment.Tally(working),
		Weather:      weather,
	})

	if !res.Generative {
		logger.Debug("templated answer",
			zap.String("reason", res.FallbackReason),
		)
	}

	b.sessions.Update(sessionID, question, res.Text, results)
	return res.Text
}

// sentimentListing renders the articles matching a sentiment label,
// capped at maxFilterResults with a remainder note.
func (b *Bot) sentimentListing(working []models.Article, label models.Sentiment) (string, []models.Article) {
	matches := sentiment.FilterByLabel(working, label)
	if len(matches) == 0 {
		return fmt.Sprintf("Hoy no tengo noticias con tono %s. %s", strings.ToLower(string(label)), label.Emoji()), nil
	}

	shown := matches
	if len(shown) > maxFilterResults {
		shown = shown[:maxFilterResults]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Noticias con tono %s (%d):\n", label.Emoji(), strings.ToLower(string(label)), len(matches))
	for i, a := range shown {
		fmt.Fprintf(&sb, "\n%d. *%s*\n", i+1, a.Title)
		if a.SentimentRationale != "" {
			fmt.Fprintf(&sb, "   💭 %s\n", a.SentimentRationale)
		}
		if a.URL != "" {
			fmt.Fprintf(&sb, "   🔗 %s\n", a.URL)
		}
	}
	if rest := len(matches) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "\n...y %d más.", rest)
	}

	return sb.String(), shown
}
