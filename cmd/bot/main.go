package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/internal/adapters/ai"
	"github.com/Zinko5/newsbot/internal/adapters/articles"
	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/internal/adapters/database"
	embeddingsRepo "github.com/Zinko5/newsbot/internal/adapters/embeddings"
	"github.com/Zinko5/newsbot/internal/adapters/inference"
	"github.com/Zinko5/newsbot/internal/adapters/scraper"
	"github.com/Zinko5/newsbot/internal/adapters/telegram"
	"github.com/Zinko5/newsbot/internal/adapters/weather"
	"github.com/Zinko5/newsbot/internal/bot"
	"github.com/Zinko5/newsbot/internal/compose"
	"github.com/Zinko5/newsbot/internal/health"
	"github.com/Zinko5/newsbot/internal/search"
	"github.com/Zinko5/newsbot/internal/sentiment"
	"github.com/Zinko5/newsbot/internal/session"
	"github.com/Zinko5/newsbot/internal/status"
	"github.com/Zinko5/newsbot/pkg/embeddings"
	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/worker"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("News Assistant starting...",
		zap.Strings("sections", cfg.Scraper.Sections),
		zap.Bool("generative", cfg.AI.GenerativeEnabled()),
	)

	// Database is optional: without it the bot runs memory-only
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	tracker := status.NewTracker()
	newsBot, err := buildBot(cfg, db, tracker)
	if err != nil {
		return err
	}

	// Kick off the first pipeline run and refresh on an interval.
	// Overlapping runs coalesce inside the bot.
	refresher := worker.NewPeriodicWorker(worker.FuncWorker{
		WorkerName: "news-refresh",
		Fn: func(ctx context.Context) error {
			newsBot.Initialize(ctx)
			return nil
		},
	}, cfg.Scraper.RefreshInterval)
	refresher.Start(ctx)
	defer refresher.Stop(10 * time.Second)

	// Health and status endpoints
	healthServer := health.NewServer(cfg.Health.Port, db, tracker)
	go func() {
		if err := healthServer.Start(); err != nil {
			logger.Error("health server error", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		healthServer.Stop(shutdownCtx)
	}()

	// Telegram front-end
	if cfg.Telegram.BotToken != "" {
		tgBot, err := telegram.NewBot(&cfg.Telegram, newsBot)
		if err != nil {
			logger.Error("failed to create telegram bot", zap.Error(err))
		} else {
			go func() {
				if err := tgBot.Start(ctx); err != nil && err != context.Canceled {
					logger.Error("telegram bot error", zap.Error(err))
				}
			}()
			logger.Info("📱 Telegram bot started")
		}
	} else {
		logger.Warn("no telegram token configured, only HTTP endpoints are available")
	}

	// Keep service running
	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	return nil
}

// initDatabase connects and migrates when a database is configured
func initDatabase(cfg *config.Config) (*database.DB, error) {
	if !cfg.Database.IsConfigured() {
		logger.Info("database not configured, running memory-only")
		return nil, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrationsPath := "./migrations"
	if err := database.RunMigrations(db.Conn(), migrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// buildBot wires every adapter into the orchestrator
func buildBot(cfg *config.Config, db *database.DB, tracker *status.Tracker) (*bot.Bot, error) {
	if cfg.AI.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("an OpenAI API key is required for embeddings")
	}

	// Scraper with progress wired to the status tracker; the scrape
	// covers roughly the first 45% of initialization
	eldeber := scraper.NewElDeber(&cfg.Scraper)
	eldeber.OnProgress = func(done, total int) {
		tracker.SetAction("Leyendo noticias de El Deber...", 45*done/total)
	}
	collector := scraper.NewCollector(eldeber)

	// Embeddings, deduplicated through Postgres when available
	var embRepo embeddings.Repository
	var store bot.ArticleStore
	if db != nil {
		embRepo = embeddingsRepo.NewRepository(db.DB())
		store = articles.NewRepository(db.DB())
	}
	embedder := embeddings.NewClient(embeddings.Config{
		OpenAIClient: openai.NewClient(cfg.AI.OpenAI.APIKey),
		Repository:   embRepo,
		Model:        openai.EmbeddingModel(cfg.AI.EmbeddingModel),
	})

	index := search.NewIndex(embedder, search.Config{
		KeywordBoost:       cfg.Search.KeywordBoost,
		RelevanceThreshold: cfg.Search.RelevanceThreshold,
	})

	classifier := sentiment.NewClassifier(sentiment.DefaultLexicon(), inference.NewClient(&cfg.Sentiment))

	// Chat providers: Groq first, OpenAI as fallback
	provider := ai.FirstEnabled([]ai.Provider{
		ai.NewGroqProvider(&cfg.AI.Groq),
		ai.NewOpenAIProvider(&cfg.AI.OpenAI),
	})
	composer := compose.NewComposer(provider, cfg.Sessions.PromptHistoryTurns)

	var weatherService bot.WeatherService
	if cfg.Weather.Enabled {
		weatherService = weather.NewClient(&cfg.Weather)
	}

	return bot.New(bot.Deps{
		Collector:  collector,
		Classifier: classifier,
		Index:      index,
		Weather:    weatherService,
		Composer:   composer,
		Sessions:   session.NewStore(cfg.Sessions.MaxSessions, cfg.Sessions.HistoryLimit),
		Tracker:    tracker,
		Store:      store,
		TopK:       cfg.Search.TopK,
	}), nil
}
