package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Scraper   ScraperConfig   `envconfig:"SCRAPER"`
	Search    SearchConfig    `envconfig:"SEARCH"`
	Sessions  SessionConfig   `envconfig:"SESSIONS"`
	AI        AIConfig        `envconfig:"AI"`
	Sentiment SentimentConfig `envconfig:"SENTIMENT"`
	Weather   WeatherConfig   `envconfig:"WEATHER"`
	Telegram  TelegramConfig  `envconfig:"TELEGRAM"`
	Database  DatabaseConfig  `envconfig:"DATABASE"`
	Health    HealthConfig    `envconfig:"HEALTH"`
	Logging   LoggingConfig   `envconfig:"LOGGING"`
}

// ScraperConfig represents news collection parameters
type ScraperConfig struct {
	Sections          []string      `envconfig:"SCRAPER_SECTIONS" default:"https://eldeber.com.bo/pais,https://eldeber.com.bo/economia,https://eldeber.com.bo/mundo,https://eldeber.com.bo/educacion-y-sociedad,https://eldeber.com.bo/deportes"`
	PagesPerSection   int           `envconfig:"SCRAPER_PAGES_PER_SECTION" default:"3"`
	Workers           int           `envconfig:"SCRAPER_WORKERS" default:"4"`
	RequestsPerSecond float64       `envconfig:"SCRAPER_REQUESTS_PER_SECOND" default:"2.0"`
	BodyLimit         int           `envconfig:"SCRAPER_BODY_LIMIT" default:"1500"`
	UserAgent         string        `envconfig:"SCRAPER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	RefreshInterval   time.Duration `envconfig:"SCRAPER_REFRESH_INTERVAL" default:"1h"`
}

// SearchConfig represents semantic search tuning
type SearchConfig struct {
	TopK               int     `envconfig:"SEARCH_TOP_K" default:"5"`
	KeywordBoost       float64 `envconfig:"SEARCH_KEYWORD_BOOST" default:"0.3"`
	RelevanceThreshold float64 `envconfig:"SEARCH_RELEVANCE_THRESHOLD" default:"0.12"`
}

// SessionConfig represents conversation memory bounds
type SessionConfig struct {
	MaxSessions        int `envconfig:"SESSIONS_MAX" default:"1000"`
	HistoryLimit       int `envconfig:"SESSIONS_HISTORY_LIMIT" default:"10"`
	PromptHistoryTurns int `envconfig:"SESSIONS_PROMPT_HISTORY_TURNS" default:"4"`
}

// AIConfig represents generative and embedding provider configuration
type AIConfig struct {
	Groq           AIProviderConfig `envconfig:"GROQ"`
	OpenAI         AIProviderConfig `envconfig:"OPENAI"`
	EmbeddingModel string           `envconfig:"AI_EMBEDDING_MODEL" default:"text-embedding-ada-002"`
}

// AIProviderConfig represents single AI provider configuration
type AIProviderConfig struct {
	APIKey  string `envconfig:"API_KEY" required:"false"`
	Enabled bool   `envconfig:"ENABLED" default:"false"`
	Model   string `envconfig:"MODEL" required:"false"`
	BaseURL string `envconfig:"BASE_URL" required:"false"`
}

// SentimentConfig represents the star-rating model backend
type SentimentConfig struct {
	ModelURL string        `envconfig:"SENTIMENT_MODEL_URL" default:"https://api-inference.huggingface.co/models/nlptown/bert-base-multilingual-uncased-sentiment"`
	APIKey   string        `envconfig:"SENTIMENT_API_KEY" required:"false"`
	Timeout  time.Duration `envconfig:"SENTIMENT_TIMEOUT" default:"15s"`
}

// WeatherConfig represents the Open-Meteo auxiliary provider
type WeatherConfig struct {
	Enabled     bool          `envconfig:"WEATHER_ENABLED" default:"true"`
	DefaultCity string        `envconfig:"WEATHER_DEFAULT_CITY" default:"Santa Cruz"`
	CacheTTL    time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m"`
}

// TelegramConfig represents Telegram bot configuration
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
}

// DatabaseConfig represents database connection parameters.
// The database is optional: with an empty user the bot runs memory-only.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"newsbot"`
	User     string `envconfig:"DB_USER" required:"false"`
	Password string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// HealthConfig represents the status HTTP server
type HealthConfig struct {
	Port string `envconfig:"HEALTH_PORT" default:"8080"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if len(c.Scraper.Sections) == 0 {
		return fmt.Errorf("at least one scraper section must be configured")
	}
	if c.Scraper.PagesPerSection < 1 {
		return fmt.Errorf("pages_per_section must be at least 1")
	}
	if c.Scraper.Workers < 1 {
		return fmt.Errorf("scraper workers must be at least 1")
	}

	if c.Search.TopK < 1 {
		return fmt.Errorf("search top_k must be at least 1")
	}
	if c.Search.KeywordBoost < 0 {
		return fmt.Errorf("keyword_boost must not be negative")
	}
	if c.Search.RelevanceThreshold < 0 {
		return fmt.Errorf("relevance_threshold must not be negative")
	}

	if c.Sessions.MaxSessions < 1 {
		return fmt.Errorf("max sessions must be at least 1")
	}
	if c.Sessions.HistoryLimit < 2 {
		return fmt.Errorf("history limit must hold at least one question/answer pair")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// IsConfigured reports whether a database connection should be attempted
func (c *DatabaseConfig) IsConfigured() bool {
	return c.User != ""
}

// GenerativeEnabled reports whether any chat provider can be used
func (c *AIConfig) GenerativeEnabled() bool {
	return (c.Groq.Enabled && c.Groq.APIKey != "") ||
		(c.OpenAI.Enabled && c.OpenAI.APIKey != "")
}
