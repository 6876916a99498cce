package models

import "time"

// Sentiment is the classified emotional tone of an article.
// Values are the user-facing Spanish labels.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positivo"
	SentimentNegative Sentiment = "Negativo"
	SentimentNeutral  Sentiment = "Neutral"
)

// Emoji returns the display emoji for a sentiment label
func (s Sentiment) Emoji() string {
	switch s {
	case SentimentPositive:
		return "😊"
	case SentimentNegative:
		return "😞"
	default:
		return "😐"
	}
}

// Confidence is the tier of certainty behind a sentiment label
type Confidence string

const (
	ConfidenceHigh   Confidence = "Alto"
	ConfidenceMedium Confidence = "Medio"
	ConfidenceLow    Confidence = "Bajo"
)

// Article represents a single collected news item.
// URL is the identity: two articles with the same URL are the same article.
// Sentiment fields stay empty until the classifier enriches the item.
type Article struct {
	Title               string     `json:"title" db:"title"`
	URL                 string     `json:"url" db:"url"`
	Summary             string     `json:"summary" db:"summary"`
	Content             string     `json:"content" db:"content"`
	Section             string     `json:"section" db:"section"`
	Sentiment           Sentiment  `json:"sentiment,omitempty" db:"sentiment"`
	SentimentConfidence Confidence `json:"sentiment_confidence,omitempty" db:"sentiment_confidence"`
	SentimentRationale  string     `json:"sentiment_rationale,omitempty" db:"sentiment_rationale"`
	Score               float64    `json:"score,omitempty" db:"-"`
	ScrapedAt           time.Time  `json:"scraped_at" db:"scraped_at"`
}

// Document returns the text that gets embedded for semantic search
func (a Article) Document() string {
	return a.Title + ". " + a.Summary
}

// IsEnriched reports whether the sentiment classifier has labeled the article
func (a Article) IsEnriched() bool {
	return a.Sentiment != ""
}

// SentimentStats aggregates sentiment labels over an article set
type SentimentStats struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Total    int `json:"total"`
}

// Count returns the tally for a single label
func (s SentimentStats) Count(label Sentiment) int {
	switch label {
	case SentimentPositive:
		return s.Positive
	case SentimentNegative:
		return s.Negative
	case SentimentNeutral:
		return s.Neutral
	}
	return 0
}

// Percentage returns the share of a label as 0-100
func (s SentimentStats) Percentage(label Sentiment) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Count(label)) / float64(s.Total) * 100
}
