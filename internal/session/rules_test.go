package session

import (
	"testing"

	"github.com/Zinko5/newsbot/pkg/models"
)

func TestIsFollowUp(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"profundiza en la primera", true},
		{"amplía la noticia 2", true},
		{"cuéntame más sobre eso", true},
		{"cuentame mas", true},
		{"más sobre la tercera", true},
		{"qué pasó con el censo", true},
		{"que paso con los bloqueos", true},
		{"y la segunda noticia?", true},
		{"y el partido de ayer?", true},
		{"sobre la 3", true},
		{"dame más detalles", true},

		{"noticias de economía", false},
		{"¿quién ganó el clásico?", false},
		{"cómo está el clima en La Paz", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := IsFollowUp(tt.question); got != tt.want {
				t.Errorf("IsFollowUp(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}

func TestDetectSentimentQuery(t *testing.T) {
	tests := []struct {
		question string
		want     models.Sentiment
	}{
		{"noticias positivas", models.SentimentPositive},
		{"dame una buena noticia", models.SentimentPositive},
		{"noticias malas de hoy", models.SentimentNegative},
		{"qué noticias tristes hay", models.SentimentNegative},
		{"noticias neutrales", models.SentimentNeutral},
		{"algo normal", models.SentimentNeutral},
		{"noticias de deportes", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := DetectSentimentQuery(tt.question); got != tt.want {
				t.Errorf("DetectSentimentQuery(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestIsSentimentSummaryQuery(t *testing.T) {
	if !IsSentimentSummaryQuery("dame el resumen de sentimientos") {
		t.Error("expected summary query to match")
	}
	if IsSentimentSummaryQuery("noticias positivas") {
		t.Error("filter query must not match summary query")
	}
}
