package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

func TestMain(m *testing.M) {
	logger.Init("error", "")
	m.Run()
}

type fakeProvider struct {
	enabled bool
	answer  string
	err     error
	calls   int
}

func (f *fakeProvider) GetName() string { return "fake" }
func (f *fakeProvider) IsEnabled() bool { return f.enabled }
func (f *fakeProvider) Chat(_ context.Context, _ string, _ []models.ChatTurn, _ string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func sampleArticles() []models.Article {
	return []models.Article{
		{
			Title:               "Gobierno anuncia nueva inversión en Santa Cruz",
			URL:                 "https://eldeber.com.bo/a/1",
			Summary:             "El gobierno confirmó una inversión millonaria.",
			Score:               0.82,
			Sentiment:           models.SentimentPositive,
			SentimentConfidence: models.ConfidenceHigh,
		},
		{
			Title:   "Bloqueo en la carretera al norte",
			URL:     "https://eldeber.com.bo/a/2",
			Summary: "Transportistas mantienen el bloqueo por segundo día.",
			Score:   0.41,
		},
	}
}

func TestCompose_TemplateWithoutProvider(t *testing.T) {
	c := NewComposer(nil, 4)

	res := c.Compose(context.Background(), Request{
		Question: "qué pasó hoy",
		Articles: sampleArticles(),
	})

	if res.Generative {
		t.Error("expected a templated result without a provider")
	}
	if res.FallbackReason == "" {
		t.Error("expected a fallback reason")
	}
	if !strings.Contains(res.Text, "Gobierno anuncia nueva inversión en Santa Cruz") {
		t.Error("template should carry the top article title")
	}
	if !strings.Contains(res.Text, "82%") {
		t.Errorf("template should show the relevance percentage, got:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "📰 Fuentes:") {
		t.Error("template should end with a sources footer")
	}
	if !strings.Contains(res.Text, "😊") {
		t.Error("enriched source should carry its sentiment emoji")
	}
}

func TestCompose_TemplateEmptyResults(t *testing.T) {
	c := NewComposer(nil, 4)

	res := c.Compose(context.Background(), Request{Question: "dragones en marte"})

	if !strings.Contains(res.Text, "No encontré noticias") {
		t.Errorf("expected the empty-results message, got:\n%s", res.Text)
	}
	if strings.Contains(res.Text, "Fuentes") {
		t.Error("empty result should not carry a sources footer")
	}
}

func TestCompose_TemplateCapsAtThreeArticles(t *testing.T) {
	articles := make([]models.Article, 5)
	for i := range articles {
		articles[i] = models.Article{
			Title: string(rune('A' + i)),
			URL:   "https://eldeber.com.bo/a/x",
			Score: 0.5,
		}
	}

	res := NewComposer(nil, 4).Compose(context.Background(), Request{Articles: articles})

	if strings.Contains(res.Text, "4. *") {
		t.Error("template must stop after three articles")
	}
}

func TestCompose_GenerativeSuccess(t *testing.T) {
	p := &fakeProvider{enabled: true, answer: "Hoy el gobierno anunció una inversión."}
	c := NewComposer(p, 4)

	res := c.Compose(context.Background(), Request{
		Question: "qué pasó hoy",
		Articles: sampleArticles(),
	})

	if !res.Generative {
		t.Fatal("expected a generative result")
	}
	if !strings.HasPrefix(res.Text, "Hoy el gobierno anunció") {
		t.Errorf("unexpected answer text:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "📰 Fuentes:") {
		t.Error("generative answer should also carry the sources footer")
	}
}

func TestCompose_GenerativeErrorFallsBack(t *testing.T) {
	p := &fakeProvider{enabled: true, err: errors.New("rate limited")}
	c := NewComposer(p, 4)

	res := c.Compose(context.Background(), Request{
		Question: "qué pasó hoy",
		Articles: sampleArticles(),
	})

	if res.Generative {
		t.Error("expected fallback to template on provider error")
	}
	if res.FallbackReason != "rate limited" {
		t.Errorf("expected the provider error as fallback reason, got %q", res.FallbackReason)
	}
	if !strings.Contains(res.Text, "Esto es lo que encontré") {
		t.Error("fallback should render the template")
	}
}

func TestCompose_EmptyGenerativeAnswerFallsBack(t *testing.T) {
	p := &fakeProvider{enabled: true, answer: "   "}
	c := NewComposer(p, 4)

	res := c.Compose(context.Background(), Request{Articles: sampleArticles()})

	if res.Generative {
		t.Error("blank provider answer must fall back to the template")
	}
}

func TestCompose_WeatherInjectedFirst(t *testing.T) {
	c := NewComposer(nil, 4)

	res := c.Compose(context.Background(), Request{
		Question: "clima en La Paz",
		Articles: sampleArticles(),
		Weather: &models.WeatherReport{
			City: "La Paz", Temperature: 11.0, Condition: "Parcialmente nublado", Icon: "⛅",
		},
	})

	weatherAt := strings.Index(res.Text, "Clima en La Paz")
	newsAt := strings.Index(res.Text, "Gobierno anuncia")
	if weatherAt < 0 {
		t.Fatalf("weather entry missing:\n%s", res.Text)
	}
	if newsAt >= 0 && weatherAt > newsAt {
		t.Error("weather entry should come before news results")
	}
	if !strings.Contains(res.Text, "99%") {
		t.Error("weather entry should render with its fixed high relevance")
	}
}

func TestRelevanceBar(t *testing.T) {
	tests := []struct {
		score  float64
		blocks int
	}{
		{0.05, 0},
		{0.19, 0},
		{0.2, 1},
		{0.41, 2},
		{0.82, 4},
		{0.99, 4},
		{1.0, 5},
		{1.3, 5},
	}
	for _, tt := range tests {
		got := relevanceBar(tt.score)
		if n := strings.Count(got, "█"); n != tt.blocks {
			t.Errorf("relevanceBar(%v) = %d blocks, want %d", tt.score, n, tt.blocks)
		}
	}
}

func TestCutRunes(t *testing.T) {
	if got := cutRunes("corto", 150); got != "corto" {
		t.Errorf("short text should pass through, got %q", got)
	}
	long := strings.Repeat("a", 200)
	got := cutRunes(long, 150)
	if !strings.HasSuffix(got, "...") || len(got) != 153 {
		t.Errorf("expected 150 chars plus ellipsis, got %d chars", len(got))
	}
}
