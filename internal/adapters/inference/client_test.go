package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestClient(url string) *Client {
	return NewClient(&config.SentimentConfig{
		ModelURL: url,
		Timeout:  2 * time.Second,
	})
}

func TestClient_Rate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[
			{"label": "4 stars", "score": 0.61},
			{"label": "5 stars", "score": 0.22},
			{"label": "3 stars", "score": 0.17}
		]]`))
	}))
	defer srv.Close()

	stars, score, err := newTestClient(srv.URL).Rate(context.Background(), "buena noticia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stars != 4 {
		t.Errorf("expected 4 stars, got %d", stars)
	}
	if score != 0.61 {
		t.Errorf("expected score 0.61, got %.2f", score)
	}
}

func TestClient_RateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, _, err := newTestClient(srv.URL).Rate(context.Background(), "texto"); err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestParseStars(t *testing.T) {
	tests := []struct {
		label   string
		stars   int
		wantErr bool
	}{
		{"1 star", 1, false},
		{"5 stars", 5, false},
		{"garbage", 0, true},
		{"9 stars", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		stars, err := parseStars(tt.label)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseStars(%q): expected error", tt.label)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseStars(%q): unexpected error %v", tt.label, err)
		}
		if stars != tt.stars {
			t.Errorf("parseStars(%q) = %d, want %d", tt.label, stars, tt.stars)
		}
	}
}
