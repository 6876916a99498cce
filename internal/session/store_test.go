package session

import (
	"fmt"
	"os"
	"testing"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestStore_HistoryBound(t *testing.T) {
	store := NewStore(10, 10)

	for i := 0; i < 6; i++ {
		store.Update("s1", fmt.Sprintf("pregunta %d", i), fmt.Sprintf("respuesta %d", i), nil)
	}

	history := store.History("s1")
	if len(history) != 10 {
		t.Fatalf("expected history capped at 10, got %d", len(history))
	}
	// Oldest pair (turn 0) was discarded first
	if history[0].Text != "pregunta 1" {
		t.Errorf("expected oldest surviving entry to be 'pregunta 1', got %q", history[0].Text)
	}
	if history[9].Text != "respuesta 5" {
		t.Errorf("expected newest entry 'respuesta 5', got %q", history[9].Text)
	}
}

func TestStore_ContextRetention(t *testing.T) {
	store := NewStore(10, 10)

	ctx := []models.Article{{URL: "a"}, {URL: "b"}, {URL: "c"}}
	store.Update("s1", "q1", "a1", ctx)

	got := store.Context("s1")
	if len(got) != 3 || got[0].URL != "a" {
		t.Fatalf("expected stored context, got %+v", got)
	}

	// A turn with no usable articles keeps the previous context
	store.Update("s1", "q2", "a2", nil)
	got = store.Context("s1")
	if len(got) != 3 {
		t.Errorf("empty context must not clear prior one, got %d articles", len(got))
	}

	// A turn with new articles replaces it
	store.Update("s1", "q3", "a3", []models.Article{{URL: "z"}})
	got = store.Context("s1")
	if len(got) != 1 || got[0].URL != "z" {
		t.Errorf("expected replaced context, got %+v", got)
	}
}

func TestStore_UnknownSession(t *testing.T) {
	store := NewStore(10, 10)

	if ctx := store.Context("nope"); ctx != nil {
		t.Errorf("expected nil context for unknown session, got %+v", ctx)
	}
	if h := store.History("nope"); h != nil {
		t.Errorf("expected nil history for unknown session, got %+v", h)
	}
}

func TestStore_Eviction(t *testing.T) {
	store := NewStore(3, 10)

	for i := 0; i < 5; i++ {
		store.Update(fmt.Sprintf("s%d", i), "q", "a", nil)
	}

	if store.Len() != 3 {
		t.Errorf("expected 3 live sessions after eviction, got %d", store.Len())
	}
	// The most recent sessions survive
	if store.History("s4") == nil {
		t.Error("newest session should not have been evicted")
	}
}

func TestStore_ContextIsCopied(t *testing.T) {
	store := NewStore(10, 10)
	store.Update("s1", "q", "a", []models.Article{{URL: "a", Title: "original"}})

	got := store.Context("s1")
	got[0].Title = "mutated"

	again := store.Context("s1")
	if again[0].Title != "original" {
		t.Error("Context must return a copy, not shared backing storage")
	}
}
