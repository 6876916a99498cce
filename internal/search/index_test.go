package search

import (
	"context"
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

// fakeEmbedder maps known texts to fixed vectors
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	batches [][]string
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 0}
		}
	}
	return out, nil
}

func defaultConfig() Config {
	return Config{KeywordBoost: 0.3, RelevanceThreshold: 0.12}
}

func buildTestIndex(t *testing.T, emb *fakeEmbedder, articles []models.Article) *Index {
	t.Helper()
	ix := NewIndex(emb, defaultConfig())
	if err := ix.Build(context.Background(), articles); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return ix
}

func TestIndex_EmptyIndexSkipsEmbedder(t *testing.T) {
	emb := &fakeEmbedder{}
	ix := NewIndex(emb, defaultConfig())

	results, err := ix.Search(context.Background(), "censo", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty index, got %d", len(results))
	}
	if emb.calls != 0 {
		t.Errorf("empty index must not invoke the embedder, got %d calls", emb.calls)
	}
}

func TestIndex_RankingAndThreshold(t *testing.T) {
	articles := []models.Article{
		{Title: "Censo nacional avanza", URL: "a", Summary: "planificación del censo"},
		{Title: "Fútbol: clásico cruceño", URL: "b", Summary: "partido del domingo"},
		{Title: "Mercado cambiario", URL: "c", Summary: "dólar estable"},
	}

	emb := &fakeEmbedder{vectors: map[string][]float32{
		articles[0].Document(): {1, 0, 0},
		articles[1].Document(): {0.5, 0.8, 0},
		articles[2].Document(): {0, 0, 1}, // orthogonal to the query
		"resultados del censo": {1, 0, 0},
	}}

	ix := buildTestIndex(t, emb, articles)

	results, err := ix.Search(context.Background(), "resultados del censo", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].URL != "a" {
		t.Errorf("expected censo article first, got %s", results[0].URL)
	}
	for _, r := range results {
		if r.Score <= 0.12 {
			t.Errorf("result %s score %.3f at or below threshold", r.URL, r.Score)
		}
	}
}

func TestIndex_TopKBound(t *testing.T) {
	articles := make([]models.Article, 6)
	vectors := map[string][]float32{"tema": {1, 0, 0}}
	for i := range articles {
		articles[i] = models.Article{Title: "Nota", URL: string(rune('a' + i))}
		vectors[articles[i].Document()] = []float32{1, 0, 0}
	}

	ix := buildTestIndex(t, &fakeEmbedder{vectors: vectors}, articles)

	results, err := ix.Search(context.Background(), "tema", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) > 3 {
		t.Errorf("expected at most 3 results, got %d", len(results))
	}
}

func TestIndex_KeywordBoostLiftsExactMatch(t *testing.T) {
	articles := []models.Article{
		{Title: "Declaraciones de Kast en el congreso", URL: "match", Summary: "resumen"},
		{Title: "Otra nota del día", URL: "other", Summary: "sin relación"},
	}

	// Semantically the non-matching article is closer to the query:
	// other scores 0.5 raw, match only 0.287 before its keyword boost
	emb := &fakeEmbedder{vectors: map[string][]float32{
		articles[0].Document(): {0.3, 1, 0},
		articles[1].Document(): {0.5, 0.866, 0},
		"kast":                 {1, 0, 0},
		"Kast":                 {1, 0, 0},
	}}

	ix := buildTestIndex(t, emb, articles)

	results, err := ix.Search(context.Background(), "kast", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].URL != "match" {
		t.Errorf("keyword boost should rank the literal match first, got %s", results[0].URL)
	}
}

func TestIndex_NegativeSimilarityNotFlooredByBoost(t *testing.T) {
	articles := []models.Article{
		{Title: "Corralito financiero en debate", URL: "a", Summary: "resumen"},
	}

	// Cosine -0.5 against the query; the literal title match adds 0.3,
	// leaving -0.2, still below the threshold
	emb := &fakeEmbedder{vectors: map[string][]float32{
		articles[0].Document(): {-0.5, 0.866, 0},
		"Corralito":            {1, 0, 0},
	}}

	ix := buildTestIndex(t, emb, articles)

	results, err := ix.Search(context.Background(), "Corralito", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for a negative similarity, got %d with score %.3f",
			len(results), results[0].Score)
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	articles := []models.Article{
		{Title: "Nota uno", URL: "a"},
		{Title: "Nota dos", URL: "b"},
	}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		articles[0].Document(): {1, 0, 0},
		articles[1].Document(): {0, 1, 0},
	}}

	ix := buildTestIndex(t, emb, articles)

	// The empty query embeds to the zero vector: every similarity is 0,
	// no keyword boost fires, and the threshold drops everything
	results, err := ix.Search(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for an empty query, got %d with score %.3f",
			len(results), results[0].Score)
	}
}

func TestIndex_LowercaseQueryGetsTitleCasedVariant(t *testing.T) {
	articles := []models.Article{{Title: "Nota", URL: "a"}}
	emb := &fakeEmbedder{vectors: map[string][]float32{}}
	ix := buildTestIndex(t, emb, articles)

	if _, err := ix.Search(context.Background(), "evo morales", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	queryBatch := emb.batches[len(emb.batches)-1]
	if len(queryBatch) != 2 || queryBatch[1] != "Evo Morales" {
		t.Errorf("expected title-cased variant, got %v", queryBatch)
	}

	// Mixed-case queries get no extra variant
	if _, err := ix.Search(context.Background(), "Evo Morales", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	queryBatch = emb.batches[len(emb.batches)-1]
	if len(queryBatch) != 1 {
		t.Errorf("expected single variant for mixed-case query, got %v", queryBatch)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosineSimilarity = %.6f, want %.6f", got, tt.want)
			}
		})
	}
}
