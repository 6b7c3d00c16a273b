package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
	"github.com/pinkpig777/agentic-resume-tailor/internal/vector"
)

// fakeBackend embeds every text as a unit axis vector and serves canned
// documents per query text.
type fakeBackend struct {
	embeddings map[string][]float32
	docs       map[string][]vector.Document
	embedErr   error
	queryErr   error
	queries    []string
}

func (f *fakeBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if v, ok := f.embeddings[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeBackend) Query(ctx context.Context, text string, k int) ([]vector.Document, error) {
	f.queries = append(f.queries, text)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	docs := f.docs[text]
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

func TestRetrieveMergesHitsByBulletID(t *testing.T) {
	// Two queries both return exp:acme:0; hits must merge, not duplicate.
	shared := vector.Document{
		ID:        "exp:acme:0",
		Text:      "Built streaming data pipelines",
		Metadata:  map[string]string{"source": "experience"},
		Embedding: []float32{1, 0, 0},
	}
	backend := &fakeBackend{
		embeddings: map[string][]float32{
			"data pipelines":    {1, 0, 0},
			"stream processing": {0, 1, 0},
		},
		docs: map[string][]vector.Document{
			"data pipelines":    {shared},
			"stream processing": {shared},
		},
	}
	engine, err := NewEngine(backend, DefaultConfig())
	require.NoError(t, err)

	items := []types.QueryItem{
		{Text: "data pipelines", Purpose: "core_skills", Weight: 1.0},
		{Text: "stream processing", Purpose: "core_skills", Weight: 0.5},
	}
	candidates, err := engine.Retrieve(context.Background(), items, 5, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	cand := candidates[0]
	assert.Equal(t, "exp:acme:0", cand.BulletID)
	assert.Equal(t, "experience", cand.Source)
	require.Len(t, cand.Hits, 2)
	// First query aligns exactly (cosine 1), second is orthogonal (cosine 0).
	assert.InDelta(t, 1.0, cand.BestHit.Weighted, 1e-9)
	assert.InDelta(t, 1.0, cand.TotalWeighted, 1e-9)
}

func TestRetrieveAppendsBoostKeywords(t *testing.T) {
	backend := &fakeBackend{docs: map[string][]vector.Document{}}
	engine, err := NewEngine(backend, DefaultConfig())
	require.NoError(t, err)

	items := []types.QueryItem{
		{Text: "backend services", Weight: 1.0, BoostKeywords: []string{"kubernetes", "grpc"}},
	}
	_, err = engine.Retrieve(context.Background(), items, 5, 10)
	require.NoError(t, err)
	require.Len(t, backend.queries, 1)
	assert.Equal(t, "backend services kubernetes grpc", backend.queries[0])
}

func TestRetrieveDeterministicOrdering(t *testing.T) {
	// Identical scores must fall back to id order for reproducible output.
	docs := []vector.Document{
		{ID: "exp:zeta:0", Text: "did things", Embedding: []float32{1, 0, 0}},
		{ID: "exp:alpha:0", Text: "did things", Embedding: []float32{1, 0, 0}},
	}
	backend := &fakeBackend{
		docs: map[string][]vector.Document{"platform work": docs},
	}
	engine, err := NewEngine(backend, DefaultConfig())
	require.NoError(t, err)

	candidates, err := engine.Retrieve(context.Background(),
		[]types.QueryItem{{Text: "platform work", Weight: 1.0}}, 5, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "exp:alpha:0", candidates[0].BulletID)
	assert.Equal(t, "exp:zeta:0", candidates[1].BulletID)
}

func TestRetrieveQuantBonusRanksQuantifiedBulletsHigher(t *testing.T) {
	docs := []vector.Document{
		{ID: "exp:a:0", Text: "Improved query latency by 40% from 2s to 200ms", Embedding: []float32{1, 0, 0}},
		{ID: "exp:a:1", Text: "Maintained internal tools", Embedding: []float32{1, 0, 0}},
	}
	backend := &fakeBackend{
		docs: map[string][]vector.Document{"performance tuning": docs},
	}
	engine, err := NewEngine(backend, DefaultConfig())
	require.NoError(t, err)

	candidates, err := engine.Retrieve(context.Background(),
		[]types.QueryItem{{Text: "performance tuning", Weight: 1.0}}, 5, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "exp:a:0", candidates[0].BulletID)
	assert.Greater(t, candidates[0].QuantBonus, 0.0)
	assert.Zero(t, candidates[1].QuantBonus)
	assert.InDelta(t, candidates[0].TotalWeighted+candidates[0].QuantBonus,
		candidates[0].EffectiveTotalWeighted, 1e-9)
}

func TestRetrieveTruncatesToFinalK(t *testing.T) {
	docs := []vector.Document{
		{ID: "exp:a:0", Text: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "exp:a:1", Text: "beta", Embedding: []float32{1, 0, 0}},
		{ID: "exp:a:2", Text: "gamma", Embedding: []float32{1, 0, 0}},
	}
	backend := &fakeBackend{docs: map[string][]vector.Document{"q": docs}}
	engine, err := NewEngine(backend, DefaultConfig())
	require.NoError(t, err)

	candidates, err := engine.Retrieve(context.Background(),
		[]types.QueryItem{{Text: "q", Weight: 1.0}}, 5, 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestRetrieveFailingQueryAbortsPass(t *testing.T) {
	backend := &fakeBackend{queryErr: errors.New("connection refused")}
	engine, err := NewEngine(backend, DefaultConfig())
	require.NoError(t, err)

	_, err = engine.Retrieve(context.Background(),
		[]types.QueryItem{{Text: "anything", Weight: 1.0}}, 5, 10)
	require.Error(t, err)

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "anything", queryErr.Query)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1.0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0.0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1.0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0.0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Cosine(tc.a, tc.b), 1e-9)
		})
	}
}

func TestQuantBonusCap(t *testing.T) {
	text := "Improved throughput by 40%, cut latency from 2s to 200ms, " +
		"serving 1,000,000 requests at 10k qps"
	bonus := QuantBonus(text, 0.05, 0.20)
	assert.InDelta(t, 0.20, bonus, 1e-9)

	assert.Zero(t, QuantBonus("maintained internal tools", 0.05, 0.20))
}
