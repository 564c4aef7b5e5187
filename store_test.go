package vecrank_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecrank"
	"github.com/hupe1980/vecrank/resource"
	"github.com/hupe1980/vecrank/testutil"
)

func sampleEntries() []vecrank.Entry[string] {
	return []vecrank.Entry[string]{
		{Document: "bar", Embedding: []float32{4, 5, 6}},
		{Document: "qux", Embedding: []float32{-1, -2, -3}},
		{Document: "foo", Embedding: []float32{2, 4, 6}},
		{Document: "baz", Embedding: []float32{6, -3, 0}},
	}
}

func newSampleStore(t *testing.T, opts ...vecrank.Option) *vecrank.Store[string] {
	t.Helper()

	state, err := vecrank.PrepareState(sampleEntries())
	require.NoError(t, err)

	store, err := vecrank.CreateFromState(context.Background(), state, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	copy(store.QueryEmbedding(), []float32{1, 2, 3})
	return store
}

func documents(results []vecrank.Result[string]) []string {
	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Document
	}
	return docs
}

func TestPerformQuery(t *testing.T) {
	store := newSampleStore(t)

	results := store.PerformQuery()

	require.Len(t, results, 4)
	assert.Equal(t, []string{"foo", "bar", "baz", "qux"}, documents(results))
	assert.InDelta(t, 0.000, results[0].Distance, 1e-3)
	assert.InDelta(t, 0.025, results[1].Distance, 1e-3)
	assert.InDelta(t, 1.000, results[2].Distance, 1e-3)
	assert.InDelta(t, 2.000, results[3].Distance, 1e-3)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
}

func TestPerformQuery_DocumentCount(t *testing.T) {
	store := newSampleStore(t)

	full := store.PerformQuery()

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"top two", 2, []string{"foo", "bar"}},
		{"one", 1, []string{"foo"}},
		{"zero", 0, []string{}},
		{"negative", -3, []string{}},
		{"all", 4, []string{"foo", "bar", "baz", "qux"}},
		{"more than stored", 100, []string{"foo", "bar", "baz", "qux"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := store.PerformQuery(vecrank.WithDocumentCount(tt.n))
			assert.Equal(t, tt.want, documents(results))
			assert.Equal(t, full[:len(results)], results)
		})
	}
}

func TestPerformQuery_RawResult(t *testing.T) {
	store := newSampleStore(t)

	_ = store.PerformQuery(vecrank.WithDocumentCount(1))

	// The raw buffer always holds the full ranking.
	wantIndexes := []int{2, 0, 3, 1}
	for i, want := range wantIndexes {
		index, distance := store.RawResult(i)
		assert.Equal(t, want, index)
		assert.GreaterOrEqual(t, distance, float32(0))
		assert.LessOrEqual(t, distance, float32(2))
	}
}

func TestPerformQuery_Properties(t *testing.T) {
	state, err := vecrank.PrepareState([]vecrank.Entry[string]{
		{Document: "self", Embedding: []float32{0.3, -1.2, 2.5, 4}},
		{Document: "scaled", Embedding: []float32{0.6, -2.4, 5, 8}},
		{Document: "orthogonal", Embedding: []float32{1.2, 0.3, 0, 0}},
		{Document: "opposite", Embedding: []float32{-0.3, 1.2, -2.5, -4}},
		{Document: "zero", Embedding: []float32{0, 0, 0, 0}},
	})
	require.NoError(t, err)

	store, err := vecrank.CreateFromState(context.Background(), state)
	require.NoError(t, err)
	defer store.Close()

	copy(store.QueryEmbedding(), []float32{0.3, -1.2, 2.5, 4})

	byDoc := make(map[string]float32)
	for _, r := range store.PerformQuery() {
		byDoc[r.Document] = r.Distance
	}

	assert.InDelta(t, 0, byDoc["self"], 1e-5)
	assert.InDelta(t, 0, byDoc["scaled"], 1e-5)
	assert.InDelta(t, 1, byDoc["orthogonal"], 1e-5)
	assert.InDelta(t, 2, byDoc["opposite"], 1e-5)
	assert.Equal(t, float32(1), byDoc["zero"])
}

func TestPerformQuery_ExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name      string
		embedding []float32
		query     []float32
		want      float32
	}{
		{"large document", []float32{1e20, 0}, []float32{1, 0}, 0},
		{"large opposite document", []float32{-1e20, 0}, []float32{1, 0}, 2},
		{"tiny document", []float32{1e-25, 0}, []float32{1, 0}, 0},
		{"tiny opposite document", []float32{-1e-25, 0}, []float32{1, 0}, 2},
		{"tiny query", []float32{1, 0}, []float32{1e-25, 0}, 0},
		{"large query", []float32{0, 1}, []float32{0, -1e20}, 2},
	}

	for _, tt := range tests {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("%s/workers=%d", tt.name, workers), func(t *testing.T) {
				state, err := vecrank.PrepareState([]vecrank.Entry[string]{
					{Document: "only", Embedding: tt.embedding},
				})
				require.NoError(t, err)

				store, err := vecrank.CreateFromState(context.Background(), state,
					vecrank.WithWorkers(workers),
					vecrank.WithMinRowsPerWorker(1),
				)
				require.NoError(t, err)
				defer store.Close()

				copy(store.QueryEmbedding(), tt.query)
				results := store.PerformQuery()

				require.Len(t, results, 1)
				assert.Equal(t, tt.want, results[0].Distance)
			})
		}
	}
}

func TestPerformQuery_NonFinite(t *testing.T) {
	nan := float32(math.NaN())

	state, err := vecrank.PrepareState([]vecrank.Entry[string]{
		{Document: "opposite", Embedding: []float32{-1, -2, -3}},
		{Document: "nan", Embedding: []float32{nan, 2, 3}},
		{Document: "same", Embedding: []float32{2, 4, 6}},
		{Document: "inf", Embedding: []float32{float32(math.Inf(-1)), 0, 0}},
		{Document: "zero", Embedding: []float32{0, 0, 0}},
	})
	require.NoError(t, err)

	store, err := vecrank.CreateFromState(context.Background(), state, vecrank.WithMinRowsPerWorker(1))
	require.NoError(t, err)
	defer store.Close()

	copy(store.QueryEmbedding(), []float32{1, 2, 3})
	results := store.PerformQuery()

	// NaN and Inf rows tie with the zero row at 1 and keep row order.
	assert.Equal(t, []string{"same", "nan", "inf", "zero", "opposite"}, documents(results))
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.Equal(t, float32(1), results[1].Distance)
	assert.Equal(t, float32(1), results[2].Distance)
	assert.Equal(t, float32(1), results[3].Distance)
	assert.InDelta(t, 2, results[4].Distance, 1e-6)

	top := store.PerformQuery(vecrank.WithDocumentCount(3))
	assert.Equal(t, results[:3], top)
}

func TestPerformQuery_ZeroQuery(t *testing.T) {
	store := newSampleStore(t)
	clear(store.QueryEmbedding())

	results := store.PerformQuery()

	// Everything ties at 1, so row order is kept.
	assert.Equal(t, []string{"bar", "qux", "foo", "baz"}, documents(results))
	for _, r := range results {
		assert.Equal(t, float32(1), r.Distance)
	}
}

func TestPerformQuery_NewQuery(t *testing.T) {
	store := newSampleStore(t)
	_ = store.PerformQuery()

	copy(store.QueryEmbedding(), []float32{6, -3, 0})
	results := store.PerformQuery(vecrank.WithDocumentCount(1))

	assert.Equal(t, []string{"baz"}, documents(results))
}

func TestPerformQuery_UpdatedEmbeddings(t *testing.T) {
	store := newSampleStore(t)

	// Overwrite row 3 (baz) with the query direction.
	copy(store.DocumentEmbeddings()[3*3:], []float32{10, 20, 30})
	results := store.PerformQuery(vecrank.WithDocumentCount(2))

	assert.ElementsMatch(t, []string{"foo", "baz"}, documents(results))
}

func TestPerformQuery_MatchesExactRanking(t *testing.T) {
	const (
		dim   = 37
		count = 3000
	)

	rng := testutil.NewRNG(42)
	entries := rng.RandomEntries(count, dim)
	query := rng.UniformRangeVectors(1, dim)[0]

	embeddings := make([][]float32, count)
	for i, e := range entries {
		embeddings[i] = e.Embedding
	}
	want := testutil.ExactRanking(query, embeddings)

	for _, workers := range []int{1, 4} {
		state, err := vecrank.PrepareState(entries)
		require.NoError(t, err)

		store, err := vecrank.CreateFromState(context.Background(), state,
			vecrank.WithWorkers(workers),
			vecrank.WithMinRowsPerWorker(64),
		)
		require.NoError(t, err)

		copy(store.QueryEmbedding(), query)
		got := store.PerformQuery()
		require.Len(t, got, count)

		for i, r := range got {
			assert.InDelta(t, want[i].Distance, r.Distance, 1e-4, "rank %d", i)
		}
		require.NoError(t, store.Close())
	}
}

func TestPerformQuery_WorkersAgree(t *testing.T) {
	entries := testutil.NewRNG(7).RandomEntries(5000, 16)
	query := testutil.NewRNG(8).UniformRangeVectors(1, 16)[0]

	run := func(opts ...vecrank.Option) []vecrank.Result[string] {
		state, err := vecrank.PrepareState(entries)
		require.NoError(t, err)
		store, err := vecrank.CreateFromState(context.Background(), state, opts...)
		require.NoError(t, err)
		defer store.Close()
		copy(store.QueryEmbedding(), query)
		return store.PerformQuery()
	}

	serial := run(vecrank.WithWorkers(1))
	parallel := run(vecrank.WithWorkers(8), vecrank.WithMinRowsPerWorker(100))

	assert.Equal(t, serial, parallel)
}

func TestCreate(t *testing.T) {
	store, err := vecrank.Create(context.Background(), vecrank.Init[int]{
		EmbeddingSize: 8,
		Documents:     []int{10, 20, 30},
	})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 8, store.EmbeddingSize())
	assert.Equal(t, 3, store.DocumentCount())
	assert.Equal(t, []int{10, 20, 30}, store.Documents())
	assert.Len(t, store.DocumentEmbeddings(), 24)
	assert.Len(t, store.QueryEmbedding(), 8)
	assert.NotEmpty(t, store.ISA())
	assert.Positive(t, store.FootprintBytes())

	// Buffers start zeroed.
	for _, v := range store.DocumentEmbeddings() {
		require.Zero(t, v)
	}
}

func TestCreate_DocumentsAreCopied(t *testing.T) {
	docs := []string{"a", "b"}
	store, err := vecrank.Create(context.Background(), vecrank.Init[string]{EmbeddingSize: 2, Documents: docs})
	require.NoError(t, err)
	defer store.Close()

	docs[0] = "changed"
	got := store.Documents()
	got[1] = "changed"

	assert.Equal(t, []string{"a", "b"}, store.Documents())
}

func TestCreate_InvalidShape(t *testing.T) {
	tests := []struct {
		name string
		init vecrank.Init[string]
	}{
		{"zero embedding size", vecrank.Init[string]{EmbeddingSize: 0, Documents: []string{"a"}}},
		{"negative embedding size", vecrank.Init[string]{EmbeddingSize: -1, Documents: []string{"a"}}},
		{"no documents", vecrank.Init[string]{EmbeddingSize: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := vecrank.Create(context.Background(), tt.init)
			require.Error(t, err)
			assert.Nil(t, store)

			var shapeErr *vecrank.ErrInvalidShape
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.init.EmbeddingSize, shapeErr.EmbeddingSize)
			assert.Equal(t, len(tt.init.Documents), shapeErr.DocumentCount)
		})
	}
}

func TestCreate_EngineInitialization(t *testing.T) {
	init := vecrank.Init[string]{EmbeddingSize: 4, Documents: []string{"a", "b"}}

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := vecrank.Create(ctx, init)

		var initErr *vecrank.ErrEngineInitialization
		require.ErrorAs(t, err, &initErr)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("negative workers", func(t *testing.T) {
		_, err := vecrank.Create(context.Background(), init, vecrank.WithWorkers(-1))

		var initErr *vecrank.ErrEngineInitialization
		require.ErrorAs(t, err, &initErr)
		assert.ErrorIs(t, err, vecrank.ErrInvalidWorkers)
	})

	t.Run("memory budget too small", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})

		_, err := vecrank.Create(context.Background(), init, vecrank.WithResourceController(rc))

		var initErr *vecrank.ErrEngineInitialization
		require.ErrorAs(t, err, &initErr)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Zero(t, rc.MemoryUsage())
	})
}

func TestCreate_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, MaxWorkers: 2})
	init := vecrank.Init[string]{EmbeddingSize: 4, Documents: []string{"a", "b"}}

	store, err := vecrank.Create(context.Background(), init, vecrank.WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, store.FootprintBytes(), rc.MemoryUsage())

	require.NoError(t, store.Close())
	assert.Zero(t, rc.MemoryUsage())

	// Second Close is a no-op.
	require.NoError(t, store.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestCreateFromState_Nil(t *testing.T) {
	_, err := vecrank.CreateFromState[string](context.Background(), nil)
	assert.ErrorIs(t, err, vecrank.ErrUnknownEmbeddingSize)
}

func TestMetricsCollector(t *testing.T) {
	metrics := &vecrank.BasicMetricsCollector{}
	store := newSampleStore(t, vecrank.WithMetricsCollector(metrics))

	_ = store.PerformQuery()
	_ = store.PerformQuery(vecrank.WithDocumentCount(2))

	_, err := vecrank.Create(context.Background(), vecrank.Init[string]{}, vecrank.WithMetricsCollector(metrics))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.CreateCount)
	assert.Equal(t, int64(1), stats.CreateErrors)
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(6), stats.QueryResults)
	assert.GreaterOrEqual(t, stats.QueryMaxNanos, stats.QueryAvgNanos)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := vecrank.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := newSampleStore(t, vecrank.WithLogger(logger))
	_ = store.PerformQuery(vecrank.WithDocumentCount(2))
	require.NoError(t, store.Close())

	out := buf.String()
	assert.Contains(t, out, `"msg":"store created"`)
	assert.Contains(t, out, `"embedding_size":3`)
	assert.Contains(t, out, `"document_count":4`)
	assert.Contains(t, out, `"msg":"query completed"`)
	assert.Contains(t, out, `"requested":2`)
	assert.Contains(t, out, `"msg":"store closed"`)
}

func TestLogger_CreateFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := vecrank.NewLogger(slog.NewTextHandler(&buf, nil))

	_, err := vecrank.Create(context.Background(), vecrank.Init[string]{EmbeddingSize: 3}, vecrank.WithLogger(logger))
	require.Error(t, err)

	assert.Contains(t, buf.String(), "create failed")
}

func TestNilOptions(t *testing.T) {
	store := newSampleStore(t, nil, vecrank.WithLogger(nil), vecrank.WithMetricsCollector(nil))
	assert.Len(t, store.PerformQuery(nil), 4)
}

func TestErrorMessages(t *testing.T) {
	err := error(&vecrank.ErrIllegalEmbeddingSize{Index: 2, Expected: 3, Actual: 4})
	assert.Equal(t, "illegal embedding size: entry 2 has 4, expected 3", err.Error())

	_, err = vecrank.Create(context.Background(), vecrank.Init[string]{EmbeddingSize: 0, Documents: []string{"a"}})
	assert.Equal(t, "invalid shape: embeddingSize=0 documentCount=1", err.Error())
	assert.NotNil(t, errors.Unwrap(err))
}

func BenchmarkPerformQuery(b *testing.B) {
	const (
		dim   = 768
		count = 10000
	)

	rng := testutil.NewRNG(1)
	state, err := vecrank.PrepareState(rng.RandomEntries(count, dim))
	require.NoError(b, err)

	store, err := vecrank.CreateFromState(context.Background(), state)
	require.NoError(b, err)
	defer store.Close()

	rng.FillUniform(store.QueryEmbedding())

	b.ReportAllocs()
	for b.Loop() {
		_ = store.PerformQuery(vecrank.WithDocumentCount(10))
	}
}
