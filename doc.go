// Package vecrank provides an in-memory, exact vector similarity store.
//
// A store holds a fixed set of documents, each with an embedding of the
// same length, and ranks all of them by cosine distance to a query
// embedding. There is no index: every query scans every document, so the
// result is exact and the order is deterministic.
//
// # Lifecycle
//
// Preparing, creating and querying are separate steps:
//
//	state, err := vecrank.PrepareState([]vecrank.Entry[string]{
//	    {Document: "bar", Embedding: []float32{4, 5, 6}},
//	    {Document: "qux", Embedding: []float32{-1, -2, -3}},
//	    {Document: "foo", Embedding: []float32{2, 4, 6}},
//	    {Document: "baz", Embedding: []float32{6, -3, 0}},
//	})
//
//	store, err := vecrank.Create(ctx, state.Init)
//	defer store.Close()
//
//	copy(store.DocumentEmbeddings(), state.DocumentEmbeddings)
//	copy(store.QueryEmbedding(), []float32{1, 2, 3})
//
//	results := store.PerformQuery()                         // foo, bar, baz, qux
//	top := store.PerformQuery(vecrank.WithDocumentCount(2)) // foo, bar
//
// CreateFromState combines Create and the first copy.
//
// # Buffers
//
// DocumentEmbeddings and QueryEmbedding return slices that alias the
// store's own 64-byte aligned memory. Writing through them is how data gets
// in; nothing is copied per query. The shape never changes after Create;
// a different document set needs a new store.
//
// # Distance
//
// distance = 1 - dot(d, q) / (|d| * |q|), in [0, 2]. If either vector has
// zero norm the similarity is taken as 0, so the distance is 1. Results are
// sorted ascending by distance; equal distances keep document order.
//
// # Concurrency
//
// Distance computation is split across goroutines (WithWorkers), but a
// Store is not safe for concurrent use. The caller must not write the
// buffers or start another query while PerformQuery runs.
package vecrank
