package vecrank

// Entry pairs a document with its embedding.
type Entry[T any] struct {
	Document  T
	Embedding []float32
}

// Init is the shape of a store: the embedding size and the documents, in
// row order.
type Init[T any] struct {
	EmbeddingSize int
	Documents     []T
}

// State is the output of PrepareState: a shape for Create and the packed
// row-major embeddings to copy into the store.
type State[T any] struct {
	Init               Init[T]
	DocumentEmbeddings []float32
}

// PrepareState packs entries into a row-major buffer.
//
// The embedding size is taken from the first entry. PrepareState returns
// ErrUnknownEmbeddingSize if entries is empty or the first embedding is
// empty, and *ErrIllegalEmbeddingSize if a later entry has a different
// length. Nothing is allocated for a store yet.
func PrepareState[T any](entries []Entry[T]) (*State[T], error) {
	if len(entries) == 0 || len(entries[0].Embedding) == 0 {
		return nil, ErrUnknownEmbeddingSize
	}

	embeddingSize := len(entries[0].Embedding)
	documents := make([]T, len(entries))
	embeddings := make([]float32, len(entries)*embeddingSize)

	for i, e := range entries {
		if len(e.Embedding) != embeddingSize {
			return nil, &ErrIllegalEmbeddingSize{Index: i, Expected: embeddingSize, Actual: len(e.Embedding)}
		}
		documents[i] = e.Document
		copy(embeddings[i*embeddingSize:], e.Embedding)
	}

	return &State[T]{
		Init:               Init[T]{EmbeddingSize: embeddingSize, Documents: documents},
		DocumentEmbeddings: embeddings,
	}, nil
}

// DocumentCount returns the number of prepared documents.
func (i Init[T]) DocumentCount() int { return len(i.Documents) }
