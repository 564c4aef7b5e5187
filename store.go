package vecrank

import (
	"context"
	"slices"
	"time"

	"github.com/hupe1980/vecrank/internal/engine"
)

// Result is one ranked document.
type Result[T any] struct {
	Document T
	Distance float32
}

// Store ranks a fixed set of documents by cosine distance to a query.
//
// The caller writes embeddings through DocumentEmbeddings and the query
// through QueryEmbedding, then calls PerformQuery. A Store is not safe for
// concurrent use: no buffer may be written while PerformQuery runs, and
// PerformQuery must not be called concurrently with itself.
type Store[T any] struct {
	engine    *engine.Store
	documents []T
	logger    *Logger
	metrics   MetricsCollector
}

// Create allocates a store for init.
//
// Create returns *ErrInvalidShape if init.EmbeddingSize or the number of
// documents is not positive, and *ErrEngineInitialization if the engine
// cannot be brought up: invalid options, a memory budget that can never fit
// the store, or ctx ending while waiting for the budget. Create either
// returns a ready store or fails; it is never partially initialized.
func Create[T any](ctx context.Context, init Init[T], optFns ...Option) (*Store[T], error) {
	start := time.Now()
	o := applyOptions(optFns)

	embeddingSize, documentCount := init.EmbeddingSize, len(init.Documents)
	logger := o.logger.WithShape(embeddingSize, documentCount)

	s, err := create(ctx, init, o, logger)
	duration := time.Since(start)

	o.metricsCollector.RecordCreate(duration, err)
	if err != nil {
		logger.LogCreate(ctx, 0, 0, "", duration, err)
		return nil, err
	}

	logger.LogCreate(ctx, s.engine.FootprintBytes(), s.engine.Workers(), s.ISA(), duration, nil)
	return s, nil
}

func create[T any](ctx context.Context, init Init[T], o options, logger *Logger) (*Store[T], error) {
	embeddingSize, documentCount := init.EmbeddingSize, len(init.Documents)

	if err := engine.ValidateShape(embeddingSize, documentCount); err != nil {
		return nil, translateError(embeddingSize, documentCount, err)
	}

	cfg, err := o.engineConfig()
	if err != nil {
		return nil, translateError(embeddingSize, documentCount, err)
	}

	es, err := engine.New(ctx, embeddingSize, documentCount, cfg)
	if err != nil {
		return nil, translateError(embeddingSize, documentCount, err)
	}

	return &Store[T]{
		engine:    es,
		documents: slices.Clone(init.Documents),
		logger:    logger,
		metrics:   o.metricsCollector,
	}, nil
}

// CreateFromState creates a store for state.Init and copies the prepared
// embeddings into it.
func CreateFromState[T any](ctx context.Context, state *State[T], optFns ...Option) (*Store[T], error) {
	if state == nil {
		return nil, ErrUnknownEmbeddingSize
	}

	s, err := Create(ctx, state.Init, optFns...)
	if err != nil {
		return nil, err
	}

	copy(s.DocumentEmbeddings(), state.DocumentEmbeddings)
	return s, nil
}

// EmbeddingSize returns the length of every embedding.
func (s *Store[T]) EmbeddingSize() int { return s.engine.EmbeddingSize() }

// DocumentCount returns the number of documents.
func (s *Store[T]) DocumentCount() int { return s.engine.DocumentCount() }

// Documents returns a copy of the documents in row order.
func (s *Store[T]) Documents() []T { return slices.Clone(s.documents) }

// DocumentEmbeddings returns the writable document buffer of length
// DocumentCount()*EmbeddingSize(). Row i holds the embedding of document i.
// The slice aliases store memory; writes are seen by the next query.
func (s *Store[T]) DocumentEmbeddings() []float32 { return s.engine.DocumentEmbeddings() }

// QueryEmbedding returns the writable query buffer of length EmbeddingSize().
// The caller overwrites it before each query.
func (s *Store[T]) QueryEmbedding() []float32 { return s.engine.QueryEmbedding() }

// RawResult returns entry i of the result buffer left by the last query:
// the document's row index and its distance. i must be in [0, DocumentCount()).
func (s *Store[T]) RawResult(i int) (index int, distance float32) {
	r := s.engine.Results()[i]
	return int(r.Index), r.Distance
}

// ISA returns the name of the kernel set the engine ranks with.
func (s *Store[T]) ISA() string { return s.engine.ISA().String() }

// FootprintBytes returns the bytes allocated for the store's buffers.
func (s *Store[T]) FootprintBytes() int64 { return s.engine.FootprintBytes() }

// PerformQuery ranks every document against the current query embedding
// and returns the closest ones, ascending by distance. Ties keep row order.
//
// By default the full ranking is returned; WithDocumentCount limits it.
// PerformQuery does not validate the buffers: a query written with the
// wrong length or left unwritten is a caller error. A zero-norm query or
// document has distance 1 to everything.
func (s *Store[T]) PerformQuery(optFns ...QueryOption) []Result[T] {
	start := time.Now()

	var qo queryOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&qo)
		}
	}

	n := s.DocumentCount()
	requested := n
	if qo.set {
		requested = qo.documentCount
		n = min(max(qo.documentCount, 0), n)
	}

	s.engine.Rank()

	ranked := s.engine.Results()[:n]
	results := make([]Result[T], n)
	for i, r := range ranked {
		results[i] = Result[T]{
			Document: s.documents[r.Index],
			Distance: r.Distance,
		}
	}

	duration := time.Since(start)
	s.metrics.RecordQuery(n, duration)
	s.logger.LogQuery(context.Background(), requested, n, duration)

	return results
}
