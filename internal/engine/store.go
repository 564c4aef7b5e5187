package engine

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/vecrank/internal/mem"
	"github.com/hupe1980/vecrank/internal/simd"
)

// Result is one entry of the result buffer.
type Result struct {
	Index    int32
	Distance float32
}

// Store holds the document, query and result buffers of one embedding set.
type Store struct {
	embeddingSize int
	documentCount int

	documents []float32 // documentCount * embeddingSize, row-major
	query     []float32 // embeddingSize
	distances []float32 // documentCount, scratch for Rank
	results   []Result  // documentCount, sorted after Rank

	cfg      Config
	reserved int64
	released atomic.Bool
}

// New allocates a store for documentCount embeddings of embeddingSize floats.
//
// The buffers are zero-initialized. If cfg.Controller is set, their size is
// reserved against its memory budget first; New blocks until the
// reservation succeeds or ctx is done.
func New(ctx context.Context, embeddingSize, documentCount int, cfg Config) (*Store, error) {
	if err := ValidateShape(embeddingSize, documentCount); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	reserved := FootprintBytes(embeddingSize, documentCount)

	if err := cfg.Controller.AcquireMemory(ctx, reserved); err != nil {
		return nil, fmt.Errorf("engine: reserve %d bytes: %w", reserved, err)
	}

	return &Store{
		embeddingSize: embeddingSize,
		documentCount: documentCount,
		documents:     mem.AllocAlignedFloat32(documentCount * embeddingSize),
		query:         mem.AllocAlignedFloat32(embeddingSize),
		distances:     mem.AllocAlignedFloat32(documentCount),
		results:       mem.AllocAlignedOf[Result](documentCount),
		cfg:           cfg,
		reserved:      reserved,
	}, nil
}

// ValidateShape reports whether a store of the given shape can be allocated.
func ValidateShape(embeddingSize, documentCount int) error {
	if embeddingSize < 1 || documentCount < 1 {
		return fmt.Errorf("%w: embeddingSize=%d documentCount=%d", ErrInvalidShape, embeddingSize, documentCount)
	}
	// Result indexes are int32.
	if documentCount > math.MaxInt32 {
		return fmt.Errorf("%w: documentCount %d exceeds %d", ErrInvalidShape, documentCount, math.MaxInt32)
	}
	if embeddingSize > math.MaxInt/documentCount {
		return fmt.Errorf("%w: %d x %d floats overflows", ErrInvalidShape, documentCount, embeddingSize)
	}
	return nil
}

// FootprintBytes returns the number of bytes a store of the given shape allocates.
func FootprintBytes(embeddingSize, documentCount int) int64 {
	return mem.SizeOf[float32](documentCount*embeddingSize) +
		mem.SizeOf[float32](embeddingSize) +
		mem.SizeOf[float32](documentCount) +
		mem.SizeOf[Result](documentCount)
}

// EmbeddingSize returns the length of every embedding row.
func (s *Store) EmbeddingSize() int { return s.embeddingSize }

// DocumentCount returns the number of rows.
func (s *Store) DocumentCount() int { return s.documentCount }

// DocumentEmbeddings returns the writable row-major document buffer.
// Row i occupies [i*EmbeddingSize(), (i+1)*EmbeddingSize()).
func (s *Store) DocumentEmbeddings() []float32 { return s.documents }

// QueryEmbedding returns the writable query buffer.
func (s *Store) QueryEmbedding() []float32 { return s.query }

// Results returns the result buffer. Its contents are meaningful only after
// Rank and are overwritten by the next Rank. Callers must not modify it.
func (s *Store) Results() []Result { return s.results }

// Row returns the embedding of document i, aliasing the document buffer.
func (s *Store) Row(i int) []float32 {
	off := i * s.embeddingSize
	return s.documents[off : off+s.embeddingSize : off+s.embeddingSize]
}

// ISA returns the kernel set used by Rank.
func (s *Store) ISA() simd.ISA { return simd.ActiveISA() }

// Config returns the effective configuration.
func (s *Store) Config() Config { return s.cfg }

// FootprintBytes returns the bytes reserved for this store's buffers.
func (s *Store) FootprintBytes() int64 { return s.reserved }

// Release returns the memory reservation to the controller.
// It is safe to call more than once. The buffers stay valid for callers
// still holding views, but the store no longer counts against the budget.
func (s *Store) Release() {
	if s.released.CompareAndSwap(false, true) {
		s.cfg.Controller.ReleaseMemory(s.reserved)
	}
}

// Released reports whether Release has been called.
func (s *Store) Released() bool { return s.released.Load() }
