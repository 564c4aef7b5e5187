package vecrank

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecrank/internal/engine"
)

var (
	// ErrUnknownEmbeddingSize is returned by PrepareState when the embedding
	// size cannot be inferred: there are no entries, or the first entry has
	// an empty embedding.
	ErrUnknownEmbeddingSize = errors.New("unknown embedding size")

	// ErrInvalidWorkers is wrapped by ErrEngineInitialization when the worker
	// options are negative.
	ErrInvalidWorkers = errors.New("invalid worker configuration")
)

// ErrIllegalEmbeddingSize indicates that an entry's embedding length differs
// from the size inferred from the first entry.
type ErrIllegalEmbeddingSize struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ErrIllegalEmbeddingSize) Error() string {
	return fmt.Sprintf("illegal embedding size: entry %d has %d, expected %d", e.Index, e.Actual, e.Expected)
}

// ErrInvalidShape indicates a non-positive (or unrepresentable) embedding
// size or document count.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidShape struct {
	EmbeddingSize int
	DocumentCount int
	cause         error
}

func (e *ErrInvalidShape) Error() string {
	return fmt.Sprintf("invalid shape: embeddingSize=%d documentCount=%d", e.EmbeddingSize, e.DocumentCount)
}

func (e *ErrInvalidShape) Unwrap() error { return e.cause }

// ErrEngineInitialization indicates that Create could not bring up the
// compute engine for a valid shape: the context ended, the memory budget
// could not be reserved, or the engine options are invalid.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrEngineInitialization struct {
	cause error
}

func (e *ErrEngineInitialization) Error() string {
	return fmt.Sprintf("engine initialization failed: %v", e.cause)
}

func (e *ErrEngineInitialization) Unwrap() error { return e.cause }

func translateError(embeddingSize, documentCount int, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, engine.ErrInvalidShape) {
		return &ErrInvalidShape{EmbeddingSize: embeddingSize, DocumentCount: documentCount, cause: err}
	}

	return &ErrEngineInitialization{cause: err}
}
