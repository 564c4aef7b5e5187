package engine

import "errors"

// ErrInvalidShape is returned when embeddingSize or documentCount is out of range.
var ErrInvalidShape = errors.New("invalid shape")
