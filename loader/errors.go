package loader

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when no format is given and none can be
// derived from the file name.
var ErrUnknownFormat = errors.New("unknown entry format")

// ParseError reports a record that could not be decoded.
//
// Record is 1-based: the line for JSON Lines, the position in the array
// for JSON, and 0 when the whole document is malformed.
type ParseError struct {
	Format Format
	Record int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record == 0 {
		return fmt.Sprintf("loader: decode %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("loader: decode %s record %d: %v", e.Format, e.Record, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
