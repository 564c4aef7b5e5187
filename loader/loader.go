package loader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/vecrank"
	"github.com/hupe1980/vecrank/resource"
)

// DefaultMaxLineBytes is the longest JSON Lines record Decode accepts.
const DefaultMaxLineBytes = 64 << 20

// record is the on-disk shape of one entry.
type record struct {
	Document  string    `json:"document" yaml:"document"`
	Embedding []float32 `json:"embedding" yaml:"embedding"`
}

type options struct {
	format       Format
	compression  Compression
	controller   *resource.Controller
	maxLineBytes int
}

// Option configures Load and Save.
type Option func(*options)

// WithFormat overrides the format derived from the file extension.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithCompression overrides the compression derived from the file extension.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController throttles reads with the controller's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMaxLineBytes sets the longest accepted JSON Lines record.
// Non-positive values keep DefaultMaxLineBytes.
func WithMaxLineBytes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineBytes = n
		}
	}
}

func applyOptions(path string, optFns []Option) (options, error) {
	o := options{maxLineBytes: DefaultMaxLineBytes}
	o.format, o.compression, _ = Detect(path)

	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.format == FormatAuto {
		return o, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return o, nil
}

// Load reads all entries of the file at path.
func Load(ctx context.Context, path string, optFns ...Option) ([]vecrank.Entry[string], error) {
	o, err := applyOptions(path, optFns)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if o.controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.controller)
	}

	r, closeFn, err := decompress(r, o.compression)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return decode(ctx, r, o.format, o.maxLineBytes)
}

// Decode reads all entries of an uncompressed stream in the given format.
// An empty stream yields no entries.
func Decode(ctx context.Context, r io.Reader, format Format) ([]vecrank.Entry[string], error) {
	return decode(ctx, r, format, DefaultMaxLineBytes)
}

func decompress(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("loader: zstd: %w", err)
		}
		return zr, zr.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("loader: unsupported compression %s", c)
	}
}

func decode(ctx context.Context, r io.Reader, format Format, maxLineBytes int) ([]vecrank.Entry[string], error) {
	switch format {
	case FormatJSONL:
		return decodeJSONL(ctx, r, maxLineBytes)
	case FormatJSON:
		var recs []record
		if err := gojson.NewDecoder(r).DecodeContext(ctx, &recs); err != nil && !errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &ParseError{Format: format, Err: err}
		}
		return toEntries(recs), nil
	case FormatYAML:
		var recs []record
		if err := yaml.NewDecoder(r).DecodeContext(ctx, &recs); err != nil && !errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &ParseError{Format: format, Err: err}
		}
		return toEntries(recs), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func decodeJSONL(ctx context.Context, r io.Reader, maxLineBytes int) ([]vecrank.Entry[string], error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, maxLineBytes)), maxLineBytes)

	var entries []vecrank.Entry[string]
	line := 0
	for sc.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}

		var rec record
		if err := gojson.Unmarshal(b, &rec); err != nil {
			return nil, &ParseError{Format: FormatJSONL, Record: line, Err: err}
		}
		entries = append(entries, vecrank.Entry[string]{Document: rec.Document, Embedding: rec.Embedding})
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Format: FormatJSONL, Record: line + 1, Err: err}
		}
		return nil, fmt.Errorf("loader: read: %w", err)
	}
	return entries, nil
}

func toEntries(recs []record) []vecrank.Entry[string] {
	entries := make([]vecrank.Entry[string], len(recs))
	for i, rec := range recs {
		entries[i] = vecrank.Entry[string]{Document: rec.Document, Embedding: rec.Embedding}
	}
	return entries
}
