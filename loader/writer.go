package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/vecrank"
)

// Encode writes entries to w in the given format without compression.
func Encode(w io.Writer, entries []vecrank.Entry[string], format Format) error {
	recs := make([]record, len(entries))
	for i, e := range entries {
		recs[i] = record{Document: e.Document, Embedding: e.Embedding}
	}

	switch format {
	case FormatJSONL:
		enc := gojson.NewEncoder(w)
		for i := range recs {
			if err := enc.Encode(&recs[i]); err != nil {
				return fmt.Errorf("loader: encode jsonl record %d: %w", i+1, err)
			}
		}
		return nil
	case FormatJSON:
		if err := gojson.NewEncoder(w).Encode(recs); err != nil {
			return fmt.Errorf("loader: encode json: %w", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewEncoder(w).Encode(recs); err != nil {
			return fmt.Errorf("loader: encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Save writes entries to path. Format and compression follow the file
// extension unless overridden by options. The file is replaced atomically
// on success.
func Save(ctx context.Context, path string, entries []vecrank.Entry[string], optFns ...Option) (err error) {
	o, err := applyOptions(path, optFns)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := encodeCompressed(bw, entries, o.format, o.compression); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

// encodeCompressed encodes entries through the compressor for c. The
// compressor is closed on every path, flushing its frame on success.
func encodeCompressed(w io.Writer, entries []vecrank.Entry[string], format Format, c Compression) (err error) {
	cw, closeFn, err := compress(w, c)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("loader: %s: %w", c, cerr)
		}
	}()

	return Encode(cw, entries, format)
}

func compress(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, nil, fmt.Errorf("loader: zstd: %w", err)
		}
		return zw, zw.Close, nil
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		return lw, lw.Close, nil
	default:
		return nil, nil, fmt.Errorf("loader: unsupported compression %s", c)
	}
}
