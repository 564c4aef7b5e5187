package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the encoding of an entry file.
type Format int

const (
	// FormatAuto selects the format from the file extension.
	FormatAuto Format = iota
	// FormatJSONL is one JSON object per line.
	FormatJSONL
	// FormatJSON is a single JSON array.
	FormatJSON
	// FormatYAML is a YAML sequence.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSONL:
		return "jsonl"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Compression is the byte-level wrapping of an entry file.
type Compression int

const (
	// CompressionNone reads the file as is.
	CompressionNone Compression = iota
	// CompressionZstd is a zstd stream.
	CompressionZstd
	// CompressionLZ4 is an LZ4 frame stream.
	CompressionLZ4
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// Detect derives the format and compression of path from its extensions.
func Detect(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch filepath.Ext(name) {
	case ".zst", ".zstd":
		compression = CompressionZstd
		name = strings.TrimSuffix(name, filepath.Ext(name))
	case ".lz4":
		compression = CompressionLZ4
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, compression, nil
	case ".json":
		return FormatJSON, compression, nil
	case ".yaml", ".yml":
		return FormatYAML, compression, nil
	default:
		return FormatAuto, compression, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
