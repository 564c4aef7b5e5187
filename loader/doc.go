// Package loader reads and writes entry files for vecrank stores.
//
// An entry file holds documents with their embeddings in one of three
// formats:
//
//   - JSON Lines: one {"document": "...", "embedding": [...]} object per line
//   - JSON: an array of such objects
//   - YAML: a sequence of mappings with the same keys
//
// The format is taken from the file extension (.jsonl, .ndjson, .json,
// .yaml, .yml). A trailing .zst or .lz4 extension enables zstd or LZ4
// decompression, so "vectors.jsonl.zst" is compressed JSON Lines.
//
//	entries, err := loader.Load(ctx, "vectors.jsonl.zst")
//	state, err := vecrank.PrepareState(entries)
//
// Reads can be throttled with a resource.Controller (WithResourceController).
package loader
