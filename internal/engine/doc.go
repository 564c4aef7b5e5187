// Package engine implements the embedding store and the cosine ranking engine.
//
// A Store owns three fixed-size buffers, all 64-byte aligned and zeroed at
// allocation:
//   - the document buffer: documentCount rows of embeddingSize float32, row-major
//   - the query buffer: one row of embeddingSize float32
//   - the result buffer: documentCount (index, distance) pairs
//
// Rank recomputes the cosine distance of every row against the query and
// sorts the result buffer ascending by distance, breaking ties by ascending
// row index. Distance computation is split into contiguous row chunks that
// run in parallel; the sort is independent of how rows were chunked, so the
// output is identical for every worker count.
//
// A Store is not safe for concurrent use. Callers must not write the
// document or query buffers, or call Rank, while another Rank is running.
package engine
