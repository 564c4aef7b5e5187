// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides 64-byte aligned, zero-initialized allocation for the embedding
// and result buffers so every row-major buffer starts on a cache line.
package mem
