// Package testutil provides testing utilities for vecrank.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors and entries, and a
// float64 reference ranking to check stores against.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	vec := make([]float32, 128)
//	rng.FillUniform(vec)                  // uniform [0, 1)
//	entries := rng.RandomEntries(10000, 768)
//
// # Exact Ranking (Ground Truth)
//
//	want := testutil.ExactRanking(query, embeddings)
package testutil
