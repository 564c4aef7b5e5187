// Package distance provides public API for vector distance calculations.
// All functions use the kernels from internal/simd selected for the
// current CPU.
package distance

import (
	"math"
	"slices"

	"github.com/hupe1980/vecrank/internal/simd"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return simd.Dot(a, b)
}

// Norm returns the L2 norm of v. The sum of squares is taken in float64,
// so very large or very small components do not saturate it.
func Norm(v []float32) float32 {
	return float32(simd.Norm64(v))
}

// CosineDistance returns 1 - cosine similarity of a and b, in [0, 2].
//
// If either vector has zero norm the similarity is undefined; it is taken
// as 0, so the distance is 1. The same holds for non-finite input.
// Assumes vectors are the same length (caller's responsibility).
func CosineDistance(a, b []float32) float32 {
	dot, sq := simd.DotNorm(a, b)
	return simd.CosineDistance(dot, simd.Norm64(a), sq)
}

// CosineSimilarity returns the cosine similarity of a and b, in [-1, 1],
// with the zero-norm policy of CosineDistance.
func CosineSimilarity(a, b []float32) float32 {
	return 1 - CosineDistance(a, b)
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false, leaving v unchanged, if its L2 norm is zero or not finite.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm := simd.Norm64(v)
	if norm == 0 || math.IsInf(norm, 0) || math.IsNaN(norm) {
		return false
	}
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}
