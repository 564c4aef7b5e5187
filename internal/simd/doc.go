// Package simd provides the float32 kernels behind cosine ranking.
//
// Cosine kernels read float32 but accumulate in float64: squared
// components of any finite float32 stay in float64 range.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON, SVE2
//
// Runtime CPU feature detection selects the accumulator width of the
// unrolled kernels (4 lanes for 128-bit registers, 8 lanes for 256-bit and
// wider). The kernels are pure Go; the unrolled shapes are written so the
// compiler can eliminate bounds checks and keep independent accumulators in
// registers. Set VECRANK_SIMD=generic to force the scalar loop.
//
// # Operations
//
//   - Distance: Dot, DotNorm, SquaredNorm, Norm64, CosineDistance
//   - Batch: CosineDistanceBatch over a row-major packed buffer
//   - Utility: ScaleInPlace
package simd
