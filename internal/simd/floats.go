package simd

import "math"

// Kernel function pointers, set once at init by useISA.
var (
	kernelDot     = dotGeneric
	kernelDotNorm = dotNormGeneric
	kernelScale   = scaleGeneric
)

// ============================================================================
// Public API - dispatch through function pointers
// ============================================================================

// Dot calculates the dot product of two vectors.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func Dot(a, b []float32) float32 {
	return kernelDot(a, b)
}

// DotNorm computes dot(q, d) and the squared L2 norm of d in a single pass.
// Products are accumulated in float64, so neither sum overflows or
// underflows for finite float32 input.
//
// SAFETY: Assumes len(q) >= len(d).
func DotNorm(q, d []float32) (dot, squaredNorm float64) {
	return kernelDotNorm(q, d)
}

// SquaredNorm returns the squared L2 norm of v, accumulated in float64.
func SquaredNorm(v []float32) float64 {
	_, sq := kernelDotNorm(v, v)
	return sq
}

// Norm64 returns the L2 norm of v in float64.
func Norm64(v []float32) float64 {
	return math.Sqrt(SquaredNorm(v))
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	kernelScale(a, scalar)
}

// CosineDistance turns the parts of a cosine computation into 1 - similarity.
//
// queryNorm is the L2 norm of the query and squaredNorm the squared L2 norm
// of the document row. A zero norm on either side, or a non-finite
// similarity, yields similarity 0 and therefore distance 1. Similarity is
// clamped to [-1, 1] so the result always lies in [0, 2].
func CosineDistance(dot, queryNorm, squaredNorm float64) float32 {
	if queryNorm == 0 || squaredNorm == 0 {
		return 1
	}

	sim := dot / (queryNorm * math.Sqrt(squaredNorm))
	switch {
	case math.IsNaN(sim):
		return 1
	case sim > 1:
		sim = 1
	case sim < -1:
		sim = -1
	}

	return float32(1 - sim)
}

// CosineDistanceBatch computes the cosine distance between query and every
// row of targets, a row-major buffer of vectors of dimension dim.
// queryNorm must be the L2 norm of query[:dim], as returned by Norm64.
// out receives min(len(out), len(targets)/dim) distances.
func CosineDistanceBatch(query []float32, queryNorm float64, targets []float32, dim int, out []float32) {
	if dim <= 0 || len(out) == 0 || len(query) < dim {
		return
	}

	q := query[:dim]
	n := min(len(out), len(targets)/dim)

	for i := range n {
		offset := i * dim
		row := targets[offset : offset+dim : offset+dim]
		dot, sq := kernelDotNorm(q, row)
		out[i] = CosineDistance(dot, queryNorm, sq)
	}
}

// ============================================================================
// Generic kernels
// ============================================================================

func dotGeneric(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

func dotNormGeneric(q, d []float32) (float64, float64) {
	q = q[:len(d)]

	var dot, sq float64
	for i := range d {
		x, y := float64(q[i]), float64(d[i])
		dot += x * y
		sq += y * y
	}

	return dot, sq
}

func scaleGeneric(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// ============================================================================
// Unrolled kernels (4 lanes: NEON/SVE2, 8 lanes: AVX2/AVX-512)
// ============================================================================

func dotUnroll4(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		x := a[i : i+4 : i+4]
		y := b[i : i+4 : i+4]
		s0 += x[0] * y[0]
		s1 += x[1] * y[1]
		s2 += x[2] * y[2]
		s3 += x[3] * y[3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}

	return (s0 + s1) + (s2 + s3)
}

func dotUnroll8(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	i := 0
	for ; i+8 <= n; i += 8 {
		x := a[i : i+8 : i+8]
		y := b[i : i+8 : i+8]
		s0 += x[0] * y[0]
		s1 += x[1] * y[1]
		s2 += x[2] * y[2]
		s3 += x[3] * y[3]
		s4 += x[4] * y[4]
		s5 += x[5] * y[5]
		s6 += x[6] * y[6]
		s7 += x[7] * y[7]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}

	return ((s0 + s1) + (s2 + s3)) + ((s4 + s5) + (s6 + s7))
}

func dotNormUnroll4(q, d []float32) (float64, float64) {
	n := len(d)
	q = q[:n]

	var s0, s1, s2, s3 float64
	var n0, n1, n2, n3 float64
	i := 0
	for ; i+4 <= n; i += 4 {
		x := q[i : i+4 : i+4]
		y := d[i : i+4 : i+4]
		y0, y1, y2, y3 := float64(y[0]), float64(y[1]), float64(y[2]), float64(y[3])
		s0 += float64(x[0]) * y0
		s1 += float64(x[1]) * y1
		s2 += float64(x[2]) * y2
		s3 += float64(x[3]) * y3
		n0 += y0 * y0
		n1 += y1 * y1
		n2 += y2 * y2
		n3 += y3 * y3
	}
	for ; i < n; i++ {
		y := float64(d[i])
		s0 += float64(q[i]) * y
		n0 += y * y
	}

	return (s0 + s1) + (s2 + s3), (n0 + n1) + (n2 + n3)
}

func dotNormUnroll8(q, d []float32) (float64, float64) {
	n := len(d)
	q = q[:n]

	var s0, s1, s2, s3, s4, s5, s6, s7 float64
	var n0, n1, n2, n3, n4, n5, n6, n7 float64
	i := 0
	for ; i+8 <= n; i += 8 {
		x := q[i : i+8 : i+8]
		y := d[i : i+8 : i+8]
		y0, y1, y2, y3 := float64(y[0]), float64(y[1]), float64(y[2]), float64(y[3])
		y4, y5, y6, y7 := float64(y[4]), float64(y[5]), float64(y[6]), float64(y[7])
		s0 += float64(x[0]) * y0
		s1 += float64(x[1]) * y1
		s2 += float64(x[2]) * y2
		s3 += float64(x[3]) * y3
		s4 += float64(x[4]) * y4
		s5 += float64(x[5]) * y5
		s6 += float64(x[6]) * y6
		s7 += float64(x[7]) * y7
		n0 += y0 * y0
		n1 += y1 * y1
		n2 += y2 * y2
		n3 += y3 * y3
		n4 += y4 * y4
		n5 += y5 * y5
		n6 += y6 * y6
		n7 += y7 * y7
	}
	for ; i < n; i++ {
		y := float64(d[i])
		s0 += float64(q[i]) * y
		n0 += y * y
	}

	dot := ((s0 + s1) + (s2 + s3)) + ((s4 + s5) + (s6 + s7))
	sq := ((n0 + n1) + (n2 + n3)) + ((n4 + n5) + (n6 + n7))

	return dot, sq
}
