package simd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dotKernel struct {
	name string
	fn   func(a, b []float32) float32
}

type dotNormKernel struct {
	name string
	fn   func(q, d []float32) (float64, float64)
}

var dotKernels = []dotKernel{
	{"generic", dotGeneric},
	{"unroll4", dotUnroll4},
	{"unroll8", dotUnroll8},
}

var dotNormKernels = []dotNormKernel{
	{"generic", dotNormGeneric},
	{"unroll4", dotNormUnroll4},
	{"unroll8", dotNormUnroll8},
}

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Positive values (size 3)", []float32{1, 2, 3}, []float32{4, 5, 6}, 32.0},
		{"Negative values (size 3)", []float32{-1, -2, -3}, []float32{-4, -5, -6}, 32.0},
		{"More than 4 (size 6)", []float32{1, 2, 3, 1, 2, 3}, []float32{4, 5, 6, 4, 5, 6}, 64.0},
		{"Mixed values (size 3)", []float32{1, -2, 3}, []float32{-4, 5, -6}, -32.0},
		{"Zero values (size 3)", []float32{0, 0, 0}, []float32{0, 0, 0}, 0.0},
		{"Empty", []float32{}, []float32{}, 0.0},
		{"Positive values (size 9)", []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, 285.0},
		{"Positive values (size 16)", []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, 1496.0},
		{"Positive values (size 17)", []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}, 1785.0},
	}

	for _, k := range dotKernels {
		for _, tc := range tests {
			t.Run(k.name+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.expected, k.fn(tc.a, tc.b))
			})
		}
	}

	t.Run("dispatch", func(t *testing.T) {
		assert.Equal(t, float32(32), Dot([]float32{1, 2, 3}, []float32{4, 5, 6}))
	})
}

func TestDotNorm(t *testing.T) {
	q := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	d := []float32{2, 0, -1, 3, 1, 1, 0, 2, -2, 1, 4}

	var wantDot, wantSq float64
	for i := range d {
		wantDot += float64(q[i]) * float64(d[i])
		wantSq += float64(d[i]) * float64(d[i])
	}

	for _, k := range dotNormKernels {
		t.Run(k.name, func(t *testing.T) {
			dot, sq := k.fn(q, d)
			assert.Equal(t, wantDot, dot)
			assert.Equal(t, wantSq, sq)
		})
	}

	t.Run("dispatch", func(t *testing.T) {
		dot, sq := DotNorm(q, d)
		assert.Equal(t, wantDot, dot)
		assert.Equal(t, wantSq, sq)
		assert.Equal(t, wantSq, SquaredNorm(d))
		assert.Equal(t, math.Sqrt(wantSq), Norm64(d))
	})
}

func TestDotNorm_ExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name  string
		value float32
	}{
		{"large", 1e20},
		{"max float32", math.MaxFloat32},
		{"tiny", 1e-25},
		{"smallest subnormal", math.SmallestNonzeroFloat32},
	}

	for _, k := range dotNormKernels {
		for _, tc := range tests {
			t.Run(k.name+"/"+tc.name, func(t *testing.T) {
				// Nine lanes cover the unrolled body and the tail.
				d := make([]float32, 9)
				q := make([]float32, 9)
				d[0], d[8] = tc.value, -tc.value
				q[0], q[8] = 1, -1

				dot, sq := k.fn(q, d)

				v := float64(tc.value)
				assert.False(t, math.IsInf(sq, 0))
				assert.Positive(t, sq)
				assert.InEpsilon(t, 2*v*v, sq, 1e-12)
				assert.InEpsilon(t, 2*v, dot, 1e-12)
			})
		}
	}
}

func TestKernelsAgreeOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(4711))

	for _, dim := range []int{1, 3, 7, 8, 31, 128, 768} {
		a := randomFloatsWith(rng, dim)
		b := randomFloatsWith(rng, dim)

		want := dotGeneric(a, b)
		for _, k := range dotKernels {
			assert.InDelta(t, want, k.fn(a, b), 1e-3, "%s dim=%d", k.name, dim)
		}

		wantDot, wantSq := dotNormGeneric(a, b)
		for _, k := range dotNormKernels {
			dot, sq := k.fn(a, b)
			assert.InDelta(t, wantDot, dot, 1e-3, "%s dim=%d", k.name, dim)
			assert.InDelta(t, wantSq, sq, 1e-3, "%s dim=%d", k.name, dim)
		}
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		dot      float64
		qn       float64
		sq       float64
		expected float32
	}{
		{"Identical direction", 14, math.Sqrt(14), 14, 0},
		{"Orthogonal", 0, 1, 1, 1},
		{"Opposite", -14, math.Sqrt(14), 14, 2},
		{"Zero query", 0, 0, 14, 1},
		{"Zero document", 0, math.Sqrt(14), 0, 1},
		{"Large magnitudes", 1e20, 1, 1e40, 0},
		{"Tiny magnitudes", -1e-25, 1, 1e-50, 2},
		{"Rounding above one is clamped", 1.0001, 1, 1, 0},
		{"Rounding below minus one is clamped", -1.0001, 1, 1, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, CosineDistance(tc.dot, tc.qn, tc.sq), 1e-6)
		})
	}

	t.Run("NaN inputs", func(t *testing.T) {
		nan := math.NaN()
		assert.Equal(t, float32(1), CosineDistance(nan, 1, 1))
		assert.Equal(t, float32(1), CosineDistance(1, nan, 1))
	})

	t.Run("Infinite inputs", func(t *testing.T) {
		inf := math.Inf(1)
		assert.Equal(t, float32(1), CosineDistance(inf, 1, inf))
	})
}

func TestCosineDistanceBatch(t *testing.T) {
	query := []float32{1, 2, 3}
	targets := []float32{
		4, 5, 6,
		-1, -2, -3,
		2, 4, 6,
		6, -3, 0,
		0, 0, 0,
	}
	out := make([]float32, 5)

	CosineDistanceBatch(query, Norm64(query), targets, 3, out)

	assert.InDelta(t, 0.025, out[0], 1e-3)
	assert.InDelta(t, 2.0, out[1], 1e-3)
	assert.InDelta(t, 0.0, out[2], 1e-3)
	assert.InDelta(t, 1.0, out[3], 1e-3)
	assert.Equal(t, float32(1), out[4])

	t.Run("short output", func(t *testing.T) {
		short := []float32{-1, -1}
		CosineDistanceBatch(query, math.Sqrt(14), targets, 3, short)
		assert.InDelta(t, 0.025, short[0], 1e-3)
		assert.InDelta(t, 2.0, short[1], 1e-3)
	})

	t.Run("extreme magnitudes", func(t *testing.T) {
		rows := []float32{
			1e20, 0,
			-1e20, 0,
			1e-25, 0,
			-1e-25, 0,
		}
		got := make([]float32, 4)

		CosineDistanceBatch([]float32{1, 0}, 1, rows, 2, got)
		assert.Equal(t, []float32{0, 2, 0, 2}, got)

		tiny := []float32{1e-30, 0}
		CosineDistanceBatch(tiny, Norm64(tiny), rows, 2, got)
		assert.Equal(t, []float32{0, 2, 0, 2}, got)
	})

	t.Run("invalid dimension is a no-op", func(t *testing.T) {
		untouched := []float32{-1}
		CosineDistanceBatch(query, math.Sqrt(14), targets, 0, untouched)
		assert.Equal(t, float32(-1), untouched[0])
	})
}

func TestScaleInPlace(t *testing.T) {
	v := []float32{1, -2, 4}
	ScaleInPlace(v, 0.5)
	assert.Equal(t, []float32{0.5, -1, 2}, v)
}

func TestISA(t *testing.T) {
	for _, isa := range []ISA{Generic, NEON, SVE2, AVX2, AVX512} {
		parsed, ok := ParseISA(" " + isa.String() + " ")
		require.True(t, ok)
		assert.Equal(t, isa, parsed)
	}

	_, ok := ParseISA("sse9")
	assert.False(t, ok)
	assert.Equal(t, "unknown", ISA(42).String())

	assert.Equal(t, 1, Generic.Lanes())
	assert.Equal(t, 4, NEON.Lanes())
	assert.Equal(t, 8, AVX512.Lanes())
	assert.True(t, isISAAvailable(Generic))
	assert.True(t, isISAAvailable(ActiveISA()))
}

func BenchmarkDotNorm(b *testing.B) {
	const size = 768
	q := randomFloats(size)
	d := randomFloats(size)

	for _, k := range dotNormKernels {
		b.Run(k.name, func(b *testing.B) {
			for b.Loop() {
				_, _ = k.fn(q, d)
			}
		})
	}
}

func BenchmarkCosineDistanceBatch(b *testing.B) {
	const (
		dim  = 768
		rows = 1000
	)
	q := randomFloats(dim)
	targets := randomFloats(dim * rows)
	out := make([]float32, rows)
	qn := Norm64(q)

	b.ResetTimer()
	for b.Loop() {
		CosineDistanceBatch(q, qn, targets, dim, out)
	}
}

func randomFloats(n int) []float32 {
	return randomFloatsWith(rand.New(rand.NewSource(1)), n)
}

func randomFloatsWith(rng *rand.Rand, n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	return v
}
