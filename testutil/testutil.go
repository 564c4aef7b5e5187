package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"sync"

	"github.com/hupe1980/vecrank"
	"github.com/hupe1980/vecrank/internal/simd"
)

// RankedIndex is one entry of a reference ranking.
type RankedIndex struct {
	Index    int
	Distance float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// UniformRangeVectors generates random vectors with values in range [-1, 1).
func (r *RNG) UniformRangeVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()*2 - 1
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
// Uses Gaussian distribution for uniform distribution on the sphere.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		var norm float64
		for j := range vec {
			v := r.rand.NormFloat64()
			vec[j] = float32(v)
			norm += v * v
		}

		if norm == 0 {
			norm = 1
		}

		simd.ScaleInPlace(vec, float32(1.0/math.Sqrt(norm)))
		vectors[i] = vec
	}

	return vectors
}

// RandomEntries returns n entries with uniform [0, 1) embeddings of the
// given size. Documents are the decimal row numbers "0", "1", ...
func (r *RNG) RandomEntries(n, embeddingSize int) []vecrank.Entry[string] {
	vectors := r.UniformVectors(n, embeddingSize)

	entries := make([]vecrank.Entry[string], n)
	for i, v := range vectors {
		entries[i] = vecrank.Entry[string]{
			Document:  strconv.Itoa(i),
			Embedding: v,
		}
	}

	return entries
}

// ExactRanking ranks embeddings by cosine distance to query in float64.
// It applies the store's policies (zero norm gives distance 1, ties break
// by ascending index) and serves as ground truth in tests.
func ExactRanking(query []float32, embeddings [][]float32) []RankedIndex {
	qn := norm64(query)

	ranking := make([]RankedIndex, len(embeddings))
	for i, e := range embeddings {
		ranking[i] = RankedIndex{Index: i, Distance: cosineDistance64(query, qn, e)}
	}

	slices.SortFunc(ranking, func(a, b RankedIndex) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	return ranking
}

func cosineDistance64(q []float32, qn float64, d []float32) float64 {
	dn := norm64(d)
	if qn == 0 || dn == 0 {
		return 1
	}

	var dot float64
	for i := range d {
		dot += float64(q[i]) * float64(d[i])
	}

	sim := dot / (qn * dn)
	switch {
	case math.IsNaN(sim):
		return 1
	case sim > 1:
		sim = 1
	case sim < -1:
		sim = -1
	}
	return 1 - sim
}

func norm64(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}
