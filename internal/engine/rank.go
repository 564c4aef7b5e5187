package engine

import (
	"cmp"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecrank/internal/simd"
)

// Rank fills the result buffer with every document's cosine distance to the
// current query, sorted ascending by distance and then by index.
//
// Precondition: the query and document buffers hold the embeddings to rank
// and nobody writes them until Rank returns.
func (s *Store) Rank() {
	qn := simd.Norm64(s.query)

	s.computeDistances(qn)

	for i, d := range s.distances {
		s.results[i] = Result{Index: int32(i), Distance: d}
	}

	slices.SortFunc(s.results, compareResults)
}

// Workers returns the number of goroutines Rank would use for this store,
// before worker slots are borrowed from the controller.
func (s *Store) Workers() int {
	chunks := (s.documentCount + s.cfg.MinRowsPerWorker - 1) / s.cfg.MinRowsPerWorker
	return max(1, min(s.cfg.Workers, chunks))
}

func (s *Store) computeDistances(queryNorm float64) {
	workers := s.Workers()
	if workers > 1 {
		// The calling goroutine always takes one chunk itself.
		extra := s.cfg.Controller.AcquireWorkers(workers - 1)
		defer s.cfg.Controller.ReleaseWorkers(extra)
		workers = extra + 1
	}

	if workers == 1 {
		simd.CosineDistanceBatch(s.query, queryNorm, s.documents, s.embeddingSize, s.distances)
		return
	}

	rowsPerWorker := (s.documentCount + workers - 1) / workers

	var g errgroup.Group
	for lo := rowsPerWorker; lo < s.documentCount; lo += rowsPerWorker {
		hi := min(lo+rowsPerWorker, s.documentCount)
		g.Go(func() error {
			s.computeRange(queryNorm, lo, hi)
			return nil
		})
	}
	s.computeRange(queryNorm, 0, min(rowsPerWorker, s.documentCount))

	_ = g.Wait() // workers never fail
}

func (s *Store) computeRange(queryNorm float64, lo, hi int) {
	dim := s.embeddingSize
	simd.CosineDistanceBatch(s.query, queryNorm, s.documents[lo*dim:hi*dim], dim, s.distances[lo:hi])
}

func compareResults(a, b Result) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
