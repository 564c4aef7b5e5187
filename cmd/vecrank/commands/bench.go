package commands

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecrank"
	"github.com/hupe1980/vecrank/resource"
	"github.com/hupe1980/vecrank/testutil"
)

type benchFlags struct {
	embeddingSize int
	documents     int
	seed          int64
	workers       int
	runs          int
	top           int
	memoryLimit   int64
}

func newBenchCommand(root *rootFlags) *cobra.Command {
	flags := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time queries against random embeddings",
		Long: `Fill a store with random embeddings in [0, 1) and time PerformQuery.

Each run draws a new random query. The time of every run is printed in
milliseconds, followed by min/avg/max when --runs is greater than one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, root, flags)
		},
	}

	cmd.Flags().IntVar(&flags.embeddingSize, "embedding-size", 768, "embedding size")
	cmd.Flags().IntVar(&flags.documents, "documents", 10000, "number of documents")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "ranking goroutines (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&flags.runs, "runs", 1, "number of timed queries")
	cmd.Flags().IntVar(&flags.top, "top", -1, "results per query (-1 = all)")
	cmd.Flags().Int64Var(&flags.memoryLimit, "memory-limit", 0, "memory budget in bytes (0 = unlimited)")

	return cmd
}

func runBench(cmd *cobra.Command, root *rootFlags, flags *benchFlags) error {
	if flags.runs < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", flags.runs)
	}
	if err := checkShape(flags.embeddingSize, flags.documents); err != nil {
		return err
	}

	seed := flags.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := testutil.NewRNG(seed)

	state, err := vecrank.PrepareState(rng.RandomEntries(flags.documents, flags.embeddingSize))
	if err != nil {
		return fmt.Errorf("prepare state: %w", err)
	}

	store, err := vecrank.CreateFromState(cmd.Context(), state, storeOptions(root, flags.workers, flags.memoryLimit)...)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	root.logger.InfoContext(cmd.Context(), "bench started", "seed", seed, "runs", flags.runs)

	out := cmd.OutOrStdout()
	durations := make([]time.Duration, flags.runs)
	for i := range durations {
		rng.FillUniform(store.QueryEmbedding())

		start := time.Now()
		if flags.top < 0 {
			store.PerformQuery()
		} else {
			store.PerformQuery(vecrank.WithDocumentCount(flags.top))
		}
		durations[i] = time.Since(start)

		fmt.Fprintf(out, "%.3f ms\n", millis(durations[i]))
	}

	if flags.runs > 1 {
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		fmt.Fprintf(out, "min %.3f ms, avg %.3f ms, max %.3f ms\n",
			millis(slices.Min(durations)), millis(total/time.Duration(flags.runs)), millis(slices.Max(durations)))
	}

	return nil
}

func storeOptions(root *rootFlags, workers int, memoryLimit int64) []vecrank.Option {
	opts := []vecrank.Option{
		vecrank.WithLogger(root.logger),
		vecrank.WithWorkers(workers),
	}
	if memoryLimit > 0 {
		opts = append(opts, vecrank.WithResourceController(
			resource.NewController(resource.Config{MemoryLimitBytes: memoryLimit}),
		))
	}
	return opts
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func checkShape(embeddingSize, documents int) error {
	if embeddingSize < 1 || documents < 1 {
		return fmt.Errorf("--embedding-size and --documents must be positive, got %d and %d", embeddingSize, documents)
	}
	return nil
}
