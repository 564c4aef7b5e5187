package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/vecrank"
	"github.com/hupe1980/vecrank/loader"
	"github.com/hupe1980/vecrank/resource"
)

type queryFlags struct {
	file        string
	format      string
	query       string
	top         int
	workers     int
	ioLimit     int64
	memoryLimit int64
	json        bool
}

type queryResult struct {
	Document string  `json:"document"`
	Distance float32 `json:"distance"`
}

func newQueryCommand(root *rootFlags) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Rank an entry file against a query embedding",
		Long: `Load an entry file, build a store and print the closest documents.

The file format follows the extension (.jsonl, .json, .yaml, optionally
.zst or .lz4 compressed) unless --format is given.

Examples:
  vecrank query --file entries.jsonl --query 1,2,3
  vecrank query --file entries.yaml.lz4 --query 0.1,0.2,0.3 --top 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "entry file")
	cmd.Flags().StringVar(&flags.format, "format", "auto", "entry format (auto, jsonl, json, yaml)")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "comma separated query embedding")
	cmd.Flags().IntVarP(&flags.top, "top", "k", -1, "number of results (-1 = all)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "ranking goroutines (0 = GOMAXPROCS)")
	cmd.Flags().Int64Var(&flags.ioLimit, "io-limit", 0, "read limit in bytes per second (0 = unlimited)")
	cmd.Flags().Int64Var(&flags.memoryLimit, "memory-limit", 0, "memory budget in bytes (0 = unlimited)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print results as JSON")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runQuery(cmd *cobra.Command, root *rootFlags, flags *queryFlags) error {
	query, err := parseEmbedding(flags.query)
	if err != nil {
		return err
	}

	format, err := loader.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	loadOpts := []loader.Option{}
	if format != loader.FormatAuto {
		loadOpts = append(loadOpts, loader.WithFormat(format))
	}
	if flags.ioLimit > 0 {
		loadOpts = append(loadOpts, loader.WithResourceController(
			resource.NewController(resource.Config{IOLimitBytesPerSec: flags.ioLimit}),
		))
	}

	entries, err := loader.Load(cmd.Context(), flags.file, loadOpts...)
	if err != nil {
		return err
	}
	root.logger.InfoContext(cmd.Context(), "entries loaded", "file", flags.file, "entries", len(entries))

	state, err := vecrank.PrepareState(entries)
	if err != nil {
		return fmt.Errorf("prepare state: %w", err)
	}
	if len(query) != state.Init.EmbeddingSize {
		return fmt.Errorf("query has %d values, entries have embedding size %d", len(query), state.Init.EmbeddingSize)
	}

	store, err := vecrank.CreateFromState(cmd.Context(), state, storeOptions(root, flags.workers, flags.memoryLimit)...)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	copy(store.QueryEmbedding(), query)

	var results []vecrank.Result[string]
	if flags.top < 0 {
		results = store.PerformQuery()
	} else {
		results = store.PerformQuery(vecrank.WithDocumentCount(flags.top))
	}

	if flags.json {
		out := make([]queryResult, len(results))
		for i, r := range results {
			out[i] = queryResult{Document: r.Document, Distance: r.Distance}
		}
		enc := gojson.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tDISTANCE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.6f\n", r.Document, r.Distance)
	}
	return tw.Flush()
}

func parseEmbedding(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	v := make([]float32, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --query value %q: %w", f, err)
		}
		v = append(v, float32(x))
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("--query is empty")
	}
	return v, nil
}
