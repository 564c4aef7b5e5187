package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecrank/loader"
	"github.com/hupe1980/vecrank/testutil"
)

type generateFlags struct {
	embeddingSize int
	documents     int
	seed          int64
	out           string
}

func newGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write an entry file with random embeddings",
		Long: `Write documents "0" to "N-1" with random embeddings in [0, 1).

Format and compression follow the --out extension, for example
entries.jsonl, entries.json.zst or entries.yaml.lz4.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkShape(flags.embeddingSize, flags.documents); err != nil {
				return err
			}

			seed := flags.seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			entries := testutil.NewRNG(seed).RandomEntries(flags.documents, flags.embeddingSize)
			if err := loader.Save(cmd.Context(), flags.out, entries); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(entries), flags.out)
			return nil
		},
	}

	cmd.Flags().IntVar(&flags.embeddingSize, "embedding-size", 768, "embedding size")
	cmd.Flags().IntVar(&flags.documents, "documents", 10000, "number of documents")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file")

	_ = cmd.MarkFlagRequired("out")

	return cmd
}
