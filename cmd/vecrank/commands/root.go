package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecrank"
)

type rootFlags struct {
	logLevel  string
	logFormat string

	logger *vecrank.Logger
}

// NewRootCommand builds the vecrank command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "vecrank",
		Short: "Exact cosine ranking of in-memory embeddings",
		Long: `vecrank - rank documents by cosine distance to a query embedding.

Every query scans every document, so results are exact and deterministic.

Examples:
  # Time one query over 10000 random 768-dimensional embeddings
  vecrank bench

  # Write random entries and rank them
  vecrank generate --documents 1000 --embedding-size 3 --out entries.jsonl.zst
  vecrank query --file entries.jsonl.zst --query 1,2,3 --top 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd, flags.logLevel, flags.logFormat)
			if err != nil {
				return err
			}
			flags.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(
		newBenchCommand(flags),
		newQueryCommand(flags),
		newGenerateCommand(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func newLogger(cmd *cobra.Command, level, format string) (*vecrank.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return vecrank.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts)), nil
	case "json":
		return vecrank.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: want text or json", format)
	}
}
