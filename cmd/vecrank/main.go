// Package main is the entry point for the vecrank CLI.
//
// Usage:
//
//	vecrank [flags] <command> [args]
//
// Commands:
//
//	bench     - Time queries against random embeddings
//	query     - Rank an entry file against a query embedding
//	generate  - Write an entry file with random embeddings
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/vecrank/cmd/vecrank/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
