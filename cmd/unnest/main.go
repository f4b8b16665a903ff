// Command unnest detects deeply nested conditional chains in source files
// and rewrites them with guard-clause, early-return, or method-extraction
// patterns, validating every rewrite against the dialect's own indexer.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
