package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oxhq/unnest/core"
)

var (
	thresholdFlag     int
	maxRepairsFlag    int
	minConfidenceFlag float64
	workersFlag       int
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	// .env is optional; environment values only seed flag defaults.
	_ = godotenv.Load()

	cmd := &cobra.Command{
		Use:   "unnest",
		Short: "Nested conditional refactoring engine",
		Long: `Unnest scans source files for deeply nested conditional chains and
rewrites them with flattening patterns (guard clauses, early returns,
method extraction). Every rewrite is re-indexed and validated before it
is accepted; files with no accepted rewrite are left untouched.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().IntVar(&thresholdFlag, "threshold",
		envInt("UNNEST_DEPTH_THRESHOLD", core.DefaultConfig().DepthThreshold),
		"nesting depth at which a conditional chain is reported")
	cmd.PersistentFlags().IntVar(&maxRepairsFlag, "max-repairs",
		envInt("UNNEST_MAX_REPAIRS", core.DefaultConfig().MaxRepairAttempts),
		"maximum validator repair attempts per region")
	cmd.PersistentFlags().Float64Var(&minConfidenceFlag, "min-confidence",
		envFloat("UNNEST_MIN_CONFIDENCE", core.DefaultConfig().AcceptanceConfidence),
		"confidence below which an applied rewrite is flagged")
	cmd.PersistentFlags().IntVarP(&workersFlag, "workers", "p", 0,
		"parallel file workers (0 means one per CPU)")

	return cmd
}

func engineConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.DepthThreshold = thresholdFlag
	cfg.MaxRepairAttempts = maxRepairsFlag
	cfg.AcceptanceConfidence = minConfidenceFlag
	cfg.Workers = workersFlag
	return cfg
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}
