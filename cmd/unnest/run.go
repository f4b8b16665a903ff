package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/oxhq/unnest/core"
	"github.com/oxhq/unnest/providers"
)

var (
	runDialectFlag  string
	runIncludeFlags []string
	runExcludeFlags []string
	runMaxFilesFlag int
	runDiffFlag     bool
	runWriteFlag    bool
)

var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Detect and refactor nested conditionals",
		Long: `Run scans the given files and directories, detects conditional chains at
or above the depth threshold, and applies flattening rewrites. Without
--write the rewritten text is never persisted; the summary table and
optional diff show what would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			units, err := collectUnits(cmd, args)
			if err != nil {
				return err
			}
			if len(units) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching source files")
				return nil
			}

			engine := core.NewEngine(providers.DefaultRegistry(), engineConfig())
			reports := engine.ProcessAll(cmd.Context(), units)
			return renderReports(cmd, reports)
		},
	}

	cmd.Flags().StringVarP(&runDialectFlag, "dialect", "d", "", "force a dialect instead of detecting by extension")
	cmd.Flags().StringArrayVarP(&runIncludeFlags, "include", "i", nil, "include files matching glob (can be repeated)")
	cmd.Flags().StringArrayVarP(&runExcludeFlags, "exclude", "x", nil, "exclude files matching glob (can be repeated)")
	cmd.Flags().IntVar(&runMaxFilesFlag, "max-files", 0, "stop after this many files per directory (0 means unlimited)")
	cmd.Flags().BoolVar(&runDiffFlag, "diff", false, "print a unified diff for each changed file")
	cmd.Flags().BoolVarP(&runWriteFlag, "write", "w", false, "write accepted rewrites back to disk")

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func collectUnits(cmd *cobra.Command, paths []string) ([]core.SourceUnit, error) {
	var units []core.SourceUnit

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			dialect := runDialectFlag
			if dialect == "" {
				dialect = core.DetectDialect(path)
			}
			if dialect == "" {
				return nil, fmt.Errorf("cannot detect dialect for %s; use --dialect", path)
			}
			unit, err := readUnit(path, dialect)
			if err != nil {
				return nil, err
			}
			units = append(units, unit)
			continue
		}

		walker := core.NewFileWalker()
		results, err := walker.Walk(cmd.Context(), core.FileScope{
			Path:     path,
			Include:  runIncludeFlags,
			Exclude:  runExcludeFlags,
			MaxFiles: runMaxFilesFlag,
			Dialect:  runDialectFlag,
		})
		if err != nil {
			return nil, err
		}
		for result := range results {
			if result.Error != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", result.Path, result.Error)
				continue
			}
			unit, err := readUnit(result.Path, result.Dialect)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", result.Path, err)
				continue
			}
			units = append(units, unit)
		}
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	return units, nil
}

func readUnit(path, dialect string) (core.SourceUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.SourceUnit{}, err
	}
	return core.SourceUnit{Path: path, Dialect: dialect, Text: string(data)}, nil
}

func renderReports(cmd *cobra.Command, reports []*core.Report) error {
	out := cmd.OutOrStdout()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"File", "Lines", "Depth", "Severity", "Pattern", "Confidence", "Flags"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	var regions, applied, failures int
	for _, report := range reports {
		if report.Error != "" {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", report.Path, report.Error)
			continue
		}
		for _, o := range report.Outcomes {
			regions++
			confidence := "-"
			if o.Metrics != nil {
				confidence = fmt.Sprintf("%.2f", o.Metrics.Confidence)
			}
			if o.Applied {
				applied++
			}
			table.Append([]string{
				report.Path,
				fmt.Sprintf("%d-%d", o.Region.StartLine, o.Region.EndLine),
				fmt.Sprintf("%d", o.Region.Depth),
				string(o.Region.Severity),
				o.PatternLabel(),
				confidence,
				strings.Join(o.Flags, ","),
			})
		}
	}

	if regions > 0 {
		table.Render()
	}
	fmt.Fprintf(out, "\n%d region(s), %d refactored, %d file error(s)\n", regions, applied, failures)

	for _, report := range reports {
		if runDiffFlag && report.Changed() {
			fmt.Fprintln(out, report.Diff)
		}
		if runWriteFlag && report.Changed() {
			if err := os.WriteFile(report.Path, []byte(report.Text), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", report.Path, err)
			}
		}
	}
	return nil
}
