package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/diff"
	"github.com/spf13/cobra"

	"github.com/does-it-throw/analyzer/internal/analyzer"
)

var diffAgainst string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single source file and print its diagnostics as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&diffAgainst, "diff", "", "compare against a second file and print a unified diagnostics diff instead of JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	path := args[0]

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	res, err := analyzeFile(path, cfg)
	if err != nil {
		return err
	}

	if diffAgainst == "" {
		return printJSON(res)
	}

	logger.Debug().Str("a", path).Str("b", diffAgainst).Msg("comparing diagnostics")
	other, err := analyzeFile(diffAgainst, cfg)
	if err != nil {
		return err
	}
	return printDiff(path, res, diffAgainst, other)
}

func analyzeFile(path string, cfg fileConfig) (analyzer.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return analyzer.Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	input := analyzer.Input{
		FileContent:               string(content),
		Filename:                  path,
		ThrowStatement:            severityFromString(cfg.Severities.ThrowStatement),
		FunctionThrow:             severityFromString(cfg.Severities.FunctionThrow),
		CallToThrow:               severityFromString(cfg.Severities.CallToThrow),
		CallToImportedThrow:       severityFromString(cfg.Severities.CallToImportedThrow),
		IncludeTryStatementThrows: cfg.IncludeTryStatementThrows,
		IgnoreStatements:          cfg.IgnoreStatements,
		ReportUnusedSuppression:   cfg.ReportUnusedSuppressions,
	}
	return analyzer.Analyze(input)
}

func printJSON(res analyzer.Result) error {
	out, err := analyzer.MarshalResult(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

// printDiff renders a unified diff between two diagnostic listings, for
// local debugging of a suppression or doc-comment edit's effect — the
// same before/after comparison the teacher's own test utilities use
// pkg/diff for, applied here to diagnostic text instead of rendered
// source.
func printDiff(aName string, a analyzer.Result, bName string, b analyzer.Result) error {
	return diff.Text(aName, bName, diagnosticLines(a), diagnosticLines(b), os.Stdout)
}

func diagnosticLines(res analyzer.Result) string {
	var b strings.Builder
	for _, d := range res.Diagnostics {
		fmt.Fprintf(&b, "%d:%d %s %s\n", d.Range.Start.Line, d.Range.Start.Character, d.Severity, d.Message)
	}
	return b.String()
}
