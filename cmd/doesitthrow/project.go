package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/does-it-throw/analyzer/internal/analyzer"
	"github.com/does-it-throw/analyzer/internal/analyzer/bridge"
	"github.com/does-it-throw/analyzer/internal/project"
)

var projectCmd = &cobra.Command{
	Use:   "project <entry-file>",
	Short: "Analyze a file and every relative import reachable from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProject,
}

func runProject(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	entry := args[0]

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	base := analyzer.Input{
		ThrowStatement:            severityFromString(cfg.Severities.ThrowStatement),
		FunctionThrow:             severityFromString(cfg.Severities.FunctionThrow),
		CallToThrow:               severityFromString(cfg.Severities.CallToThrow),
		CallToImportedThrow:       severityFromString(cfg.Severities.CallToImportedThrow),
		IncludeTryStatementThrows: cfg.IncludeTryStatementThrows,
		IgnoreStatements:          cfg.IgnoreStatements,
		ReportUnusedSuppression:   cfg.ReportUnusedSuppressions,
	}

	p := project.New(base, logger)
	results, err := p.Analyze(context.Background(), entry)
	if err != nil {
		return err
	}

	out, err := analyzer.MarshalResult(mergeProjectResults(results))
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

// mergeProjectResults flattens a project walk's per-file results into one
// Result for printing: diagnostics concatenated, everything else unioned.
func mergeProjectResults(results []project.FileResult) analyzer.Result {
	merged := analyzer.Result{
		ImportedIdentifiersDiagnostics: map[string]bridge.Bundle{},
	}
	for _, fr := range results {
		merged.Diagnostics = append(merged.Diagnostics, fr.Result.Diagnostics...)
		merged.RelativeImports = append(merged.RelativeImports, fr.Result.RelativeImports...)
		merged.ThrowIDs = append(merged.ThrowIDs, fr.Result.ThrowIDs...)
		for id, b := range fr.Result.ImportedIdentifiersDiagnostics {
			merged.ImportedIdentifiersDiagnostics[id] = b
		}
	}
	return merged
}
