package main

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/does-it-throw/analyzer/internal/analyzer/model"
)

// fileConfig is the `.doesitthrowrc.toml` shape, modeled on
// vovakirdan-surge's own config loading: the file sets the analyzer's
// severities and options, and no CLI flag overrides these values.
type fileConfig struct {
	Severities struct {
		ThrowStatement      string `toml:"throw_statement"`
		FunctionThrow       string `toml:"function_throw"`
		CallToThrow         string `toml:"call_to_throw"`
		CallToImportedThrow string `toml:"call_to_imported_throw"`
	} `toml:"severities"`
	IncludeTryStatementThrows bool     `toml:"include_try_statement_throws"`
	IgnoreStatements          []string `toml:"ignore_statements"`
	ReportUnusedSuppressions  bool     `toml:"report_unused_suppressions"`
}

func defaultFileConfig() fileConfig {
	var c fileConfig
	c.Severities.ThrowStatement = "information"
	c.Severities.FunctionThrow = "warning"
	c.Severities.CallToThrow = "warning"
	c.Severities.CallToImportedThrow = "warning"
	return c
}

// loadConfig reads path if it is non-empty and exists; a missing path
// that the user never asked for is not an error, matching spec.md §7's
// "configuration delivery is an external collaborator" carve-out — a
// config file is a convenience, never a prerequisite.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func severityFromString(s string) model.Severity {
	switch s {
	case "error":
		return model.SeverityError
	case "information":
		return model.SeverityInformation
	case "hint":
		return model.SeverityHint
	default:
		return model.SeverityWarning
	}
}
