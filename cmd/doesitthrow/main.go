// Command doesitthrow is the CLI front end: `analyze` runs the core over
// one file, `project` walks relative imports and splices cross-file
// diagnostics. Command-tree shape grounded on vovakirdan-surge's
// `cmd/surge` (root command + one file per subcommand, persistent flags
// for cross-cutting concerns).
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "doesitthrow",
	Short: "Static analysis for where ECMAScript source may throw",
	Long: `doesitthrow reports where exceptions originate, how they propagate
through one-hop calls, how well they are documented via JSDoc @throws, and
whether try/catch handlers are exhaustive.`,
}

var (
	verbose    bool
	configPath string
)

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level tracing")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a .doesitthrowrc.toml config file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(projectCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("doesitthrow failed")
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
