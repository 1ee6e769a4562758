package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Alpha Pulse - multi-factor tradability scoring engine",
	Long: `Alpha Pulse scores tracked stocks and crypto assets on seven
factors (trend, volatility, sentiment, fundamentals, relative strength,
smart money flows, macro) and combines them into a single -100..+100
score with a discrete trading signal.

Usage:
  go run ./cmd/pulse [command]

Examples:
  go run ./cmd/pulse api
  go run ./cmd/pulse score AAPL
  go run ./cmd/pulse migrate`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
