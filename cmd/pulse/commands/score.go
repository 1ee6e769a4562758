package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [ticker]",
	Short: "Score one ticker, or the whole tracked universe",
	Long: `Runs the scoring engine once and prints the result.

With a ticker argument only that asset is scored; without one a full
scoring cycle rescores every tracked asset.

Example:
  go run ./cmd/pulse score AAPL
  go run ./cmd/pulse score`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(ctx, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(args) == 0 {
		if err := rt.runner.RunCycle(ctx); err != nil {
			return fmt.Errorf("scoring cycle: %w", err)
		}

		results, err := rt.scoreRepo.LatestAll(ctx)
		if err != nil {
			return fmt.Errorf("load results: %w", err)
		}

		fmt.Printf("%-10s %8s  %-12s %s\n", "TICKER", "SCORE", "SIGNAL", "EXPLANATION")
		for _, result := range results {
			fmt.Printf("%-10s %8.1f  %-12s %s\n",
				result.Asset.Ticker, result.AiScore, result.Signal, result.Explanation)
		}
		return nil
	}

	ticker := strings.ToUpper(args[0])
	result, err := rt.runner.ScoreTicker(ctx, ticker)
	if err != nil {
		return fmt.Errorf("score %s: %w", ticker, err)
	}
	return printJSON(result)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
