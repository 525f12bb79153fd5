package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/analysis"
	"github.com/blackwell-systems/driftwatch/internal/config"
	"github.com/blackwell-systems/driftwatch/internal/results"
)

var compareCmd = &cobra.Command{
	Use:   "compare <model> <a-start> <a-end> <b-start> <b-end>",
	Short: "Compare two explicit time periods",
	Long: `Compare a model's scores between two date windows (YYYY-MM-DD, inclusive).
Useful for questions like "did gpt4o change between October and November?"
independent of the baseline window.`,
	Args: cobra.ExactArgs(5),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	storage := results.NewStorage(cfg.DataDir)
	res, err := analysis.ComparePeriods(storage, args[0], args[1], args[2], args[3], args[4])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(res)
	}
	renderDrift(res)
	return nil
}
