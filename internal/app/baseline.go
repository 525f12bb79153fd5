package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/analysis"
	"github.com/blackwell-systems/driftwatch/internal/config"
	"github.com/blackwell-systems/driftwatch/internal/output"
	"github.com/blackwell-systems/driftwatch/internal/results"
	"github.com/blackwell-systems/driftwatch/internal/stats"
)

var baselineRuns int

var baselineCmd = &cobra.Command{
	Use:   "baseline [model]",
	Short: "Show baseline statistics for one or all models",
	Long: `Compute baseline statistics from each model's earliest stored runs. The
baseline is the reference that drift detection compares against: its mean,
spread and confidence interval describe how the model performed when
monitoring began.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBaseline,
}

func init() {
	baselineCmd.Flags().IntVar(&baselineRuns, "runs", 0, "Number of runs in the baseline window (default from config)")
	rootCmd.AddCommand(baselineCmd)
}

func runBaseline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	numRuns := cfg.Drift.BaselineRuns
	if baselineRuns > 0 {
		numRuns = baselineRuns
	}
	storage := results.NewStorage(cfg.DataDir)

	if len(args) == 1 {
		bm, err := analysis.CalculateBaseline(storage, args[0], numRuns)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(bm)
		}
		renderBaseline(bm)
		return nil
	}

	baselines, failures, err := analysis.AllBaselines(storage, numRuns)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]any{
			"baselines": baselines,
			"failures":  failureStrings(failures),
		})
	}

	var models []string
	for model := range baselines {
		models = append(models, model)
	}
	sort.Strings(models)

	fmt.Println(output.Section("Model Baselines"))
	fmt.Println()
	tbl := output.NewTable("Model", "Runs", "Period", "Mean", "Std", "95% CI")
	for _, model := range models {
		bm := baselines[model]
		tbl.AddRow(
			model,
			fmt.Sprintf("%d", bm.NumRuns),
			fmt.Sprintf("%s to %s", bm.StartDate, bm.EndDate),
			output.ScoreBar(bm.Overall.Mean, 10),
			fmt.Sprintf("%.3f", bm.Overall.Std),
			fmt.Sprintf("[%.3f, %.3f]", bm.Overall.CILower, bm.Overall.CIUpper),
		)
	}
	tbl.Print()

	for _, f := range failures {
		fmt.Printf(" %s\n", output.StyleMuted.Render(fmt.Sprintf("%s: %v", f.Model, f.Err)))
	}
	return nil
}

func renderBaseline(bm *analysis.BaselineMetrics) {
	fmt.Println(output.Section("Baseline: " + bm.ModelName))
	fmt.Println()
	fmt.Printf(" %d runs from %s to %s\n\n", bm.NumRuns, bm.StartDate, bm.EndDate)

	fmt.Printf(" Overall  %s\n", output.ScoreBar(bm.Overall.Mean, 20))
	fmt.Printf(" Std %.3f   95%% CI [%.3f, %.3f]   n=%d\n",
		bm.Overall.Std, bm.Overall.CILower, bm.Overall.CIUpper, bm.Overall.Count)
	if bm.Latency != nil {
		fmt.Printf(" Latency %.0fms avg (min %.0f, max %.0f)\n",
			bm.Latency.Mean, bm.Latency.Min, bm.Latency.Max)
	}

	if len(bm.ByCategory) > 0 {
		fmt.Println()
		tbl := output.NewTable("Category", "Mean", "Std", "n")
		for _, cat := range sortedKeys(bm.ByCategory) {
			s := bm.ByCategory[cat]
			tbl.AddRow(cat, output.ScoreBar(s.Mean, 10), fmt.Sprintf("%.3f", s.Std), fmt.Sprintf("%d", s.Count))
		}
		tbl.Print()
	}
}

func sortedKeys(m map[string]stats.Summary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func failureStrings(failures []analysis.BaselineFailure) map[string]string {
	out := make(map[string]string, len(failures))
	for _, f := range failures {
		out[f.Model] = f.Err.Error()
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
