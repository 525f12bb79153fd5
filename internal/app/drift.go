package app

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/analysis"
	"github.com/blackwell-systems/driftwatch/internal/config"
	"github.com/blackwell-systems/driftwatch/internal/output"
	"github.com/blackwell-systems/driftwatch/internal/results"
	"github.com/blackwell-systems/driftwatch/internal/stats"
	"github.com/blackwell-systems/driftwatch/internal/store"
)

var (
	driftBaselineRuns int
	driftCurrentRuns  int
	driftSignificance float64
	driftRolling      bool
	driftNoRecord     bool
)

var driftCmd = &cobra.Command{
	Use:   "drift [model]",
	Short: "Compare recent performance against the baseline",
	Long: `Run drift detection for one model, or for every model found in the stored
runs. Recent scores are compared against the baseline window with Welch's
t-test; severity follows the effect size. Each analysis is recorded in the
report history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrift,
}

func init() {
	driftCmd.Flags().IntVar(&driftBaselineRuns, "baseline-runs", 0, "Number of baseline runs (default from config)")
	driftCmd.Flags().IntVar(&driftCurrentRuns, "current-runs", 0, "Number of recent runs to test (default from config)")
	driftCmd.Flags().Float64Var(&driftSignificance, "significance", 0, "Significance level for the t-test (default from config)")
	driftCmd.Flags().BoolVar(&driftRolling, "rolling", false, "Use the latest eligible runs before the current window as the baseline")
	driftCmd.Flags().BoolVar(&driftNoRecord, "no-record", false, "Do not record the analysis in the report history")
	rootCmd.AddCommand(driftCmd)
}

func runDrift(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	opts := analysis.DetectOptions{
		BaselineRuns: cfg.Drift.BaselineRuns,
		CurrentRuns:  cfg.Drift.CurrentRuns,
		Significance: cfg.Drift.Significance,
		Rolling:      driftRolling,
	}
	if driftBaselineRuns > 0 {
		opts.BaselineRuns = driftBaselineRuns
	}
	if driftCurrentRuns > 0 {
		opts.CurrentRuns = driftCurrentRuns
	}
	if driftSignificance > 0 {
		opts.Significance = driftSignificance
	}

	storage := results.NewStorage(cfg.DataDir)

	models := args
	if len(models) == 0 {
		models, err = storedModels(storage)
		if err != nil {
			return err
		}
		if len(models) == 0 {
			return fmt.Errorf("no stored runs: run 'driftwatch run' first")
		}
	}

	var reports []*analysis.DriftResult
	for _, model := range models {
		res, err := analysis.DetectDrift(storage, model, opts)
		if err != nil {
			if len(models) == 1 {
				return err
			}
			fmt.Printf(" %s\n", output.StyleMuted.Render(fmt.Sprintf("%s: %v", model, err)))
			continue
		}
		reports = append(reports, res)
	}

	if !driftNoRecord {
		if err := recordReports(reports); err != nil {
			return fmt.Errorf("recording reports: %w", err)
		}
	}

	if flagJSON {
		if len(reports) == 1 {
			return printJSON(reports[0])
		}
		return printJSON(reports)
	}

	for _, res := range reports {
		renderDrift(res)
	}
	return nil
}

// storedModels collects the distinct model names across all runs, in order
// of first appearance.
func storedModels(storage *results.Storage) ([]string, error) {
	runs, err := storage.LoadAllRuns()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var models []string
	for _, run := range runs {
		for _, m := range run.ModelsTested {
			if !seen[m] {
				seen[m] = true
				models = append(models, m)
			}
		}
	}
	return models, nil
}

func recordReports(reports []*analysis.DriftResult) error {
	if len(reports) == 0 {
		return nil
	}
	db, err := store.Open(config.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, res := range reports {
		if _, err := db.RecordReport(res); err != nil {
			return err
		}
	}
	return nil
}

func renderDrift(res *analysis.DriftResult) {
	fmt.Println(output.Section("Drift: " + res.ModelName))
	fmt.Println()
	if res.Mode != "" {
		fmt.Printf(" Period    %s (%s baseline)\n", res.TestPeriod, res.Mode)
	} else {
		fmt.Printf(" Period    %s\n", res.TestPeriod)
	}
	fmt.Printf(" Severity  %s\n\n", output.SeverityBadge(string(res.Severity)))

	tbl := output.NewTable("Baseline", "Current", "Change", "p-value", "Effect size")
	change := "-"
	trend := ""
	if res.ChangePercent != nil {
		change = fmt.Sprintf("%+.1f%%", *res.ChangePercent)
		trend = output.TrendArrowPercent(*res.ChangePercent, true)
	}
	tbl.AddRow(
		fmt.Sprintf("%.3f", res.BaselineMean),
		fmt.Sprintf("%.3f", res.CurrentMean),
		change,
		fmt.Sprintf("%.4f", res.PValue),
		fmt.Sprintf("%.2f (%s)", res.CohensD, stats.InterpretCohensD(res.CohensD)),
	)
	tbl.Print()

	if trend != "" {
		fmt.Printf("\n %s  %s\n", trend, output.StyleMuted.Render(stats.InterpretPValue(res.PValue)))
	}
	fmt.Printf("\n %s\n", res.Summary)

	if len(res.CategoryDrift) > 0 {
		var drifted []string
		for _, cat := range sortedBoolKeys(res.CategoryDrift) {
			if res.CategoryDrift[cat] {
				drifted = append(drifted, cat)
			}
		}
		if len(drifted) > 0 {
			fmt.Printf("\n Categories with significant change: %v\n", drifted)
		}
	}
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
