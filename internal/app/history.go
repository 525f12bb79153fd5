package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/config"
	"github.com/blackwell-systems/driftwatch/internal/output"
	"github.com/blackwell-systems/driftwatch/internal/store"
)

var (
	historyModel string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded drift reports over time",
	Long: `Every drift analysis is recorded when it runs. The history shows how a
model's severity and scores moved across analyses, which separates a
one-off dip from a sustained regression.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyModel, "model", "", "Only show reports for this model")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of reports to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(flagConfig); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	reports, err := db.ListReports(historyModel, historyLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(reports)
	}

	if len(reports) == 0 {
		fmt.Println(" No recorded reports. Run 'driftwatch drift' to create one.")
		return nil
	}

	fmt.Println(output.Section("Drift Report History"))
	fmt.Println()
	tbl := output.NewTable("Taken", "Model", "Severity", "Baseline", "Current", "Change", "p-value")
	for _, r := range reports {
		change := "-"
		if r.ChangePercent != nil {
			change = fmt.Sprintf("%+.1f%%", *r.ChangePercent)
		}
		tbl.AddRow(
			r.TakenAt.Format("2006-01-02 15:04"),
			r.ModelName,
			output.SeverityBadge(r.Severity),
			fmt.Sprintf("%.3f", r.BaselineMean),
			fmt.Sprintf("%.3f", r.CurrentMean),
			change,
			fmt.Sprintf("%.4f", r.PValue),
		)
	}
	tbl.Print()
	return nil
}
