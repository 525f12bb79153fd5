package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/config"
	"github.com/blackwell-systems/driftwatch/internal/output"
	"github.com/blackwell-systems/driftwatch/internal/results"
)

var listSince string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored test runs",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "Only show runs on or after this date (YYYY-MM-DD)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	storage := results.NewStorage(cfg.DataDir)
	var runs []results.Run
	if listSince != "" {
		runs, err = storage.LoadRunsSince(listSince)
	} else {
		runs, err = storage.LoadAllRuns()
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println(" No stored runs. Run 'driftwatch run' to create one.")
		return nil
	}

	fmt.Println(output.Section("Stored Runs"))
	fmt.Println()
	tbl := output.NewTable("Date", "Run", "Models", "Results")
	for _, run := range runs {
		id := run.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		tbl.AddRow(
			run.Date(),
			id,
			strings.Join(run.ModelsTested, ", "),
			fmt.Sprintf("%d", run.TotalResults),
		)
	}
	tbl.Print()
	fmt.Printf("\n %d run(s)\n", len(runs))
	return nil
}
