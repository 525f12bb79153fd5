// Package app contains the Cobra command tree for driftwatch.
package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "Detect behavioral drift in LLM APIs over time",
	Long: `driftwatch runs a fixed battery of prompts against LLM APIs, stores the
scored results, and compares recent performance against each model's
historical baseline with statistical rigor. A silent model update shows up
as a significant score change long before users complain.

Run 'driftwatch run' on a schedule, then 'driftwatch drift' to check for
regressions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("driftwatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  run       Execute the test battery against all configured models")
		fmt.Println("  baseline  Show baseline statistics for one or all models")
		fmt.Println("  drift     Compare recent performance against the baseline")
		fmt.Println("  compare   Compare two explicit time periods")
		fmt.Println("  list      List stored test runs")
		fmt.Println("  history   Show recorded drift reports over time")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupOutput applies the color preference. Color is dropped when asked for
// explicitly or when stdout is not a terminal.
func setupOutput() {
	if flagNoColor || flagJSON {
		output.SetNoColor(true)
		return
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		output.SetNoColor(true)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/driftwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
