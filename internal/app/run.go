package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/driftwatch/internal/battery"
	"github.com/blackwell-systems/driftwatch/internal/config"
	"github.com/blackwell-systems/driftwatch/internal/llm"
	"github.com/blackwell-systems/driftwatch/internal/output"
	"github.com/blackwell-systems/driftwatch/internal/results"
	"github.com/blackwell-systems/driftwatch/internal/runner"
)

var (
	runCategory string
	runTimeout  time.Duration
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the test battery against all configured models",
	Long: `Send every battery prompt to every configured model, score the responses,
and save the run to the data directory. Models whose API key environment
variable is unset are skipped.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runCategory, "category", "", "Run only tests of one category (math, reasoning, factual, consistency, instruction, creative, code)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 60*time.Second, "Per-probe timeout")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Execute without saving the run")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	probers := buildProbers(cfg)
	if len(probers) == 0 {
		return fmt.Errorf("no usable models: set an API key or configure a local endpoint")
	}

	tests := battery.Default()
	if runCategory != "" {
		tests = battery.ByCategory(tests, battery.Category(runCategory))
		if len(tests) == 0 {
			return fmt.Errorf("no tests in category %q", runCategory)
		}
	}

	opts := []runner.RunnerOption{
		runner.WithTests(tests),
		runner.WithTimeout(runTimeout),
	}
	if flagVerbose && !flagJSON {
		opts = append(opts, runner.WithProgress(func(model, testID string, done, total int) {
			fmt.Printf("  [%d/%d] %s %s\n", done, total, model, testID)
		}))
	}

	run, err := runner.New(probers, opts...).Run(cmd.Context())
	if err != nil {
		return err
	}

	if !runDryRun {
		storage := results.NewStorage(cfg.DataDir)
		if err := storage.SaveRun(run); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	renderRun(run)
	if runDryRun {
		fmt.Println(" Dry run: results were not saved.")
	}
	return nil
}

// buildProbers turns the configured models into probers. Models whose key
// variable is unset are skipped; models without an api_key_env (local
// servers) always qualify.
func buildProbers(cfg *config.Config) []llm.Prober {
	var probers []llm.Prober
	for _, m := range cfg.Models {
		if m.APIKeyEnv != "" && m.APIKey() == "" {
			if flagVerbose {
				fmt.Fprintf(os.Stderr, "skipping %s: %s is not set\n", m.Name, m.APIKeyEnv)
			}
			continue
		}
		probers = append(probers, llm.NewClient(m.Name,
			llm.WithBaseURL(m.BaseURL),
			llm.WithAPIKey(m.APIKey()),
			llm.WithModelID(m.ModelID),
			llm.WithMaxTokens(m.MaxTokens),
		))
	}
	return probers
}

func renderRun(run *results.Run) {
	fmt.Println(output.Section("Test Run " + run.RunID[:8]))
	fmt.Println()
	fmt.Printf(" %d tests, %d models, %d results\n\n",
		run.TotalTests, len(run.ModelsTested), run.TotalResults)

	tbl := output.NewTable("Model", "Avg Score", "Passed", "Failed Calls", "Avg Latency")
	for _, model := range run.ModelsTested {
		rs := run.ResultsForModel(model)
		var sum float64
		passed, failedCalls := 0, 0
		var latencySum int64
		ok := 0
		for _, r := range rs {
			sum += r.Score
			if r.Score >= 1.0 {
				passed++
			}
			if !r.Success {
				failedCalls++
				continue
			}
			latencySum += r.LatencyMs
			ok++
		}

		avg := 0.0
		if len(rs) > 0 {
			avg = sum / float64(len(rs))
		}
		latency := "-"
		if ok > 0 {
			latency = fmt.Sprintf("%dms", latencySum/int64(ok))
		}
		tbl.AddRow(
			model,
			output.ScoreBar(avg, 10),
			fmt.Sprintf("%d/%d", passed, len(rs)),
			fmt.Sprintf("%d", failedCalls),
			latency,
		)
	}
	tbl.Print()
}
