// Package analysis implements the drift-detection engine: baseline statistics
// over windows of stored runs, two-sample drift detection against those
// baselines, and arbitrary period comparison.
//
// Every operation is a pure function of a repository snapshot loaded at call
// time, so concurrent analyses need no coordination.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/driftwatch/internal/results"
	"github.com/blackwell-systems/driftwatch/internal/stats"
)

var (
	// ErrNoData is returned when a requested window matches no runs, or the
	// matched runs hold no results for the requested model.
	ErrNoData = errors.New("no data")

	// ErrInsufficientHistory is returned when the stored run count cannot
	// cover the combined baseline and current windows.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// RunSource is the repository capability the analysis engine depends on.
// Implementations must return runs in ascending timestamp order and an empty
// slice (not an error) when no data exists.
type RunSource interface {
	LoadAllRuns() ([]results.Run, error)
}

// BaselineMetrics is the reference performance snapshot for one model over
// one window of runs. It is recomputed on demand and never persisted.
type BaselineMetrics struct {
	ModelName string `json:"model_name"`

	// StartDate and EndDate are the dates of the earliest and latest matched
	// runs, not the requested window bounds.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// NumRuns is the number of runs actually matched.
	NumRuns int `json:"num_runs"`

	// Overall aggregates every score for the model across the window.
	Overall stats.Summary `json:"overall"`

	// ByCategory and ByTest partition the same flattened sample. Partitions
	// too small for descriptive statistics are omitted.
	ByCategory map[string]stats.Summary `json:"by_category,omitempty"`
	ByTest     map[string]stats.Summary `json:"by_test,omitempty"`

	// Latency summarizes latency over successful calls only; nil when fewer
	// than two successful results exist.
	Latency *stats.Summary `json:"latency_ms,omitempty"`
}

// CalculateBaseline computes baseline metrics for a model from the earliest
// numRuns runs (in ascending timestamp order) that exercised the model.
func CalculateBaseline(src RunSource, modelName string, numRuns int) (*BaselineMetrics, error) {
	all, err := src.LoadAllRuns()
	if err != nil {
		return nil, err
	}

	window := earliestRunsWithModel(all, modelName, numRuns)
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: no runs found for model %s", ErrNoData, modelName)
	}

	return buildBaseline(window, modelName)
}

// CalculateBaselineRange computes baseline metrics for a model over an
// inclusive date window. Dates are YYYY-MM-DD and compared against the date
// portion of each run timestamp.
func CalculateBaselineRange(src RunSource, modelName, startDate, endDate string) (*BaselineMetrics, error) {
	all, err := src.LoadAllRuns()
	if err != nil {
		return nil, err
	}

	window := runsInPeriod(all, startDate, endDate)
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: no runs found between %s and %s", ErrNoData, startDate, endDate)
	}

	return buildBaseline(window, modelName)
}

// buildBaseline aggregates a window of runs into BaselineMetrics for one model.
func buildBaseline(window []results.Run, modelName string) (*BaselineMetrics, error) {
	var modelResults []results.Result
	for i := range window {
		modelResults = append(modelResults, window[i].ResultsForModel(modelName)...)
	}
	if len(modelResults) == 0 {
		return nil, fmt.Errorf("%w: no results found for model %s", ErrNoData, modelName)
	}

	scores := make([]float64, len(modelResults))
	for i, r := range modelResults {
		scores[i] = r.Score
	}

	overall, err := stats.Calculate(scores)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", modelName, err)
	}

	bm := &BaselineMetrics{
		ModelName: modelName,
		StartDate: window[0].Date(),
		EndDate:   window[len(window)-1].Date(),
		NumRuns:   len(window),
		Overall:   overall,
	}

	// Partition by category and by test. Partitions that cannot support
	// descriptive statistics (fewer than 2 scores) are skipped rather than
	// failing the whole baseline.
	byCategory := make(map[string][]float64)
	byTest := make(map[string][]float64)
	var latencies []float64
	for _, r := range modelResults {
		if r.Category != "" {
			byCategory[r.Category] = append(byCategory[r.Category], r.Score)
		}
		byTest[r.TestID] = append(byTest[r.TestID], r.Score)
		if r.Success {
			latencies = append(latencies, float64(r.LatencyMs))
		}
	}

	bm.ByCategory = summarizePartitions(byCategory)
	bm.ByTest = summarizePartitions(byTest)

	if latency, err := stats.Calculate(latencies); err == nil {
		bm.Latency = &latency
	}

	return bm, nil
}

func summarizePartitions(partitions map[string][]float64) map[string]stats.Summary {
	out := make(map[string]stats.Summary, len(partitions))
	for key, scores := range partitions {
		summary, err := stats.Calculate(scores)
		if err != nil {
			continue
		}
		out[key] = summary
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// BaselineFailure records one model whose baseline could not be computed.
type BaselineFailure struct {
	Model string
	Err   error
}

// AllBaselines computes a baseline for every model referenced by any stored
// run. Models are analyzed in parallel; a model whose computation fails is
// reported in the failure list instead of aborting the others.
func AllBaselines(src RunSource, numRuns int) (map[string]*BaselineMetrics, []BaselineFailure, error) {
	all, err := src.LoadAllRuns()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%w: no runs stored", ErrNoData)
	}

	seen := make(map[string]bool)
	var models []string
	for i := range all {
		for _, m := range all[i].ModelsTested {
			if !seen[m] {
				seen[m] = true
				models = append(models, m)
			}
		}
	}
	sort.Strings(models)

	baselines := make(map[string]*BaselineMetrics, len(models))
	var failures []BaselineFailure
	var mu sync.Mutex

	var g errgroup.Group
	for _, model := range models {
		model := model
		g.Go(func() error {
			window := earliestRunsWithModel(all, model, numRuns)

			var bm *BaselineMetrics
			var berr error
			if len(window) == 0 {
				berr = fmt.Errorf("%w: no runs found for model %s", ErrNoData, model)
			} else {
				bm, berr = buildBaseline(window, model)
			}

			mu.Lock()
			defer mu.Unlock()
			if berr != nil {
				failures = append(failures, BaselineFailure{Model: model, Err: berr})
				return nil
			}
			baselines[model] = bm
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Model < failures[j].Model })

	return baselines, failures, nil
}

// earliestRunsWithModel scans the full history in ascending timestamp order
// and returns the first numRuns runs that exercised the model.
func earliestRunsWithModel(all []results.Run, modelName string, numRuns int) []results.Run {
	var window []results.Run
	for i := range all {
		if !all[i].TestsModel(modelName) {
			continue
		}
		window = append(window, all[i])
		if len(window) >= numRuns {
			break
		}
	}
	return window
}

// latestRunsWithModel returns the last numRuns runs in the slice that
// exercised the model, preserving ascending order.
func latestRunsWithModel(all []results.Run, modelName string, numRuns int) []results.Run {
	var window []results.Run
	for i := len(all) - 1; i >= 0; i-- {
		if !all[i].TestsModel(modelName) {
			continue
		}
		window = append(window, all[i])
		if len(window) >= numRuns {
			break
		}
	}
	// Reverse back to chronological order.
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window
}

// runsInPeriod returns the runs whose timestamp date falls inside the
// inclusive [start, end] date window.
func runsInPeriod(all []results.Run, start, end string) []results.Run {
	var window []results.Run
	for i := range all {
		d := all[i].Date()
		if d >= start && d <= end {
			window = append(window, all[i])
		}
	}
	return window
}

// flattenScores collects every score for the model across the given runs.
func flattenScores(runs []results.Run, modelName string) []float64 {
	var scores []float64
	for i := range runs {
		for _, r := range runs[i].ResultsForModel(modelName) {
			scores = append(scores, r.Score)
		}
	}
	return scores
}
