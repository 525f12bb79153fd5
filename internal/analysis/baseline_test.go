package analysis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blackwell-systems/driftwatch/internal/results"
)

// fakeSource serves a fixed slice of runs, already in ascending order.
type fakeSource struct {
	runs []results.Run
}

func (f *fakeSource) LoadAllRuns() ([]results.Run, error) {
	return f.runs, nil
}

// scoreRun builds a run on the given date with one result per score for each
// model in scores.
func scoreRun(id, date string, scores map[string][]float64) results.Run {
	run := results.Run{
		RunID:     id,
		Timestamp: date + "T12:00:00Z",
	}
	for model, vals := range scores {
		run.ModelsTested = append(run.ModelsTested, model)
		for i, v := range vals {
			run.Results = append(run.Results, results.Result{
				TestID:    fmt.Sprintf("test-%d", i+1),
				ModelName: model,
				Score:     v,
				LatencyMs: 500,
				Success:   true,
				Category:  "factual",
			})
		}
	}
	run.TotalResults = len(run.Results)
	return run
}

func day(n int) string {
	return fmt.Sprintf("2024-11-%02d", n)
}

func TestCalculateBaseline_NoRuns(t *testing.T) {
	src := &fakeSource{}
	_, err := CalculateBaseline(src, "gpt", 7)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData on empty history, got %v", err)
	}
}

func TestCalculateBaseline_ModelNeverTested(t *testing.T) {
	src := &fakeSource{runs: []results.Run{
		scoreRun("r1", day(1), map[string][]float64{"other": {0.5, 0.6}}),
	}}
	_, err := CalculateBaseline(src, "gpt", 7)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for unknown model, got %v", err)
	}
}

// Only runs that contain the model count toward the window: with the model in
// runs 2, 4, 6, 8, 10, a 3-run baseline must cover exactly runs 2, 4, 6.
func TestCalculateBaseline_SkipsRunsWithoutModel(t *testing.T) {
	var runs []results.Run
	for i := 1; i <= 10; i++ {
		scores := map[string][]float64{"filler": {0.1, 0.2}}
		if i%2 == 0 {
			scores["X"] = []float64{0.8, 0.9}
		}
		runs = append(runs, scoreRun(fmt.Sprintf("r%d", i), day(i), scores))
	}
	src := &fakeSource{runs: runs}

	bm, err := CalculateBaseline(src, "X", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bm.NumRuns != 3 {
		t.Errorf("expected 3 matched runs, got %d", bm.NumRuns)
	}
	if bm.StartDate != day(2) {
		t.Errorf("expected window to start at run 2 (%s), got %s", day(2), bm.StartDate)
	}
	if bm.EndDate != day(6) {
		t.Errorf("expected window to end at run 6 (%s), got %s", day(6), bm.EndDate)
	}
	if bm.Overall.Count != 6 {
		t.Errorf("expected 6 scores in the flattened sample, got %d", bm.Overall.Count)
	}
}

func TestCalculateBaseline_Aggregation(t *testing.T) {
	run := results.Run{
		RunID:        "r1",
		Timestamp:    "2024-11-01T12:00:00Z",
		ModelsTested: []string{"gpt"},
		Results: []results.Result{
			{TestID: "math-1", ModelName: "gpt", Score: 1.0, LatencyMs: 400, Success: true, Category: "reasoning"},
			{TestID: "fact-1", ModelName: "gpt", Score: 0.5, LatencyMs: 300, Success: true, Category: "factual"},
			{TestID: "fact-2", ModelName: "gpt", Score: 0.0, LatencyMs: 0, Success: false, Error: "timeout", Category: "factual"},
		},
	}
	run2 := run
	run2.RunID = "r2"
	run2.Timestamp = "2024-11-02T12:00:00Z"
	src := &fakeSource{runs: []results.Run{run, run2}}

	bm, err := CalculateBaseline(src, "gpt", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bm.Overall.Count != 6 {
		t.Errorf("expected 6 scores overall, got %d", bm.Overall.Count)
	}

	// Both categories have 2+ scores across the two runs.
	if _, ok := bm.ByCategory["reasoning"]; !ok {
		t.Error("expected a reasoning category partition")
	}
	if got := bm.ByCategory["factual"].Count; got != 4 {
		t.Errorf("expected 4 factual scores, got %d", got)
	}
	if got := bm.ByTest["math-1"].Count; got != 2 {
		t.Errorf("expected 2 scores for math-1, got %d", got)
	}

	// Latency covers successful calls only: 4 of 6.
	if bm.Latency == nil {
		t.Fatal("expected latency stats")
	}
	if bm.Latency.Count != 4 {
		t.Errorf("expected latency over 4 successful calls, got %d", bm.Latency.Count)
	}
	if bm.Latency.Mean != 350 {
		t.Errorf("expected mean latency 350, got %f", bm.Latency.Mean)
	}
}

func TestCalculateBaseline_NoSuccessfulCalls(t *testing.T) {
	run := results.Run{
		RunID:        "r1",
		Timestamp:    "2024-11-01T12:00:00Z",
		ModelsTested: []string{"gpt"},
		Results: []results.Result{
			{TestID: "t1", ModelName: "gpt", Score: 0, Success: false, Error: "quota"},
			{TestID: "t2", ModelName: "gpt", Score: 0, Success: false, Error: "quota"},
		},
	}
	src := &fakeSource{runs: []results.Run{run}}

	bm, err := CalculateBaseline(src, "gpt", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bm.Latency != nil {
		t.Error("expected no latency stats when no call succeeded")
	}
}

func TestCalculateBaselineRange(t *testing.T) {
	src := &fakeSource{runs: []results.Run{
		scoreRun("r1", day(1), map[string][]float64{"gpt": {0.9, 0.9}}),
		scoreRun("r2", day(5), map[string][]float64{"gpt": {0.8, 0.8}}),
		scoreRun("r3", day(9), map[string][]float64{"gpt": {0.7, 0.7}}),
	}}

	bm, err := CalculateBaselineRange(src, "gpt", day(1), day(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bm.NumRuns != 2 {
		t.Errorf("expected 2 runs inside the window, got %d", bm.NumRuns)
	}
	if bm.Overall.Count != 4 {
		t.Errorf("expected 4 scores, got %d", bm.Overall.Count)
	}

	_, err = CalculateBaselineRange(src, "gpt", "2024-12-01", "2024-12-31")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for empty window, got %v", err)
	}
}

func TestAllBaselines_IsolatesFailures(t *testing.T) {
	src := &fakeSource{runs: []results.Run{
		scoreRun("r1", day(1), map[string][]float64{"good": {0.8, 0.9}}),
		scoreRun("r2", day(2), map[string][]float64{"good": {0.85, 0.88}}),
		// "listed" appears in the model set but never produced a result.
		{
			RunID:        "r3",
			Timestamp:    day(3) + "T12:00:00Z",
			ModelsTested: []string{"listed"},
		},
	}}

	baselines, failures, err := AllBaselines(src, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := baselines["good"]; !ok {
		t.Error("expected a baseline for model 'good'")
	}
	if _, ok := baselines["listed"]; ok {
		t.Error("did not expect a baseline for model 'listed'")
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Model != "listed" {
		t.Errorf("expected failure for 'listed', got %q", failures[0].Model)
	}
	if !errors.Is(failures[0].Err, ErrNoData) {
		t.Errorf("expected failure to wrap ErrNoData, got %v", failures[0].Err)
	}
}

func TestAllBaselines_EmptyHistory(t *testing.T) {
	_, _, err := AllBaselines(&fakeSource{}, 7)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData on empty history, got %v", err)
	}
}
