package results

import (
	"fmt"
	"testing"
)

// makeRun builds a minimal run for storage tests.
func makeRun(t *testing.T, id, timestamp string, models []string, scores map[string]float64) *Run {
	t.Helper()
	run := &Run{
		RunID:        id,
		Timestamp:    timestamp,
		ModelsTested: models,
	}
	for model, score := range scores {
		run.Results = append(run.Results, Result{
			TestID:    "t1",
			ModelName: model,
			Timestamp: timestamp,
			Score:     score,
			Success:   true,
		})
	}
	run.TotalResults = len(run.Results)
	return run
}

func TestLoadAllRuns_EmptyDirectory(t *testing.T) {
	s := NewStorage(t.TempDir())

	runs, err := s.LoadAllRuns()
	if err != nil {
		t.Fatalf("expected no error for missing data dir, got %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := NewStorage(t.TempDir())

	run := makeRun(t, "r1", "2024-11-06T14:30:22Z", []string{"gpt"}, map[string]float64{"gpt": 0.85})
	run.Results[0].Prompt = "What is 2+2?"
	run.Results[0].Response = "4"
	run.Results[0].LatencyMs = 412
	run.Results[0].TokensInput = 12
	run.Results[0].TokensOutput = 3
	run.Results[0].TokensTotal = 15
	run.Results[0].Category = "factual"

	if err := s.SaveRun(run); err != nil {
		t.Fatalf("saving run: %v", err)
	}

	runs, err := s.LoadAllRuns()
	if err != nil {
		t.Fatalf("loading runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	if got.RunID != "r1" {
		t.Errorf("expected run id r1, got %q", got.RunID)
	}
	if len(got.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got.Results))
	}
	if got.Results[0].Score != 0.85 {
		t.Errorf("expected score 0.85, got %f", got.Results[0].Score)
	}
	if got.Results[0].Category != "factual" {
		t.Errorf("expected category 'factual', got %q", got.Results[0].Category)
	}
}

func TestLoadAllRuns_AscendingOrder(t *testing.T) {
	s := NewStorage(t.TempDir())

	// Save out of order; load must come back chronological.
	timestamps := []string{
		"2024-11-08T09:00:00Z",
		"2024-11-06T09:00:00Z",
		"2024-11-07T09:00:00Z",
	}
	for i, ts := range timestamps {
		run := makeRun(t, fmt.Sprintf("r%d", i), ts, []string{"m"}, map[string]float64{"m": 0.5})
		if err := s.SaveRun(run); err != nil {
			t.Fatalf("saving run: %v", err)
		}
	}

	runs, err := s.LoadAllRuns()
	if err != nil {
		t.Fatalf("loading runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i-1].Timestamp >= runs[i].Timestamp {
			t.Errorf("runs out of order at %d: %s >= %s", i, runs[i-1].Timestamp, runs[i].Timestamp)
		}
	}
}

func TestLoadRunsSince(t *testing.T) {
	s := NewStorage(t.TempDir())

	for i, ts := range []string{
		"2024-11-05T10:00:00Z",
		"2024-11-06T10:00:00Z",
		"2024-11-07T10:00:00Z",
	} {
		run := makeRun(t, fmt.Sprintf("r%d", i), ts, []string{"m"}, map[string]float64{"m": 0.5})
		if err := s.SaveRun(run); err != nil {
			t.Fatalf("saving run: %v", err)
		}
	}

	runs, err := s.LoadRunsSince("2024-11-06")
	if err != nil {
		t.Fatalf("loading runs since: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs on or after 2024-11-06, got %d", len(runs))
	}
	if runs[0].Date() != "2024-11-06" {
		t.Errorf("expected first run on 2024-11-06, got %s", runs[0].Date())
	}
}

func TestResultsForModel(t *testing.T) {
	run := &Run{
		ModelsTested: []string{"a", "b"},
		Results: []Result{
			{TestID: "t1", ModelName: "a", Score: 0.9},
			{TestID: "t1", ModelName: "b", Score: 0.4},
			{TestID: "t2", ModelName: "a", Score: 0.8},
		},
	}

	got := run.ResultsForModel("a")
	if len(got) != 2 {
		t.Fatalf("expected 2 results for model a, got %d", len(got))
	}
	if !run.TestsModel("b") {
		t.Error("expected TestsModel(b) to be true")
	}
	if run.TestsModel("c") {
		t.Error("expected TestsModel(c) to be false")
	}
}
