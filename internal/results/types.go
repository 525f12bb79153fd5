// Package results defines the immutable run records produced by the test
// battery and the JSON-file repository that persists them.
package results

// Result captures one test executed against one model within a run.
type Result struct {
	// TestID identifies the battery test that was run.
	TestID string `json:"test_id"`

	// ModelName is the human-facing model name (e.g. "GPT-4 Turbo").
	ModelName string `json:"model_name"`

	// ModelID is the vendor model identifier sent on the wire.
	ModelID string `json:"model_id"`

	// Timestamp is when the response was produced, ISO-8601.
	Timestamp string `json:"timestamp"`

	// Prompt and Response are the exchanged texts.
	Prompt   string `json:"prompt"`
	Response string `json:"response"`

	// Expected is the expected answer, when the test defines one.
	Expected string `json:"expected,omitempty"`

	// Score is the scored outcome in [0,1]. Always 0 when Success is false.
	Score float64 `json:"score"`

	// LatencyMs is the round-trip latency of the API call.
	LatencyMs int64 `json:"latency_ms"`

	// Token usage reported by the API.
	TokensInput  int `json:"tokens_input"`
	TokensOutput int `json:"tokens_output"`
	TokensTotal  int `json:"tokens_total"`

	// Success reports whether the API call completed; Error carries the
	// failure message when it did not.
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Category is the battery category label (e.g. "reasoning").
	Category string `json:"category,omitempty"`
}

// Run is one complete execution of the battery against one or more models.
// Runs are immutable once written; corrections require a new run.
type Run struct {
	RunID        string   `json:"run_id"`
	Timestamp    string   `json:"timestamp"`
	ModelsTested []string `json:"models_tested"`
	TotalTests   int      `json:"total_tests"`
	TotalResults int      `json:"total_results"`
	Results      []Result `json:"results"`
}

// ResultsForModel returns the run's results for a single model.
func (r *Run) ResultsForModel(modelName string) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.ModelName == modelName {
			out = append(out, res)
		}
	}
	return out
}

// TestsModel reports whether the run exercised the given model.
func (r *Run) TestsModel(modelName string) bool {
	for _, m := range r.ModelsTested {
		if m == modelName {
			return true
		}
	}
	return false
}

// Date returns the date portion (YYYY-MM-DD) of the run timestamp.
func (r *Run) Date() string {
	if len(r.Timestamp) < 10 {
		return r.Timestamp
	}
	return r.Timestamp[:10]
}
