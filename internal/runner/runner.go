// Package runner executes the test battery against a set of models and
// assembles the outcome into a single immutable run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/driftwatch/internal/battery"
	"github.com/blackwell-systems/driftwatch/internal/llm"
	"github.com/blackwell-systems/driftwatch/internal/results"
)

// ErrNoModels is returned when the runner has nothing to probe.
var ErrNoModels = errors.New("no models configured")

// Progress is called after each completed test with the model name, the
// test id and the running counts. Calls may come from concurrent goroutines.
type Progress func(model, testID string, done, total int)

// Runner drives one battery execution. Models are probed in parallel; the
// tests of one model run sequentially so per-model latencies stay
// comparable.
type Runner struct {
	probers []llm.Prober
	tests   []battery.Test
	timeout time.Duration
	clock   func() time.Time
	onTest  Progress
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTests overrides the default battery.
func WithTests(tests []battery.Test) RunnerOption {
	return func(r *Runner) {
		r.tests = tests
	}
}

// WithTimeout bounds each individual probe. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithProgress installs a progress callback.
func WithProgress(p Progress) RunnerOption {
	return func(r *Runner) {
		r.onTest = p
	}
}

// New builds a Runner over the given probers, defaulting to the full
// battery.
func New(probers []llm.Prober, opts ...RunnerOption) *Runner {
	r := &Runner{
		probers: probers,
		tests:   battery.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every test against every model and returns the assembled
// run. A failed probe is recorded as an unsuccessful result with score 0;
// only a cancelled context aborts the run as a whole.
func (r *Runner) Run(ctx context.Context) (*results.Run, error) {
	if len(r.probers) == 0 {
		return nil, ErrNoModels
	}
	if err := battery.Validate(r.tests); err != nil {
		return nil, fmt.Errorf("invalid battery: %w", err)
	}

	run := &results.Run{
		RunID:      uuid.New().String(),
		Timestamp:  r.clock().UTC().Format("2006-01-02T15:04:05"),
		TotalTests: len(r.tests),
	}
	for _, p := range r.probers {
		run.ModelsTested = append(run.ModelsTested, p.ModelName())
	}

	total := len(r.tests) * len(r.probers)
	perModel := make([][]results.Result, len(r.probers))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range r.probers {
		i, p := i, p
		g.Go(func() error {
			var out []results.Result
			for _, test := range r.tests {
				if err := gctx.Err(); err != nil {
					return err
				}
				out = append(out, r.runTest(gctx, p, test))
				if r.onTest != nil {
					r.onTest(p.ModelName(), test.ID, int(done.Add(1)), total)
				}
			}
			perModel[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}

	for _, batch := range perModel {
		run.Results = append(run.Results, batch...)
	}
	run.TotalResults = len(run.Results)
	return run, nil
}

func (r *Runner) runTest(ctx context.Context, p llm.Prober, test battery.Test) results.Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res := results.Result{
		TestID:    test.ID,
		ModelName: p.ModelName(),
		ModelID:   p.ModelID(),
		Timestamp: r.clock().UTC().Format("2006-01-02T15:04:05"),
		Prompt:    test.Prompt,
		Expected:  test.Expected,
		Category:  string(test.Category),
	}

	resp, err := p.Probe(ctx, test.Prompt)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Response = resp.Text
	res.Score = battery.Score(test, resp.Text)
	res.LatencyMs = resp.Latency.Milliseconds()
	res.TokensInput = resp.TokensInput
	res.TokensOutput = resp.TokensOutput
	res.TokensTotal = resp.TokensTotal
	res.Success = true
	return res
}
