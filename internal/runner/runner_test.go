package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/driftwatch/internal/battery"
	"github.com/blackwell-systems/driftwatch/internal/llm"
)

// fakeProber answers from a canned map and fails for prompts it does not
// know when strict is set.
type fakeProber struct {
	name    string
	answers map[string]string // prompt substring -> reply
	failAll bool

	mu     sync.Mutex
	probes int
}

func (f *fakeProber) ModelName() string { return f.name }
func (f *fakeProber) ModelID() string   { return f.name + "-v1" }

func (f *fakeProber) Probe(ctx context.Context, prompt string) (*llm.Response, error) {
	f.mu.Lock()
	f.probes++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failAll {
		return nil, errors.New("connection refused")
	}

	reply := "I don't know"
	for frag, answer := range f.answers {
		if strings.Contains(prompt, frag) {
			reply = answer
			break
		}
	}
	return &llm.Response{
		Text:         reply,
		Latency:      5 * time.Millisecond,
		TokensInput:  10,
		TokensOutput: 2,
		TokensTotal:  12,
	}, nil
}

var smallBattery = []battery.Test{
	{ID: "math_001", Category: battery.CategoryMath, Prompt: "What is 247 + 389?", Expected: "636", Method: battery.MethodExact},
	{ID: "fact_001", Category: battery.CategoryFactual, Prompt: "capital of France", Expected: "Paris", Method: battery.MethodExact},
}

func TestRun_AssemblesRun(t *testing.T) {
	p := &fakeProber{
		name: "gpt4o",
		answers: map[string]string{
			"247":    "636",
			"France": "Paris",
		},
	}
	r := New([]llm.Prober{p}, WithTests(smallBattery))

	run, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, []string{"gpt4o"}, run.ModelsTested)
	assert.Equal(t, 2, run.TotalTests)
	assert.Equal(t, 2, run.TotalResults)
	require.Len(t, run.Results, 2)

	first := run.Results[0]
	assert.Equal(t, "math_001", first.TestID)
	assert.Equal(t, "gpt4o", first.ModelName)
	assert.Equal(t, "gpt4o-v1", first.ModelID)
	assert.Equal(t, "636", first.Response)
	assert.Equal(t, 1.0, first.Score)
	assert.True(t, first.Success)
	assert.Equal(t, int64(5), first.LatencyMs)
	assert.Equal(t, 12, first.TokensTotal)
	assert.Equal(t, string(battery.CategoryMath), first.Category)
}

func TestRun_ResultsGroupedByProberOrder(t *testing.T) {
	a := &fakeProber{name: "alpha", answers: map[string]string{"247": "636"}}
	b := &fakeProber{name: "beta", answers: map[string]string{"France": "Paris"}}
	r := New([]llm.Prober{a, b}, WithTests(smallBattery))

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, run.Results, 4)

	var order []string
	for _, res := range run.Results {
		order = append(order, res.ModelName)
	}
	assert.Equal(t, []string{"alpha", "alpha", "beta", "beta"}, order)
}

func TestRun_ProbeFailureRecordedNotFatal(t *testing.T) {
	p := &fakeProber{name: "down", failAll: true}
	r := New([]llm.Prober{p}, WithTests(smallBattery))

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, run.Results, 2)

	for _, res := range run.Results {
		assert.False(t, res.Success)
		assert.Zero(t, res.Score)
		assert.Contains(t, res.Error, "connection refused")
		assert.Empty(t, res.Response)
	}
}

func TestRun_NoModels(t *testing.T) {
	r := New(nil, WithTests(smallBattery))
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrNoModels)
}

func TestRun_RejectsInvalidBattery(t *testing.T) {
	p := &fakeProber{name: "gpt4o"}
	bad := []battery.Test{{ID: "bad_001", Method: "rubric"}}
	r := New([]llm.Prober{p}, WithTests(bad))

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scoring method")
	assert.Zero(t, p.probes)
}

func TestRun_CancelledContext(t *testing.T) {
	p := &fakeProber{name: "gpt4o"}
	r := New([]llm.Prober{p}, WithTests(smallBattery))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx)
	require.Error(t, err)
}

func TestRun_ProgressCallback(t *testing.T) {
	p := &fakeProber{name: "gpt4o", answers: map[string]string{"247": "636"}}

	var mu sync.Mutex
	var calls int
	lastTotal := 0
	r := New([]llm.Prober{p},
		WithTests(smallBattery),
		WithProgress(func(model, testID string, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			lastTotal = total
			assert.Equal(t, "gpt4o", model)
		}),
	)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, lastTotal)
}

func TestRun_DefaultBattery(t *testing.T) {
	p := &fakeProber{name: "gpt4o"}
	r := New([]llm.Prober{p})

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(battery.Default()), run.TotalTests)
	assert.Len(t, run.Results, len(battery.Default()))
}
