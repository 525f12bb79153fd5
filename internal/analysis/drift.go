package analysis

import (
	"fmt"
	"math"

	"github.com/blackwell-systems/driftwatch/internal/results"
	"github.com/blackwell-systems/driftwatch/internal/stats"
)

// Severity classifies how strong a detected drift is.
type Severity string

const (
	SeverityNone     Severity = "none"     // not statistically significant
	SeverityMinor    Severity = "minor"    // significant, small effect
	SeverityModerate Severity = "moderate" // significant, medium effect
	SeverityMajor    Severity = "major"    // significant, large effect
)

// Rank orders severities from none (0) to major (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeverityMajor:
		return 3
	default:
		return 0
	}
}

// BaselineMode names how the baseline window was selected.
type BaselineMode string

const (
	// BaselineAnchored uses the earliest eligible runs as the permanent
	// reference, regardless of how far the current window has moved.
	BaselineAnchored BaselineMode = "anchored"

	// BaselineRolling uses the latest eligible runs that end before the
	// current window.
	BaselineRolling BaselineMode = "rolling"
)

// DriftResult is the outcome of one drift analysis. It is ephemeral:
// recomputed per query, deterministic for a fixed repository state.
type DriftResult struct {
	ModelName string `json:"model_name"`

	// TestPeriod is a human-readable label for the compared window(s).
	TestPeriod string `json:"test_period"`

	DriftDetected bool     `json:"drift_detected"`
	Severity      Severity `json:"severity"`

	BaselineMean float64 `json:"baseline_mean"`
	CurrentMean  float64 `json:"current_mean"`

	// ChangePercent is (current - baseline) / baseline * 100. Nil when the
	// baseline mean is zero, since percent change from zero is undefined.
	ChangePercent *float64 `json:"change_percent,omitempty"`

	PValue  float64 `json:"p_value"`
	CohensD float64 `json:"cohens_d"`

	// CategoryDrift flags, per category with enough data in both windows,
	// whether that category's score change was itself significant.
	CategoryDrift map[string]bool `json:"category_drift,omitempty"`

	Summary string `json:"summary"`

	// Mode records the baseline selection strategy; empty for explicit
	// period comparisons, which have no derived baseline window.
	Mode BaselineMode `json:"baseline_mode,omitempty"`
}

// DetectOptions controls drift detection. Zero values fall back to the
// defaults: 7 baseline runs, 3 current runs, 0.05 significance.
type DetectOptions struct {
	BaselineRuns int
	CurrentRuns  int
	Significance float64
	Rolling      bool
}

func (o DetectOptions) withDefaults() DetectOptions {
	if o.BaselineRuns <= 0 {
		o.BaselineRuns = 7
	}
	if o.CurrentRuns <= 0 {
		o.CurrentRuns = 3
	}
	if o.Significance <= 0 {
		o.Significance = 0.05
	}
	return o
}

// DetectDrift compares a model's recent scores against its baseline window.
//
// The baseline is the earliest opts.BaselineRuns runs that exercised the
// model (or, in rolling mode, the latest such runs preceding the current
// window). The current sample comes from the last opts.CurrentRuns runs of
// the full history; trailing runs that lack the model simply contribute no
// scores.
func DetectDrift(src RunSource, modelName string, opts DetectOptions) (*DriftResult, error) {
	opts = opts.withDefaults()

	all, err := src.LoadAllRuns()
	if err != nil {
		return nil, err
	}

	needed := opts.BaselineRuns + opts.CurrentRuns
	if len(all) < needed {
		return nil, fmt.Errorf("%w: need at least %d runs (%d baseline + %d current), have %d",
			ErrInsufficientHistory, needed, opts.BaselineRuns, opts.CurrentRuns, len(all))
	}

	currentRuns := all[len(all)-opts.CurrentRuns:]

	mode := BaselineAnchored
	var baselineWindow []results.Run
	if opts.Rolling {
		mode = BaselineRolling
		baselineWindow = latestRunsWithModel(all[:len(all)-opts.CurrentRuns], modelName, opts.BaselineRuns)
	} else {
		baselineWindow = earliestRunsWithModel(all, modelName, opts.BaselineRuns)
	}
	if len(baselineWindow) == 0 {
		return nil, fmt.Errorf("%w: no baseline runs found for model %s", ErrNoData, modelName)
	}

	baseline, err := buildBaseline(baselineWindow, modelName)
	if err != nil {
		return nil, err
	}

	baselineScores := flattenScores(baselineWindow, modelName)
	currentScores := flattenScores(currentRuns, modelName)
	if len(currentScores) == 0 {
		return nil, fmt.Errorf("%w: no current results found for model %s", ErrNoData, modelName)
	}

	currentStats, err := stats.Calculate(currentScores)
	if err != nil {
		return nil, fmt.Errorf("current window for model %s: %w", modelName, err)
	}

	result, err := compareSamples(baselineScores, currentScores, baseline.Overall.Mean, currentStats.Mean, opts.Significance)
	if err != nil {
		return nil, err
	}

	result.ModelName = modelName
	result.TestPeriod = fmt.Sprintf("%s to %s", currentRuns[0].Date(), currentRuns[len(currentRuns)-1].Date())
	result.Mode = mode
	result.CategoryDrift = categoryDrift(baselineWindow, currentRuns, modelName, opts.Significance)
	result.Summary = driftSummary(result, currentStats.Mean)

	return result, nil
}

// ComparePeriods compares a model's scores between two explicit inclusive
// date windows, period A playing the baseline role and period B the current
// role.
func ComparePeriods(src RunSource, modelName, aStart, aEnd, bStart, bEnd string) (*DriftResult, error) {
	all, err := src.LoadAllRuns()
	if err != nil {
		return nil, err
	}

	periodA := runsInPeriod(all, aStart, aEnd)
	periodB := runsInPeriod(all, bStart, bEnd)
	if len(periodA) == 0 || len(periodB) == 0 {
		return nil, fmt.Errorf("%w: no runs found in one or both periods", ErrNoData)
	}

	scoresA := flattenScores(periodA, modelName)
	scoresB := flattenScores(periodB, modelName)
	if len(scoresA) == 0 || len(scoresB) == 0 {
		return nil, fmt.Errorf("%w: no results found for model %s in one or both periods", ErrNoData, modelName)
	}

	statsA, err := stats.Calculate(scoresA)
	if err != nil {
		return nil, fmt.Errorf("period %s to %s for model %s: %w", aStart, aEnd, modelName, err)
	}
	statsB, err := stats.Calculate(scoresB)
	if err != nil {
		return nil, fmt.Errorf("period %s to %s for model %s: %w", bStart, bEnd, modelName, err)
	}

	result, err := compareSamples(scoresA, scoresB, statsA.Mean, statsB.Mean, 0.05)
	if err != nil {
		return nil, err
	}

	result.ModelName = modelName
	result.TestPeriod = fmt.Sprintf("%s/%s vs %s/%s", aStart, aEnd, bStart, bEnd)
	result.Summary = periodSummary(result)

	return result, nil
}

// compareSamples runs the shared statistical procedure: Welch's t-test,
// Cohen's d, severity classification, and percent change.
func compareSamples(baselineScores, currentScores []float64, baselineMean, currentMean, significance float64) (*DriftResult, error) {
	_, pValue, err := stats.WelchTTest(baselineScores, currentScores)
	if err != nil {
		return nil, err
	}

	effectSize, err := stats.CohensD(baselineScores, currentScores)
	if err != nil {
		return nil, err
	}

	severity := classifySeverity(pValue, significance, effectSize)

	result := &DriftResult{
		DriftDetected: severity != SeverityNone,
		Severity:      severity,
		BaselineMean:  baselineMean,
		CurrentMean:   currentMean,
		PValue:        pValue,
		CohensD:       effectSize,
	}

	if baselineMean != 0 {
		change := (currentMean - baselineMean) / baselineMean * 100
		result.ChangePercent = &change
	}

	return result, nil
}

// classifySeverity maps a test outcome to a severity level: no significance
// means none; otherwise the absolute effect size is bucketed.
func classifySeverity(pValue, significance, effectSize float64) Severity {
	if pValue >= significance {
		return SeverityNone
	}
	switch abs := math.Abs(effectSize); {
	case abs < 0.5:
		return SeverityMinor
	case abs < 0.8:
		return SeverityModerate
	default:
		return SeverityMajor
	}
}

// categoryDrift runs a per-category significance test wherever both windows
// carry at least two scores for the category. Categories without enough data
// are omitted.
func categoryDrift(baselineRuns, currentRuns []results.Run, modelName string, significance float64) map[string]bool {
	baseByCat := scoresByCategory(baselineRuns, modelName)
	currByCat := scoresByCategory(currentRuns, modelName)

	out := make(map[string]bool)
	for cat, base := range baseByCat {
		curr, ok := currByCat[cat]
		if !ok {
			continue
		}
		_, p, err := stats.WelchTTest(base, curr)
		if err != nil {
			continue
		}
		out[cat] = p < significance
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func scoresByCategory(runs []results.Run, modelName string) map[string][]float64 {
	out := make(map[string][]float64)
	for i := range runs {
		for _, r := range runs[i].ResultsForModel(modelName) {
			if r.Category == "" {
				continue
			}
			out[r.Category] = append(out[r.Category], r.Score)
		}
	}
	return out
}

// driftSummary builds the narrative line for a drift detection result.
func driftSummary(r *DriftResult, currentMean float64) string {
	if !r.DriftDetected {
		return fmt.Sprintf("No significant drift detected. Performance is stable at %.1f%% (%s).",
			currentMean*100, stats.InterpretPValue(r.PValue))
	}

	if r.ChangePercent == nil {
		// Baseline mean was zero; no percent change to report.
		return fmt.Sprintf("Performance has %s. Change is %s.",
			stats.InterpretCohensD(r.CohensD), stats.InterpretPValue(r.PValue))
	}

	direction := "degraded"
	if *r.ChangePercent > 0 {
		direction = "improved"
	}
	return fmt.Sprintf("Performance has %s (%.1f%% %s). Change is %s.",
		stats.InterpretCohensD(r.CohensD), math.Abs(*r.ChangePercent), direction, stats.InterpretPValue(r.PValue))
}

// periodSummary builds the narrative line for a period comparison result.
func periodSummary(r *DriftResult) string {
	if !r.DriftDetected {
		return fmt.Sprintf("No significant change between periods. %s.", stats.InterpretPValue(r.PValue))
	}

	if r.ChangePercent == nil {
		return fmt.Sprintf("Performance has %s between periods. Change is %s.",
			stats.InterpretCohensD(r.CohensD), stats.InterpretPValue(r.PValue))
	}

	direction := "degraded"
	if *r.ChangePercent > 0 {
		direction = "improved"
	}
	return fmt.Sprintf("Performance has %s between periods (%.1f%% %s). Change is %s.",
		stats.InterpretCohensD(r.CohensD), math.Abs(*r.ChangePercent), direction, stats.InterpretPValue(r.PValue))
}
