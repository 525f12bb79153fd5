// Package stats implements the descriptive and inferential statistics behind
// drift detection: sample summaries with 95% confidence intervals, Welch's
// two-sample t-test, and Cohen's d effect size.
package stats

import (
	"errors"
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrEmptyInput is returned when statistics are requested on zero observations.
	ErrEmptyInput = errors.New("empty input")

	// ErrInsufficientSample is returned when a computation needs more
	// observations than the sample provides.
	ErrInsufficientSample = errors.New("insufficient sample")
)

// Summary holds descriptive statistics for a single sample of values.
type Summary struct {
	// Mean is the arithmetic mean.
	Mean float64 `json:"mean"`

	// Std is the sample standard deviation (Bessel-corrected, n-1).
	Std float64 `json:"std"`

	// Variance is the sample variance (Bessel-corrected, n-1).
	Variance float64 `json:"variance"`

	// Min and Max are the sample extremes.
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Count is the number of observations.
	Count int `json:"count"`

	// CILower and CIUpper bound the 95% confidence interval for the mean,
	// using the Student's t critical value at n-1 degrees of freedom.
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// Calculate computes descriptive statistics for a sample.
//
// It returns ErrEmptyInput for an empty sample and ErrInsufficientSample for a
// single observation, since the sample standard deviation (and with it the
// confidence interval) is undefined below two observations.
func Calculate(values []float64) (Summary, error) {
	n := len(values)
	if n == 0 {
		return Summary{}, fmt.Errorf("%w: cannot calculate statistics on zero values", ErrEmptyInput)
	}
	if n < 2 {
		return Summary{}, fmt.Errorf("%w: need at least 2 values for a standard deviation, have %d", ErrInsufficientSample, n)
	}

	mean, err := mstats.Mean(values)
	if err != nil {
		return Summary{}, err
	}
	variance, err := mstats.SampleVariance(values)
	if err != nil {
		return Summary{}, err
	}
	minVal, err := mstats.Min(values)
	if err != nil {
		return Summary{}, err
	}
	maxVal, err := mstats.Max(values)
	if err != nil {
		return Summary{}, err
	}

	std := math.Sqrt(variance)

	// 95% CI half-width = t(0.975, n-1) * std / sqrt(n). The t quantile is
	// used for every sample size; it converges to 1.96 for large n.
	critical := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
	margin := critical * std / math.Sqrt(float64(n))

	return Summary{
		Mean:     mean,
		Std:      std,
		Variance: variance,
		Min:      minVal,
		Max:      maxVal,
		Count:    n,
		CILower:  mean - margin,
		CIUpper:  mean + margin,
	}, nil
}

// WelchTTest performs Welch's two-sample t-test, which does not assume equal
// population variances. It returns the t statistic and the two-tailed p-value.
//
// Both samples must contain at least 2 observations. Two samples with equal
// means and zero variance are indistinguishable, so they yield t=0, p=1 rather
// than an error; zero variance with differing means yields p=0.
func WelchTTest(a, b []float64) (tStat, pValue float64, err error) {
	if len(a) < 2 || len(b) < 2 {
		return 0, 0, fmt.Errorf("%w: need at least 2 values in each group, have %d and %d",
			ErrInsufficientSample, len(a), len(b))
	}

	meanA, _ := mstats.Mean(a)
	meanB, _ := mstats.Mean(b)
	varA, _ := mstats.SampleVariance(a)
	varB, _ := mstats.SampleVariance(b)

	na := float64(len(a))
	nb := float64(len(b))
	seSquared := varA/na + varB/nb

	if seSquared == 0 {
		// Both samples are constant.
		if meanA == meanB {
			return 0, 1, nil
		}
		t := math.Inf(1)
		if meanA < meanB {
			t = math.Inf(-1)
		}
		return t, 0, nil
	}

	tStat = (meanA - meanB) / math.Sqrt(seSquared)

	// Welch-Satterthwaite degrees of freedom.
	df := seSquared * seSquared /
		((varA/na)*(varA/na)/(na-1) + (varB/nb)*(varB/nb)/(nb-1))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * (1 - tDist.CDF(math.Abs(tStat)))

	return tStat, pValue, nil
}

// CohensD computes the standardized effect size between two samples in pooled
// standard deviation units. Positive values mean sample b scored higher than
// sample a.
//
// The combined sample must contain more than 2 observations, otherwise the
// pooled standard deviation is undefined. A zero pooled standard deviation
// yields 0 when the means are equal and a signed infinity otherwise (perfect
// separation).
func CohensD(a, b []float64) (float64, error) {
	na := len(a)
	nb := len(b)
	if na == 0 || nb == 0 || na+nb <= 2 {
		return 0, fmt.Errorf("%w: need more than 2 values across both groups for a pooled deviation, have %d and %d",
			ErrInsufficientSample, na, nb)
	}

	meanA, _ := mstats.Mean(a)
	meanB, _ := mstats.Mean(b)

	// Pooled variance from raw sums of squared deviations; equivalent to
	// ((na-1)*varA + (nb-1)*varB) / (na+nb-2) with Bessel-corrected variances,
	// but well defined even when one group has a single observation.
	pooled := math.Sqrt((sumSquaredDeviations(a, meanA) + sumSquaredDeviations(b, meanB)) / float64(na+nb-2))

	diff := meanB - meanA
	if pooled == 0 {
		if diff == 0 {
			return 0, nil
		}
		return math.Copysign(math.Inf(1), diff), nil
	}

	return diff / pooled, nil
}

func sumSquaredDeviations(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss
}
