package stats

import "math"

// InterpretCohensD renders an effect size as a plain-English phrase like
// "substantially decreased" or "slightly increased".
func InterpretCohensD(d float64) string {
	direction := "decreased"
	if d > 0 {
		direction = "increased"
	}

	var magnitude string
	switch abs := math.Abs(d); {
	case abs < 0.2:
		magnitude = "negligibly"
	case abs < 0.5:
		magnitude = "slightly"
	case abs < 0.8:
		magnitude = "moderately"
	default:
		magnitude = "substantially"
	}

	return magnitude + " " + direction
}

// InterpretPValue renders a p-value as a plain-English significance phrase.
func InterpretPValue(p float64) string {
	switch {
	case p < 0.001:
		return "very highly significant (p < 0.001)"
	case p < 0.01:
		return "highly significant (p < 0.01)"
	case p < 0.05:
		return "statistically significant (p < 0.05)"
	case p < 0.10:
		return "marginally significant (p < 0.10)"
	default:
		return "not statistically significant (p >= 0.10)"
	}
}
