// Package store keeps a SQLite history of drift reports, so analyses can be
// reviewed long after the runs they were computed from.
package store

import "time"

// Report is one recorded drift analysis.
type Report struct {
	ID            int64     `json:"id"`
	TakenAt       time.Time `json:"taken_at"`
	ModelName     string    `json:"model_name"`
	TestPeriod    string    `json:"test_period"`
	BaselineMode  string    `json:"baseline_mode"`
	DriftDetected bool      `json:"drift_detected"`
	Severity      string    `json:"severity"`
	BaselineMean  float64   `json:"baseline_mean"`
	CurrentMean   float64   `json:"current_mean"`
	ChangePercent *float64  `json:"change_percent,omitempty"`
	PValue        float64   `json:"p_value"`
	CohensD       float64   `json:"cohens_d"`
	Summary       string    `json:"summary"`
}
