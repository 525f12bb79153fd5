package store

import (
	"database/sql"
	"time"

	"github.com/blackwell-systems/driftwatch/internal/analysis"
)

// RecordReport inserts a drift result into the history and returns its ID.
func (db *DB) RecordReport(res *analysis.DriftResult) (int64, error) {
	var change sql.NullFloat64
	if res.ChangePercent != nil {
		change = sql.NullFloat64{Float64: *res.ChangePercent, Valid: true}
	}

	result, err := db.conn.Exec(
		`INSERT INTO drift_reports
		(taken_at, model_name, test_period, baseline_mode, drift_detected,
		 severity, baseline_mean, current_mean, change_percent, p_value,
		 cohens_d, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), res.ModelName, res.TestPeriod,
		string(res.Mode), res.DriftDetected, string(res.Severity),
		res.BaselineMean, res.CurrentMean, change, res.PValue, res.CohensD,
		res.Summary,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListReports returns recorded reports, newest first. An empty model matches
// all models; a non-positive limit returns everything.
func (db *DB) ListReports(model string, limit int) ([]Report, error) {
	query := `SELECT id, taken_at, model_name, test_period, baseline_mode,
		drift_detected, severity, baseline_mean, current_mean, change_percent,
		p_value, cohens_d, summary
		FROM drift_reports`
	var args []any
	if model != "" {
		query += " WHERE model_name = ?"
		args = append(args, model)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reports []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// LatestReport returns the most recent report for a model, or nil if none
// has been recorded.
func (db *DB) LatestReport(model string) (*Report, error) {
	reports, err := db.ListReports(model, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

func scanReport(rows *sql.Rows) (Report, error) {
	var r Report
	var takenAt string
	var change sql.NullFloat64
	err := rows.Scan(
		&r.ID, &takenAt, &r.ModelName, &r.TestPeriod, &r.BaselineMode,
		&r.DriftDetected, &r.Severity, &r.BaselineMean, &r.CurrentMean,
		&change, &r.PValue, &r.CohensD, &r.Summary,
	)
	if err != nil {
		return Report{}, err
	}
	r.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	if change.Valid {
		v := change.Float64
		r.ChangePercent = &v
	}
	return r, nil
}
