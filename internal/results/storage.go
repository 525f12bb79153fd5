package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// rawDirName is the subdirectory holding one JSON file per run.
const rawDirName = "raw"

// Storage is a file-backed run repository: each run is a single JSON file
// named by its timestamp, which keeps the on-disk listing chronological and
// human-inspectable.
type Storage struct {
	dir string
}

// NewStorage creates a Storage rooted at dataDir. The directory is created
// lazily on the first save.
func NewStorage(dataDir string) *Storage {
	return &Storage{dir: dataDir}
}

// SaveRun writes a run to disk as a pretty-printed JSON file.
func (s *Storage) SaveRun(run *Run) error {
	rawDir := filepath.Join(s.dir, rawDirName)
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", run.RunID, err)
	}

	path := filepath.Join(rawDir, runFileName(run.Timestamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run file: %w", err)
	}
	return nil
}

// LoadAllRuns reads every stored run and returns them in ascending timestamp
// order. A missing or empty data directory yields an empty slice, not an error.
func (s *Storage) LoadAllRuns() ([]Run, error) {
	rawDir := filepath.Join(s.dir, rawDirName)
	entries, err := os.ReadDir(rawDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var runs []Run
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "run_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(rawDir, name))
		if err != nil {
			return nil, fmt.Errorf("reading run file %s: %w", name, err)
		}

		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("decoding run file %s: %w", name, err)
		}
		runs = append(runs, run)
	}

	// ISO-8601 timestamps sort lexically in chronological order; run IDs
	// break ties deterministically.
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp != runs[j].Timestamp {
			return runs[i].Timestamp < runs[j].Timestamp
		}
		return runs[i].RunID < runs[j].RunID
	})

	return runs, nil
}

// LoadRunsSince returns all runs whose timestamp date is on or after the given
// date (YYYY-MM-DD, inclusive), in ascending timestamp order.
func (s *Storage) LoadRunsSince(date string) ([]Run, error) {
	all, err := s.LoadAllRuns()
	if err != nil {
		return nil, err
	}

	var runs []Run
	for _, run := range all {
		if run.Date() >= date {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// runFileName builds the per-run file name from an ISO-8601 timestamp,
// e.g. run_20241106_143022.json.
func runFileName(timestamp string) string {
	t, err := time.Parse("2006-01-02T15:04:05", timestamp)
	if err != nil {
		t, err = time.Parse(time.RFC3339, timestamp)
	}
	if err != nil {
		// Fall back to a sanitized copy of the raw timestamp.
		sanitized := strings.NewReplacer(":", "", "-", "", "T", "_", "+", "_", ".", "_").Replace(timestamp)
		return "run_" + sanitized + ".json"
	}
	return "run_" + t.Format("20060102_150405") + ".json"
}
