package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/logger"
)

// ErrNoReports is returned by Latest when the results directory holds no
// report artifacts yet.
var ErrNoReports = errors.New("no report artifacts")

// artifactRe matches dated report filenames; date order and lexical
// order coincide for this format.
var artifactRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.json$`)

// Store persists reports under a results directory, one JSON file per
// run date. A rerun on the same date overwrites the earlier artifact.
// ⭐ SSOT: report artifacts land on disk here only
type Store struct {
	dir string
	log *logger.Logger
}

// NewStore creates a store saving into dir, or "results" when empty.
func NewStore(dir string, log *logger.Logger) *Store {
	if dir == "" {
		dir = "results"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{dir: dir, log: log}
}

// Save marshals the report and writes it to <dir>/<run date>.json,
// creating the directory when needed. Returns the written path.
func (s *Store) Save(report *contracts.ScreenReport) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(s.dir, report.RunAt.Format("2006-01-02")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"path":       path,
		"candidates": len(report.Candidates),
	}).Info("Report saved")
	return path, nil
}

// Latest loads the most recent report artifact, or ErrNoReports when the
// directory is missing or holds none.
func (s *Store) Latest() (*contracts.ScreenReport, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReports
		}
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && artifactRe.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, ErrNoReports
	}
	sort.Strings(names)

	path := filepath.Join(s.dir, names[len(names)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	var report contracts.ScreenReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &report, nil
}
