package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/sift/pkg/logger"
)

// ArtifactPruneJob deletes report artifacts older than the retention
// window so the results directory does not grow without bound.
type ArtifactPruneJob struct {
	dir      string
	keepDays int
	logger   *logger.Logger
}

// NewArtifactPruneJob creates a prune job for the given results
// directory. keepDays below 1 falls back to 90.
func NewArtifactPruneJob(dir string, keepDays int, log *logger.Logger) *ArtifactPruneJob {
	if keepDays < 1 {
		keepDays = 90
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ArtifactPruneJob{
		dir:      dir,
		keepDays: keepDays,
		logger:   log,
	}
}

// Name returns the job name
func (j *ArtifactPruneJob) Name() string {
	return "artifact_prune"
}

// Schedule returns the cron schedule (Sundays at 02:00)
func (j *ArtifactPruneJob) Schedule() string {
	return "0 0 2 * * 0"
}

// Run removes artifacts dated before the retention cutoff. Files that
// do not follow the YYYY-MM-DD.json naming are left alone.
func (j *ArtifactPruneJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read results dir: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -j.keepDays)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		if !date.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, name)); err != nil {
			return fmt.Errorf("remove artifact %s: %w", name, err)
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed":   removed,
			"keep_days": j.keepDays,
		}).Info("Pruned old report artifacts")
	}

	return nil
}
