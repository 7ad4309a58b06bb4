// Package jobs provides the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/output"
	"github.com/wonny/sift/pkg/logger"
)

// Runner runs a screening pass. *screener.Screener is the production
// implementation.
type Runner interface {
	Run(ctx context.Context, asOf time.Time) (*contracts.ScreenReport, error)
}

// ScreenJob runs a screening pass on schedule and persists the report.
type ScreenJob struct {
	runner   Runner
	store    *output.Store
	schedule string
	logger   *logger.Logger
}

// NewScreenJob creates a screen job. The schedule is a cron expression
// with a seconds field, typically "0 40 15 * * 1-5" (weekdays at 15:40,
// ten minutes after the close).
func NewScreenJob(runner Runner, store *output.Store, schedule string, log *logger.Logger) *ScreenJob {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScreenJob{
		runner:   runner,
		store:    store,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "daily_screen"
}

// Schedule returns the cron schedule
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run executes a screening pass anchored on the current session.
func (j *ScreenJob) Run(ctx context.Context) error {
	report, err := j.runner.Run(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	if j.store != nil {
		if _, err := j.store.Save(report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"strategy":   report.Strategy,
		"evaluated":  report.Evaluated,
		"candidates": len(report.Candidates),
	}).Info("Scheduled screening completed")

	return nil
}
