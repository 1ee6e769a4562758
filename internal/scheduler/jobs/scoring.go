package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/alphapulse/pulse/pkg/logger"
)

// CycleRunner runs one full scoring cycle. Satisfied by pipeline.Runner.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// ScoringJob periodically rescores the tracked universe.
type ScoringJob struct {
	runner   CycleRunner
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

// NewScoringJob creates the recurring scoring job.
func NewScoringJob(runner CycleRunner, interval time.Duration, log *logger.Logger) *ScoringJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ScoringJob{
		runner:   runner,
		interval: interval,
		timeout:  interval,
		logger:   log,
	}
}

// Name returns the job name.
func (j *ScoringJob) Name() string {
	return "scoring_cycle"
}

// Schedule returns the cron schedule expression.
func (j *ScoringJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run executes one scoring cycle. The cycle is bounded by the interval
// so a stuck run never overlaps the next one.
func (j *ScoringJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	if err := j.runner.RunCycle(ctx); err != nil {
		return fmt.Errorf("scoring cycle: %w", err)
	}
	return nil
}
