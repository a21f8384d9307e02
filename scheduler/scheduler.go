package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/Dosada05/league-system/services"
)

const statusSweepJob = "tournament-status-sweep"

var ErrInvalidInterval = errors.New("sweep interval must be positive")

// Reconciler is the part of the tournament service the sweep needs.
type Reconciler interface {
	ReconcileStatuses(ctx context.Context, now time.Time) (services.ReconcileReport, error)
}

// Scheduler wraps a gocron scheduler that drives periodic maintenance jobs.
type Scheduler struct {
	cron   gocron.Scheduler
	logger *slog.Logger

	stopOnce sync.Once
	stopErr  error
}

func New(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cron, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					logger.Error("scheduler job failed",
						slog.String("job_id", jobID.String()),
						slog.String("job_name", jobName),
						slog.Any("error", err))
				}),
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("scheduler job panicked",
						slog.String("job_id", jobID.String()),
						slog.String("job_name", jobName),
						slog.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, logger: logger}, nil
}

// AddStatusSweep runs the reconciliation sweep every interval, starting immediately.
// A run that is still going when the next one is due is rescheduled, never overlapped.
func (s *Scheduler) AddStatusSweep(interval, timeout time.Duration, reconciler Reconciler, clock services.Clock) (gocron.Job, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if clock == nil {
		clock = services.SystemClock()
	}
	if timeout <= 0 {
		timeout = interval
	}

	jobLogger := s.logger.With(slog.String("job_name", statusSweepJob), slog.Duration("interval", interval))

	task := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		report, err := reconciler.ReconcileStatuses(ctx, clock.Now())
		if err != nil {
			return err
		}
		jobLogger.Debug("status sweep finished",
			slog.Int("checked", report.Checked),
			slog.Int("updated", report.Updated),
			slog.Int("skipped", report.Skipped),
			slog.Int("failed", report.Failed))
		return nil
	}

	job, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(statusSweepJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("add %s job: %w", statusSweepJob, err)
	}
	jobLogger.Info("scheduler job registered", slog.String("job_id", job.ID().String()))
	return job, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduler starting")
	s.cron.Start()
}

// Stop waits for running jobs and prevents new ones. Safe to call more than once.
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("scheduler stopping")
		s.stopErr = s.cron.Shutdown()
	})
	return s.stopErr
}
