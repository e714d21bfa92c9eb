package training

import (
	"context"
	"log/slog"
	"time"

	"github.com/transactai/transactai/internal/service"
)

// Scheduler triggers a retraining job once a day at a fixed local time,
// skipping runs when no new feedback has arrived since the last one.
type Scheduler struct {
	lastRun   time.Time
	retrainer *Retrainer
	storage   service.Storage
	hour      int
	minute    int
}

// NewScheduler creates a scheduler firing daily at hour:minute local time.
func NewScheduler(retrainer *Retrainer, storage service.Storage, hour, minute int) *Scheduler {
	return &Scheduler{
		retrainer: retrainer,
		storage:   storage,
		hour:      hour,
		minute:    minute,
	}
}

// Run blocks until ctx is canceled, firing retraining jobs on schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.nextRun(time.Now())
		slog.Info("Next retrain scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.fire(ctx)
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) fire(ctx context.Context) {
	count, err := s.storage.CountFeedbackSince(ctx, s.lastRun)
	if err != nil {
		slog.Error("Failed to count new feedback; skipping run", "error", err)
		return
	}
	if count == 0 {
		slog.Info("No new feedback since last run; retrain skipped")
		return
	}

	job, err := s.retrainer.Trigger(ctx)
	if err != nil {
		slog.Error("Failed to trigger scheduled retrain", "error", err)
		return
	}
	slog.Info("Scheduled retrain started", "job_id", job.ID, "new_feedback", count)

	if err := s.retrainer.Wait(ctx, job); err != nil {
		slog.Warn("Stopped waiting on scheduled retrain", "error", err)
		return
	}
	if job.Status == JobSucceeded {
		s.lastRun = time.Now()
	}
}
