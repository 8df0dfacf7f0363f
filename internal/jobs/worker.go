// Package jobs runs deferred summary maintenance off the request path.
package jobs

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Queue is the job storage the worker drains. *Repo implements it.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Job, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error
}

// Reflagger re-evaluates a user's stored daily summaries against their limit.
type Reflagger interface {
	RefreshLimitFlags(ctx context.Context, userID string) (int, error)
}

type Worker struct {
	ID        string
	Queue     Queue
	Reflagger Reflagger
	Interval  time.Duration
	Log       *slog.Logger

	now func() time.Time
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Queue.Claim(ctx, w.ID)
			if err != nil {
				w.logger().ErrorContext(ctx, "worker claim failed", slog.String("worker", w.ID), slog.Any("error", err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeLimitReflag:
		w.handleReflag(ctx, job)
	default:
		_ = w.Queue.MarkFailed(ctx, job.ID, "unknown job type")
	}
}

func (w *Worker) handleReflag(ctx context.Context, job *Job) {
	n, err := w.Reflagger.RefreshLimitFlags(ctx, job.UserID)
	if err != nil {
		w.logger().WarnContext(ctx, "limit reflag failed",
			slog.Uint64("job_id", job.ID),
			slog.String("user_id", job.UserID),
			slog.Any("error", err),
		)
		w.retry(ctx, job, err.Error())
		return
	}

	w.logger().InfoContext(ctx, "limit reflag done",
		slog.Uint64("job_id", job.ID),
		slog.String("user_id", job.UserID),
		slog.Int("updated", n),
	)
	_ = w.Queue.MarkDone(ctx, job.ID)
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Queue.MarkFailed(ctx, job.ID, errMsg)
		return
	}

	_ = w.Queue.RetryLater(ctx, job.ID, attempts, w.clock().Add(backoff(attempts)), errMsg)
}

// backoff is 2^attempts seconds, capped at ten minutes.
func backoff(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}

func (w *Worker) logger() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

func (w *Worker) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}
