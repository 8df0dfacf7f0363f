package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repo is the Postgres job queue.
type Repo struct {
	DB *gorm.DB
}

// Enqueue schedules a limit re-flag for userID, replacing any still-pending one.
func (r *Repo) Enqueue(ctx context.Context, userID string, runAt time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
delete from jobs
where user_id = ? and type = ? and status = ?
`, userID, TypeLimitReflag, StatusPending).Error; err != nil {
			return err
		}

		j := Job{
			UserID:  userID,
			Type:    TypeLimitReflag,
			Payload: []byte(`{}`),
			RunAt:   runAt,
			Status:  StatusPending,
		}
		return tx.Create(&j).Error
	})
}

// LimitChanged lets the repo act as the user service's notifier.
func (r *Repo) LimitChanged(ctx context.Context, userID string) error {
	return r.Enqueue(ctx, userID, time.Now())
}

// Claim one due job atomically using SKIP LOCKED.
func (r *Repo) Claim(ctx context.Context, workerID string) (*Job, error) {
	var job Job
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// requeue RUNNING jobs whose worker went away
		if err := tx.Exec(`
update jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=now()
where status='RUNNING' and locked_at is not null and locked_at < now() - interval '5 minutes'
`).Error; err != nil {
			return err
		}

		q := tx.Raw(`
with cte as (
  select id
  from jobs
  where status='PENDING' and run_at <= now()
  order by run_at asc
  for update skip locked
  limit 1
)
update jobs
set status='RUNNING', locked_by=?, locked_at=now(), updated_at=now()
where id in (select id from cte)
returning *;
`, workerID)

		return q.Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='DONE', updated_at=now() where id=?`, id).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='FAILED', last_error=?, updated_at=now() where id=?`, errMsg, id).Error
}

func (r *Repo) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status='PENDING',
    attempts=?,
    run_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, runAt, errMsg, id).Error
}
