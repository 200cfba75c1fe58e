package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/pkg/db"
	"github.com/dmitrymomot/newsdesk/pkg/job"
)

// Enqueuer inserts jobs inside a caller's transaction; *job.Manager
// implements it.
type Enqueuer interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

// Scheduler saves the post and inserts its publish_post job in one
// transaction, so a scheduled post always has a job and vice versa.
type Scheduler struct {
	db   db.TxBeginner
	jobs Enqueuer
}

// NewScheduler returns a scheduler that enqueues through jobs.
func NewScheduler(pool db.TxBeginner, jobs Enqueuer) *Scheduler {
	return &Scheduler{db: pool, jobs: jobs}
}

// SchedulePublish implements cms.Scheduler.
func (s *Scheduler) SchedulePublish(ctx context.Context, p *cms.Post) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := New(tx).UpdatePost(ctx, p); err != nil {
			return err
		}
		return s.jobs.EnqueueTx(ctx, tx, cms.PublishPostTaskName,
			cms.PublishPostPayload{PostID: p.ID},
			job.ScheduledAt(*p.PublishAt),
			job.InQueue(cms.EditorialQueue),
		)
	})
}
