package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/newsdesk/internal/cms"
)

// Scheduled is one recorded publish request.
type Scheduled struct {
	At     time.Time
	PostID string
}

// Scheduler saves the post to a Store and records the publish request
// instead of enqueueing a job. Tests run the publish task themselves.
type Scheduler struct {
	store *Store

	mu    sync.Mutex
	calls []Scheduled
}

// NewScheduler returns a scheduler that saves into store.
func NewScheduler(store *Store) *Scheduler {
	return &Scheduler{store: store}
}

// SchedulePublish implements cms.Scheduler.
func (s *Scheduler) SchedulePublish(ctx context.Context, p *cms.Post) error {
	if err := s.store.UpdatePost(ctx, p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Scheduled{PostID: p.ID, At: *p.PublishAt})
	return nil
}

// Calls returns the publish requests seen so far.
func (s *Scheduler) Calls() []Scheduled {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Scheduled(nil), s.calls...)
}
