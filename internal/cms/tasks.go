package cms

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	PublishPostTaskName     = "publish_post"
	SyncSearchIndexTaskName = "sync_search_index"
	syncSearchIndexSchedule = "*/15 * * * *"

	// EditorialQueue runs publish_post jobs apart from the default queue.
	EditorialQueue = "editorial"
)

// PublishPostPayload is enqueued by Scheduler.SchedulePublish.
type PublishPostPayload struct {
	PostID string `json:"post_id"`
}

// PublishPostTask publishes a scheduled post when its time comes.
type PublishPostTask struct {
	svc *Service
}

// NewPublishPostTask returns the publish_post task.
func NewPublishPostTask(svc *Service) *PublishPostTask {
	return &PublishPostTask{svc: svc}
}

// Name implements job.Task.
func (t *PublishPostTask) Name() string { return PublishPostTaskName }

// Handle publishes the post if it is still due.
func (t *PublishPostTask) Handle(ctx context.Context, p PublishPostPayload) error {
	if p.PostID == "" {
		return errors.New("cms: publish_post without post_id")
	}
	return t.svc.PublishScheduled(ctx, p.PostID)
}

// SyncSearchIndexTask reconciles the search index with posts changed since
// its previous run. Published posts are indexed, everything else removed.
type SyncSearchIndexTask struct {
	posts  PostStore
	search SearchIndex
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

// NewSyncSearchIndexTask returns the periodic search sync task.
func NewSyncSearchIndexTask(posts PostStore, search SearchIndex, logger *slog.Logger) *SyncSearchIndexTask {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncSearchIndexTask{posts: posts, search: search, logger: logger, now: time.Now}
}

// Name implements job.ScheduledTask.
func (t *SyncSearchIndexTask) Name() string { return SyncSearchIndexTaskName }

// Schedule implements job.ScheduledTask.
func (t *SyncSearchIndexTask) Schedule() string { return syncSearchIndexSchedule }

// Handle runs one sync. The first run after startup covers every post.
func (t *SyncSearchIndexTask) Handle(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	started := t.now()
	posts, err := t.posts.UpdatedSince(ctx, t.lastRun)
	if err != nil {
		return err
	}

	var indexed, removed int
	var errs []error
	for _, p := range posts {
		if p.Published() {
			err = t.search.Index(ctx, p)
			indexed++
		} else {
			err = t.search.Remove(ctx, p.ID)
			removed++
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	t.lastRun = started
	t.logger.InfoContext(ctx, "search index synced",
		slog.Int("indexed", indexed),
		slog.Int("removed", removed),
	)
	return nil
}
