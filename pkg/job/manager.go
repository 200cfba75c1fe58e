// Package job runs background tasks on River, a Postgres-backed queue.
// Tasks are registered by name and enqueued with a JSON payload; periodic
// tasks are registered with a cron expression.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"
)

const (
	defaultMaxWorkers = 50
	taskKind          = "newsdesk:task"
)

// Manager enqueues tasks and, unless built with NewEnqueuer, works them.
type Manager struct {
	pool     *pgxpool.Pool
	client   *river.Client[pgx.Tx]
	registry *registry
	logger   *slog.Logger

	mu      sync.Mutex
	working bool
	started bool
}

// NewManager builds a manager that both enqueues and executes tasks.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &config{
		logger:     slog.New(slog.DiscardHandler),
		queues:     make(map[string]int),
		maxWorkers: defaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	reg := newRegistry()
	var errs []error
	for _, add := range cfg.tasks {
		if err := add(reg); err != nil {
			errs = append(errs, err)
		}
	}

	periodic := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, st := range cfg.schedules {
		sched, err := ParseSchedule(st.Schedule())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
			continue
		}
		if err := reg.register(st.Name(), executorFunc(func(ctx context.Context, _ json.RawMessage) error {
			return st.Handle(ctx)
		})); err != nil {
			errs = append(errs, err)
			continue
		}
		name := st.Name()
		periodic = append(periodic, river.NewPeriodicJob(sched,
			func() (river.JobArgs, *river.InsertOpts) {
				return taskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{ID: name},
		))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: reg, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		pool:     pool,
		client:   client,
		registry: reg,
		logger:   cfg.logger,
		working:  true,
	}, nil
}

// NewEnqueuer builds an insert-only manager for processes that never work
// tasks themselves. Start and Stop are no-ops.
func NewEnqueuer(pool *pgxpool.Pool, logger *slog.Logger) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}
	return &Manager{pool: pool, client: client, registry: newRegistry(), logger: logger}, nil
}

// Start begins working jobs. It is a no-op for enqueue-only managers.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.working {
		return nil
	}
	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start: %w", err)
	}
	m.started = true
	m.logger.InfoContext(ctx, "job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs until ctx is done.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.working {
		return nil
	}
	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop: %w", err)
	}
	m.started = false
	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// Enqueue inserts a task. Workers reject names they do not know, so a
// working manager checks the name up front.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, io, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.Insert(ctx, args, io); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

// EnqueueTx inserts a task within tx; it becomes visible on commit.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, io, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.InsertTx(ctx, tx, args, io); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

func (m *Manager) prepare(name string, payload any, opts []EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	if m.working {
		if _, ok := m.registry.get(name); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
		}
	}
	args, err := newTaskArgs(name, payload)
	if err != nil {
		return nil, nil, err
	}
	return args, insertOpts(args, opts), nil
}

// Healthcheck reports whether the manager is working and Postgres answers.
func (m *Manager) Healthcheck(ctx context.Context) error {
	m.mu.Lock()
	down := m.working && !m.started
	m.mu.Unlock()
	if down {
		return ErrNotStarted
	}
	return m.pool.Ping(ctx)
}

type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Kind implements river.JobArgs.
func (taskArgs) Kind() string { return taskKind }

func newTaskArgs(name string, payload any) (*taskArgs, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Join(ErrInvalidPayload, err)
		}
		args.Payload = raw
	}
	return args, nil
}

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	logger   *slog.Logger
}

// Work dispatches the job to its registered task.
func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	e, ok := w.registry.get(j.Args.TaskName)
	if !ok {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, j.Args.TaskName))
	}

	log := w.logger.With(
		slog.String("task", j.Args.TaskName),
		slog.Int64("job_id", j.ID),
		slog.Int("attempt", j.Attempt),
	)
	log.DebugContext(ctx, "running task")

	if err := e.execute(ctx, j.Args.Payload); err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			log.ErrorContext(ctx, "task payload rejected", slog.Any("error", err))
			return river.JobCancel(err)
		}
		log.ErrorContext(ctx, "task failed", slog.Any("error", err))
		return err
	}
	return nil
}

type cronSchedule struct {
	cron.Schedule
}

// Next implements river.PeriodicSchedule.
func (s cronSchedule) Next(t time.Time) time.Time {
	return s.Schedule.Next(t)
}

// ParseSchedule parses a five-field cron expression.
func ParseSchedule(expr string) (river.PeriodicSchedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	return cronSchedule{s}, nil
}
