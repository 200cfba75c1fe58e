package job

import (
	"log/slog"
)

type config struct {
	logger     *slog.Logger
	queues     map[string]int
	tasks      []func(*registry) error
	schedules  []ScheduledTask
	maxWorkers int
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a task that can be enqueued by name.
func WithTask[P any](t Task[P]) Option {
	return func(c *config) {
		c.tasks = append(c.tasks, func(r *registry) error {
			return r.register(t.Name(), decoding(t))
		})
	}
}

// WithScheduledTask registers a periodic task. The schedule uses the
// standard five-field cron syntax.
func WithScheduledTask(t ScheduledTask) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, t)
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for the manager and its workers.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
