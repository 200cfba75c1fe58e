package job

import "errors"

var (
	ErrUnknownTask     = errors.New("job: unknown task")
	ErrInvalidPayload  = errors.New("job: invalid payload")
	ErrAlreadyStarted  = errors.New("job: already started")
	ErrNotStarted      = errors.New("job: not started")
	ErrPoolRequired    = errors.New("job: pool is required")
	ErrInvalidSchedule = errors.New("job: invalid cron schedule")
	ErrDuplicateTask   = errors.New("job: task registered twice")
	ErrMigrate         = errors.New("job: migration failed")
)
