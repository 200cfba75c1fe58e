package health

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrCheckFailed  = errors.New("health: check failed")
	ErrCheckTimeout = errors.New("health: check timeout")
)

func wrap(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCheckTimeout
	}
	return fmt.Errorf("%w: %w", ErrCheckFailed, err)
}
