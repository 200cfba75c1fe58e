package session

import (
	"context"
	"time"
)

// Store persists sessions. Get looks sessions up by cookie token; every
// other method addresses them by ID, which survives token rotation.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error
}
