package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session"

// RedisStore keeps sessions in Redis. Each session is stored as JSON under
// its ID, with a token index and a per-user set, all expiring with the
// session.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Defaults to "session".
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore returns a store on client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (r *RedisStore) idKey(id string) string       { return r.prefix + ":id:" + id }
func (r *RedisStore) tokenKey(token string) string { return r.prefix + ":token:" + token }
func (r *RedisStore) userKey(userID string) string { return r.prefix + ":user:" + userID }

// Create implements Store.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	return r.write(ctx, s, "")
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	sid, err := r.client.Get(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get token: %w", err)
	}
	s, err := r.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.Token != token {
		return nil, ErrInvalidToken
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return s, nil
}

// Update implements Store.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	prev, err := r.load(ctx, s.ID)
	if err != nil {
		return err
	}
	return r.write(ctx, s, prev.Token)
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	s, err := r.load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.idKey(id), r.tokenKey(s.Token))
	if s.UserID != nil {
		pipe.SRem(ctx, r.userKey(*s.UserID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// DeleteByUserID implements Store.
func (r *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("session: list user sessions: %w", err)
	}
	var errs []error
	for _, sid := range ids {
		if err := r.Delete(ctx, sid); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.client.Del(ctx, r.userKey(userID)).Err(); err != nil {
		errs = append(errs, fmt.Errorf("session: delete user index: %w", err))
	}
	return errors.Join(errs...)
}

// Touch implements Store.
func (r *RedisStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	s, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	s.LastActiveAt = lastActiveAt
	return r.write(ctx, s, s.Token)
}

func (r *RedisStore) load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &s, nil
}

// write stores s and its indexes in one transaction, dropping prevToken's
// index entry when the token has rotated.
func (r *RedisStore) write(ctx context.Context, s *Session, prevToken string) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.idKey(s.ID), data, ttl)
	pipe.Set(ctx, r.tokenKey(s.Token), s.ID, ttl)
	if prevToken != "" && prevToken != s.Token {
		pipe.Del(ctx, r.tokenKey(prevToken))
	}
	if s.UserID != nil {
		pipe.SAdd(ctx, r.userKey(*s.UserID), s.ID)
		pipe.ExpireNX(ctx, r.userKey(*s.UserID), ttl)
		pipe.ExpireGT(ctx, r.userKey(*s.UserID), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	return nil
}
