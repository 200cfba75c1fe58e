package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/pkg/db"
)

const userColumns = `u.id::text, u.email, u.name, u.role, u.disabled, u.created_at`

// UserByID implements cms.UserStore.
func (s *Store) UserByID(ctx context.Context, id string) (*cms.User, error) {
	return s.oneUser(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

// UserByEmail implements cms.UserStore.
func (s *Store) UserByEmail(ctx context.Context, email string) (*cms.User, error) {
	return s.oneUser(ctx, `SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1)`, email)
}

// UserByTokenHash also stamps the token's last use.
func (s *Store) UserByTokenHash(ctx context.Context, hash string) (*cms.User, error) {
	return s.oneUser(ctx, `
		WITH t AS (
			UPDATE api_tokens SET last_used_at = now() WHERE token_hash = $1 RETURNING user_id
		)
		SELECT `+userColumns+` FROM users u JOIN t ON t.user_id = u.id`, hash)
}

// CreateUser inserts u. It is used by provisioning and tests.
func (s *Store) CreateUser(ctx context.Context, u *cms.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, name, role, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.Role, u.Disabled, u.CreatedAt,
	)
	return err
}

// CreateToken stores the hash of token for userID.
func (s *Store) CreateToken(ctx context.Context, userID, name, token string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO api_tokens (token_hash, user_id, name) VALUES ($1, $2, $3)`,
		cms.HashToken(token), userID, name,
	)
	return err
}

func (s *Store) oneUser(ctx context.Context, query string, arg any) (*cms.User, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (*cms.User, error) {
		var u cms.User
		err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Disabled, &u.CreatedAt)
		return &u, err
	})
	if db.IsNotFound(err) {
		return nil, cms.ErrUserNotFound
	}
	return u, err
}
