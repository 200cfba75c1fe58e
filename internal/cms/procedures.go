package cms

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/pkg/cache"
	"github.com/dmitrymomot/newsdesk/pkg/cookie"
	"github.com/dmitrymomot/newsdesk/pkg/oauth"
	"github.com/dmitrymomot/newsdesk/pkg/storage"
)

// Deps wires the newsroom to its adapters. OAuth may be nil, which disables
// Google sign-in.
type Deps struct {
	Posts     PostStore
	Users     UserStore
	Images    ImageStore
	Search    SearchIndex
	Scheduler Scheduler
	Files     storage.Storage
	Cache     cache.Cache[api.Post]
	OAuth     oauth.Provider
	Cookies   *cookie.Manager
	Logger    *slog.Logger
	Now       func() time.Time
}

// Procedures are the access levels endpoints are built on.
type Procedures struct {
	Auth newsdesk.Auth[*User]

	Public  newsdesk.Procedure
	Authed  newsdesk.Procedure
	Staff   newsdesk.Procedure
	Editors newsdesk.Procedure
	Admin   newsdesk.Procedure
}

// NewProcedures authenticates staff by session cookie or API token.
func NewProcedures(users UserStore) Procedures {
	authed, auth := newsdesk.Authenticate(newsdesk.Base(), newsdesk.AnyAuthenticator(
		newsdesk.SessionAuthenticator(func(c newsdesk.Context, userID string) (*User, error) {
			return activeUser(users.UserByID(c, userID))
		}),
		newsdesk.BearerAuthenticator(func(c newsdesk.Context, token string) (*User, error) {
			return activeUser(users.UserByTokenHash(c, HashToken(token)))
		}),
	))

	return Procedures{
		Auth:    auth,
		Public:  newsdesk.Base(),
		Authed:  authed,
		Staff:   newsdesk.Guard(authed, auth, RoleAdmin, RoleEditor, RoleWriter),
		Editors: newsdesk.Guard(authed, auth, RoleAdmin, RoleEditor),
		Admin:   newsdesk.Guard(authed, auth, RoleAdmin),
	}
}

// HashToken returns the SHA-256 hex digest API tokens are stored under.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func activeUser(u *User, err error) (*User, error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("%w: %w", newsdesk.ErrInvalidCredentials, err)
	case err != nil:
		return nil, err
	case u.Disabled:
		return nil, fmt.Errorf("%w: %w", newsdesk.ErrInvalidCredentials, ErrUserDisabled)
	}
	return u, nil
}
