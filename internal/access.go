package internal

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/dmitrymomot/newsdesk/pkg/session"
)

var (
	// ErrNoCredentials means the request carries no credentials for an authenticator.
	ErrNoCredentials = errors.New("newsdesk: no credentials")

	// ErrInvalidCredentials means the credentials were present but rejected.
	ErrInvalidCredentials = errors.New("newsdesk: invalid credentials")
)

// Principal is an authenticated caller.
type Principal interface {
	PrincipalID() string
	PrincipalRoles() []string
}

// Authenticator resolves the caller of a request.
// Return ErrNoCredentials or ErrInvalidCredentials (possibly wrapped) to
// reject the request with 401. A returned *Error is rendered as-is; any
// other error is an internal error.
type Authenticator[U Principal] interface {
	Authenticate(c Context) (U, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc[U Principal] func(Context) (U, error)

// Authenticate calls f.
func (f AuthenticatorFunc[U]) Authenticate(c Context) (U, error) {
	return f(c)
}

// Auth is the capability returned by Authenticate. Role guards can only be
// built from it, so a guard always reads the user its chain authenticated.
type Auth[U Principal] struct {
	key Key[U]
}

// User returns the authenticated user.
func (a Auth[U]) User(c Context) U {
	return a.key.MustGet(c)
}

// Key returns the handle of the user local.
func (a Auth[U]) Key() Key[U] {
	return a.key
}

// Authenticate extends p with a stage that runs a and stores the caller
// under the user local.
func Authenticate[U Principal](p Procedure, a Authenticator[U]) (Procedure, Auth[U]) {
	if a == nil {
		panic("newsdesk: Authenticate needs an authenticator")
	}
	key := Key[U]{name: FieldUser}

	next := p.Extend(Stage{
		Name:     "authenticate",
		Provides: []Decl{key.Decl()},
		Run: func(c Context) Result {
			u, err := a.Authenticate(c)
			switch {
			case errors.Is(err, ErrNoCredentials):
				return Halt(ErrUnauthenticated("", WithCause(err)))
			case errors.Is(err, ErrInvalidCredentials):
				return Halt(ErrUnauthenticated("invalid credentials", WithCause(err)))
			case err != nil:
				return Halt(err)
			case isNil(u):
				return Halt(ErrUnauthenticated(""))
			}
			return Continue(key.Field(u))
		},
	})
	return next, Auth[U]{key: key}
}

// RequireRoles builds a guard that continues only when the authenticated
// user holds one of roles. Extending a procedure that did not authenticate
// with the guard panics at startup.
func RequireRoles[U Principal](auth Auth[U], roles ...string) Stage {
	if auth.key.name == "" {
		panic("newsdesk: RequireRoles needs the Auth returned by Authenticate")
	}
	if len(roles) == 0 {
		panic("newsdesk: RequireRoles needs at least one role")
	}
	allowed := slices.Clone(roles)

	return Stage{
		Name:     "require_roles(" + strings.Join(allowed, ",") + ")",
		Requires: []Decl{auth.key.Decl()},
		Run: func(c Context) Result {
			u := auth.key.MustGet(c)
			for _, r := range u.PrincipalRoles() {
				if slices.Contains(allowed, r) {
					return Continue()
				}
			}
			return Halt(ErrForbidden("insufficient role"))
		},
	}
}

// Guard is p.Extend(RequireRoles(auth, roles...)).
func Guard[U Principal](p Procedure, auth Auth[U], roles ...string) Procedure {
	return p.Extend(RequireRoles(auth, roles...))
}

// SessionAuthenticator authenticates through the session cookie. load maps
// the session's user ID to a user and should return ErrInvalidCredentials
// for unknown or disabled users. Apps without sessions see no credentials.
func SessionAuthenticator[U Principal](load func(c Context, userID string) (U, error)) Authenticator[U] {
	return AuthenticatorFunc[U](func(c Context) (U, error) {
		var zero U
		sess, err := c.Session()
		if errors.Is(err, session.ErrNotConfigured) {
			return zero, ErrNoCredentials
		}
		if err != nil {
			return zero, err
		}
		if sess == nil || !sess.IsAuthenticated() {
			return zero, ErrNoCredentials
		}
		return load(c, *sess.UserID)
	})
}

// BearerAuthenticator authenticates with an "Authorization: Bearer" token.
func BearerAuthenticator[U Principal](load func(c Context, token string) (U, error)) Authenticator[U] {
	bearer := NewExtractor(FromBearerToken())
	return AuthenticatorFunc[U](func(c Context) (U, error) {
		var zero U
		token, ok := bearer.Extract(c)
		if !ok {
			return zero, ErrNoCredentials
		}
		return load(c, token)
	})
}

// AnyAuthenticator tries each authenticator in order and uses the first one
// for which the request has credentials.
func AnyAuthenticator[U Principal](auths ...Authenticator[U]) Authenticator[U] {
	return AuthenticatorFunc[U](func(c Context) (U, error) {
		var zero U
		for _, a := range auths {
			u, err := a.Authenticate(c)
			if errors.Is(err, ErrNoCredentials) {
				continue
			}
			return u, err
		}
		return zero, ErrNoCredentials
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}
