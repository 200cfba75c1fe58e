package cms

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/pkg/id"
	"github.com/dmitrymomot/newsdesk/pkg/oauth"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

func (h *Handlers) me(c newsdesk.Context, _, _ newsdesk.Empty) (api.User, error) {
	return h.proc.Auth.User(c).API(), nil
}

func (h *Handlers) logout(c newsdesk.Context, _, _ newsdesk.Empty) (api.Deleted, error) {
	u := h.proc.Auth.User(c)
	if err := c.DestroySession(); err != nil {
		return api.Deleted{}, err
	}
	return api.Deleted{ID: u.ID}, nil
}

// googleLogin returns the consent URL and pins a random state to the
// browser in a signed cookie.
func (h *Handlers) googleLogin(c newsdesk.Context, _, _ newsdesk.Empty) (api.LoginURL, error) {
	if h.oauth == nil || h.cookies == nil {
		return api.LoginURL{}, newsdesk.ErrNotFound("google sign-in is not enabled")
	}

	state, err := id.Token(32)
	if err != nil {
		return api.LoginURL{}, err
	}
	if err := h.cookies.SetSigned(c.Response(), stateCookie, state, stateTTL); err != nil {
		return api.LoginURL{}, err
	}
	return api.LoginURL{URL: h.oauth.AuthCodeURL(state)}, nil
}

// googleCallback completes sign-in. Only existing, enabled staff accounts
// can sign in; the Google account is matched by e-mail.
func (h *Handlers) googleCallback(c newsdesk.Context, _ newsdesk.Empty, q api.OAuthCallbackQuery) (api.User, error) {
	if h.oauth == nil || h.cookies == nil {
		return api.User{}, newsdesk.ErrNotFound("google sign-in is not enabled")
	}

	state, err := h.cookies.GetSigned(c.Request(), stateCookie)
	if err != nil {
		return api.User{}, newsdesk.ErrUnauthenticated("invalid oauth state", newsdesk.WithCause(err))
	}
	h.cookies.Delete(c.Response(), stateCookie)
	if subtle.ConstantTimeCompare([]byte(state), []byte(q.State)) != 1 {
		return api.User{}, newsdesk.ErrUnauthenticated("invalid oauth state")
	}

	info, err := oauth.Login(c, h.oauth, q.Code)
	if err != nil {
		return api.User{}, newsdesk.ErrUnauthenticated("sign-in failed", newsdesk.WithCause(err))
	}

	u, err := h.users.UserByEmail(c, info.Email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return api.User{}, newsdesk.ErrForbidden("no staff account for this e-mail", newsdesk.WithCause(err))
	case err != nil:
		return api.User{}, err
	case u.Disabled:
		return api.User{}, newsdesk.ErrForbidden("account is disabled")
	}

	if err := c.AuthenticateSession(u.ID); err != nil {
		return api.User{}, err
	}
	c.LogInfo("staff signed in", slog.String("user_id", u.ID), slog.String("provider", h.oauth.Name()))
	return u.API(), nil
}
