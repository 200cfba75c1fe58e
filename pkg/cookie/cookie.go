// Package cookie sets and reads cookies with shared attributes. Signed
// cookies carry an HMAC-SHA256 signature and an expiry, so a value such as
// an OAuth state can be trusted without server-side storage.
//
//	m := cookie.New(cookie.WithSecret(cfg.CookieSecret), cookie.WithSecure(true))
//	_ = m.SetSigned(w, "oauth_state", state, 10*time.Minute)
//	state, err := m.GetSigned(r, "oauth_state")
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrExpired   = errors.New("cookie: signed value expired")
)

// Manager handles cookie operations.
type Manager struct {
	now      func() time.Time
	domain   string
	path     string
	secret   []byte
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		now:      time.Now,
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the signing secret. Secrets shorter than 32 bytes are
// ignored and signed operations return ErrNoSecret.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

// WithSameSite sets the SameSite mode.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// CheckSecret reports ErrBadSecret when s cannot be used with WithSecret.
func CheckSecret(s string) error {
	if len(s) < 32 {
		return ErrBadSecret
	}
	return nil
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete removes a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// SetSigned sets a cookie whose value is valid for ttl.
// Format: base64(expiry || value).base64(hmac).
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, ttl time.Duration) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	payload := binary.BigEndian.AppendUint64(nil, uint64(m.now().Add(ttl).Unix()))
	payload = append(payload, value...)

	encoded := base64.RawURLEncoding.EncodeToString(payload) +
		"." + base64.RawURLEncoding.EncodeToString(m.sign(payload))

	http.SetCookie(w, m.cookie(name, encoded, int(ttl.Seconds())))
	return nil
}

// GetSigned returns the value of a signed cookie. It fails with ErrBadSig
// for tampered values and ErrExpired once the ttl has passed.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	encPayload, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	payload, err := base64.RawURLEncoding.DecodeString(encPayload)
	if err != nil || len(payload) < 8 {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.sign(payload)) {
		return "", ErrBadSig
	}

	expires := time.Unix(int64(binary.BigEndian.Uint64(payload[:8])), 0)
	if !m.now().Before(expires) {
		return "", ErrExpired
	}
	return string(payload[8:]), nil
}

func (m *Manager) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
