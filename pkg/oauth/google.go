package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

const (
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleDefaultScopes returns the scopes needed for email and profile.
func GoogleDefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleProvider implements Provider for Google.
type GoogleProvider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	userInfoURL  string
	hostedDomain string
}

// NewGoogleProvider validates cfg and builds the provider.
func NewGoogleProvider(cfg GoogleConfig, opts ...Option) (*GoogleProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	o := options{userInfoURL: googleUserInfoURL}
	for _, opt := range opts {
		opt(&o)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GoogleDefaultScopes()
	}

	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     googleOAuth.Endpoint,
		},
		httpClient:   o.httpClient,
		userInfoURL:  o.userInfoURL,
		hostedDomain: strings.ToLower(cfg.HostedDomain),
	}, nil
}

// Name implements Provider.
func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

// AuthCodeURL builds the consent URL. With a hosted domain configured the
// account chooser is limited to that domain.
func (p *GoogleProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	if p.hostedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.hostedDomain))
	}
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens. A non-empty
// redirectURI overrides the configured one.
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := p.config
	if redirectURI != "" {
		c := *p.config
		c.RedirectURL = redirectURI
		cfg = &c
	}
	token, err := cfg.Exchange(p.withHTTPClient(ctx), code)
	if err != nil {
		return nil, errors.Join(ErrExchangeFailed, err)
	}
	return token, nil
}

// FetchUserInfo reads the Google profile. The "hd" parameter on the consent
// URL can be edited by the user, so the hosted domain is checked again here.
func (p *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := p.config.Client(p.withHTTPClient(ctx), token)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("status=%d body=%s", resp.StatusCode, body))
	}

	var u googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}

	if !u.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}
	email := strings.ToLower(u.Email)
	if p.hostedDomain != "" && !strings.HasSuffix(email, "@"+p.hostedDomain) {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotAllowed, email)
	}

	return &UserInfo{
		ID:      u.ID,
		Email:   email,
		Name:    u.Name,
		Picture: u.Picture,
	}, nil
}

func (p *GoogleProvider) withHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}
