// Package oauth implements the authorization code flow used for staff
// sign-in. Providers return verified user information; mapping it to a
// local account is left to the caller.
//
//	p, err := oauth.NewGoogleProvider(cfg.OAuth.Google)
//	url := p.AuthCodeURL(state)
//	// ...callback
//	info, err := oauth.Login(ctx, p, code)
package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// UserInfo is the provider-agnostic identity of a signed-in user.
type UserInfo struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Provider abstracts provider-specific OAuth operations.
type Provider interface {
	Name() string
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchUserInfo must return ErrEmailNotVerified for unverified addresses.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// Login exchanges code and fetches the user it belongs to.
func Login(ctx context.Context, p Provider, code string) (*UserInfo, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	token, err := p.Exchange(ctx, code, "")
	if err != nil {
		return nil, err
	}
	return p.FetchUserInfo(ctx, token)
}
