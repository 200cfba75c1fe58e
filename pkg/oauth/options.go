package oauth

import "net/http"

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	userInfoURL string
}

// WithHTTPClient routes token exchange and profile requests through client,
// e.g. one with a traced transport or a test round tripper.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithUserInfoURL overrides the profile endpoint.
func WithUserInfoURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.userInfoURL = url
		}
	}
}
