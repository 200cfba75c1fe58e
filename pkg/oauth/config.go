package oauth

// GoogleConfig holds Google sign-in settings.
type GoogleConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	HostedDomain string   `koanf:"hosted_domain"` // restrict sign-in to one Workspace domain
	Scopes       []string `koanf:"scopes"`
}

// Enabled reports whether credentials are configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
