package auth

import (
	"encoding/json"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

// Enabled reports whether Google sign-in is configured.
func (c GoogleConfig) Enabled() bool { return c.ClientID != "" }

const googleProfileURL = "https://www.googleapis.com/oauth2/v3/userinfo"

func NewGoogle(cfg GoogleConfig, opts ...ProviderOption) (Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, ErrProviderIncomplete
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     google.Endpoint,
	}
	p := newProvider(ProviderGoogle, conf, googleProfileURL, decodeGoogle, opts)
	p.authOpts = []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	return p, nil
}

func decodeGoogle(body []byte) (Profile, error) {
	var u struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return Profile{}, err
	}
	return Profile{Subject: u.Sub, Email: u.Email, EmailVerified: u.EmailVerified, Name: u.Name}, nil
}
