package auth

import (
	"encoding/json"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

type FacebookConfig struct {
	ClientID     string   `env:"FACEBOOK_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"FACEBOOK_OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"FACEBOOK_OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"FACEBOOK_OAUTH_SCOPES" envSeparator:"," envDefault:"email,public_profile"`
}

// Enabled reports whether Facebook sign-in is configured.
func (c FacebookConfig) Enabled() bool { return c.ClientID != "" }

const facebookProfileURL = "https://graph.facebook.com/v19.0/me?fields=id,name,email"

func NewFacebook(cfg FacebookConfig, opts ...ProviderOption) (Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, ErrProviderIncomplete
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     facebook.Endpoint,
	}
	return newProvider(ProviderFacebook, conf, facebookProfileURL, decodeFacebook, opts), nil
}

// Facebook only returns confirmed addresses, so a present email is verified.
func decodeFacebook(body []byte) (Profile, error) {
	var u struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return Profile{}, err
	}
	return Profile{Subject: u.ID, Email: u.Email, EmailVerified: u.Email != "", Name: u.Name}, nil
}
