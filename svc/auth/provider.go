package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// Provider hides the protocol details of one OAuth provider.
type Provider interface {
	Name() string
	// AuthURL is where the browser is sent to grant access.
	AuthURL(state string) string
	// Profile exchanges an authorization code for the user's profile.
	Profile(ctx context.Context, code string) (Profile, error)
}

// Profile is the normalized identity reported by a provider.
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type ProviderOption func(*oauthProvider)

// WithHTTPClient sets the client used for the token exchange and profile call.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *oauthProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithEndpoint overrides the provider's OAuth endpoints.
func WithEndpoint(e oauth2.Endpoint) ProviderOption {
	return func(p *oauthProvider) { p.conf.Endpoint = e }
}

// WithProfileURL overrides the provider's profile endpoint.
func WithProfileURL(u string) ProviderOption {
	return func(p *oauthProvider) {
		if u != "" {
			p.profileURL = u
		}
	}
}

type oauthProvider struct {
	name       string
	conf       *oauth2.Config
	client     *http.Client
	profileURL string
	authOpts   []oauth2.AuthCodeOption
	decode     func(body []byte) (Profile, error)
}

func (p *oauthProvider) Name() string { return p.name }

func (p *oauthProvider) AuthURL(state string) string {
	return p.conf.AuthCodeURL(state, p.authOpts...)
}

func (p *oauthProvider) Profile(ctx context.Context, code string) (Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to build %s profile request: %w", p.name, err)
	}
	resp, err := p.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to fetch %s profile: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("failed to fetch %s profile: status %d", p.name, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Profile{}, fmt.Errorf("failed to decode %s profile: %w", p.name, err)
	}
	profile, err := p.decode(raw)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to decode %s profile: %w", p.name, err)
	}
	if profile.Subject == "" {
		return Profile{}, fmt.Errorf("%s profile has no subject: %w", p.name, ErrInvalidCode)
	}
	return profile, nil
}

func newProvider(name string, conf *oauth2.Config, profileURL string, decode func([]byte) (Profile, error), opts []ProviderOption) *oauthProvider {
	p := &oauthProvider{
		name:       name,
		conf:       conf,
		client:     &http.Client{Timeout: 10 * time.Second},
		profileURL: profileURL,
		decode:     decode,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
