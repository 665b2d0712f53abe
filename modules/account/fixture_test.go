package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	accountmod "github.com/alqudsguide/backend/modules/account"
	"github.com/alqudsguide/backend/pkg/clientip"
	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/environment"
	"github.com/alqudsguide/backend/pkg/ratelimit"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/account/memstore"
	"github.com/alqudsguide/backend/svc/auth"
	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/password"
	"github.com/alqudsguide/backend/svc/token"
)

const strongPassword = "Passw0rd!"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mailbox is the notifier: it records every message it accepts.
type mailbox struct {
	mu       sync.Mutex
	messages []mail
	fail     bool
}

type mail struct {
	to, subject, html string
}

func (m *mailbox) Send(_ context.Context, to, subject, html string) (notify.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return notify.Result{}, notify.ErrDeliveryFailed
	}
	m.messages = append(m.messages, mail{to, subject, html})
	return notify.Result{Delivered: true, Channel: "primary"}, nil
}

func (m *mailbox) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *mailbox) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

var linkToken = regexp.MustCompile(`token=([^"&<\s]+)`)

func (m *mailbox) lastToken(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].to != to {
			continue
		}
		match := linkToken.FindStringSubmatch(m.messages[i].html)
		require.Len(t, match, 2)
		tok, err := url.QueryUnescape(match[1])
		require.NoError(t, err)
		return tok
	}
	t.Fatalf("no mail to %s", to)
	return ""
}

type stubProvider struct{ name string }

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) AuthURL(state string) string {
	return "https://accounts.example.com/o/auth?state=" + url.QueryEscape(state)
}

func (p stubProvider) Profile(_ context.Context, code string) (auth.Profile, error) {
	if code != "ok" {
		return auth.Profile{}, auth.ErrInvalidCode
	}
	return auth.Profile{Subject: p.name + "-1", Email: "pilgrim@example.com", EmailVerified: true, Name: "Pilgrim"}, nil
}

type fixture struct {
	t      *testing.T
	router http.Handler
	svc    *account.Service
	store  *memstore.Store
	hasher *password.Hasher
	mail   *mailbox
	clock  *clock
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	env           environment.Environment
	enforceExpiry bool
}

func production() fixtureOption {
	return func(c *fixtureConfig) { c.env = environment.Production }
}

func enforceExpiry() fixtureOption {
	return func(c *fixtureConfig) { c.enforceExpiry = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{env: environment.Development}
	for _, opt := range opts {
		opt(&cfg)
	}

	clk := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	tokens, err := token.New("session-secret-for-tests", "action-secret-for-tests", token.WithClock(clk.Now))
	require.NoError(t, err)
	hasher, err := password.New(password.WithCost(4))
	require.NoError(t, err)

	f := &fixture{t: t, store: memstore.New(), hasher: hasher, mail: &mailbox{}, clock: clk}
	f.svc, err = account.NewService(f.store, tokens, hasher, f.mail,
		account.WithClock(clk.Now),
		account.WithConfig(account.Config{ClientURL: "https://guide.example.com"}),
	)
	require.NoError(t, err)

	cookies, err := cookie.New([]string{strings.Repeat("c", 32)}, cookie.ForEnvironment(cfg.env)...)
	require.NoError(t, err)
	gate, err := auth.NewGate(f.svc, cookies, auth.WithPasswordExpiryEnforced(cfg.enforceExpiry))
	require.NoError(t, err)
	oauth, err := auth.NewOAuth(f.svc, auth.NewMemoryCodeStore(clk.Now), cookies,
		auth.WithProvider(stubProvider{name: auth.ProviderGoogle}),
	)
	require.NoError(t, err)

	limitStore := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = limitStore.Close() })
	limiter, err := ratelimit.New(limitStore, 5, 15*time.Minute, ratelimit.WithClock(clk.Now))
	require.NoError(t, err)

	m, err := accountmod.New(f.svc, gate, cookies,
		accountmod.WithOAuth(oauth),
		accountmod.WithAuthLimit(ratelimit.Middleware(limiter, ratelimit.WithRefundSuccessful())),
		accountmod.WithConfig(accountmod.Config{ClientURL: "https://guide.example.com"}),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(clientip.New().Middleware)
	r.Mount("/api/user", m.Router())
	f.router = r
	return f
}

type request struct {
	method string
	path   string
	body   any
	token  string
	cookie *http.Cookie
}

type response struct {
	*httptest.ResponseRecorder
}

func (f *fixture) do(req request) response {
	f.t.Helper()
	var body *bytes.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(f.t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(req.method, "/api/user"+req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: req.token})
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return response{rec}
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &out), r.Body.String())
	return out
}

func (r response) errorCode(t *testing.T) string {
	t.Helper()
	e, ok := r.json(t)["error"].(map[string]any)
	require.True(t, ok, r.Body.String())
	code, _ := e["code"].(string)
	return code
}

func (r response) errorMessage(t *testing.T) string {
	t.Helper()
	e, _ := r.json(t)["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (r response) user(t *testing.T) map[string]any {
	t.Helper()
	u, ok := r.json(t)["user"].(map[string]any)
	require.True(t, ok, r.Body.String())
	return u
}

// signUp creates a password account through the API and returns its token.
func (f *fixture) signUp(email string) string {
	f.t.Helper()
	res := f.do(request{method: http.MethodPost, path: "/create", body: map[string]string{
		"email": email, "password": strongPassword, "confirmPassword": strongPassword,
	}})
	require.Equal(f.t, http.StatusCreated, res.Code, res.Body.String())
	tok, _ := res.json(f.t)["token"].(string)
	require.NotEmpty(f.t, tok)
	return tok
}

func (f *fixture) signIn(email, pw string) response {
	f.t.Helper()
	return f.do(request{method: http.MethodPost, path: "/signin", body: map[string]string{"email": email, "password": pw}})
}

// seed stores an account directly, for roles sign-up does not produce.
func (f *fixture) seed(email string, role account.Role, withPassword bool) *account.Account {
	f.t.Helper()
	now := f.clock.Now()
	acc := &account.Account{
		ID:                uuid.New(),
		Email:             email,
		Role:              role,
		Status:            account.StatusActive,
		SecuritySettings:  account.DefaultSecuritySettings(),
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if withPassword {
		hash, err := f.hasher.Hash(strongPassword)
		require.NoError(f.t, err)
		acc.PasswordHash = hash
	} else {
		acc.FederatedIdentities = []account.FederatedIdentity{{Provider: "google", Subject: "sub-" + email, LinkedAt: now}}
	}
	require.NoError(f.t, f.store.Create(context.Background(), acc))
	return acc
}

func (f *fixture) sessionFor(acc *account.Account) string {
	f.t.Helper()
	if acc.HasPassword() {
		res := f.signIn(acc.Email, strongPassword)
		require.Equal(f.t, http.StatusOK, res.Code, res.Body.String())
		tok, _ := res.json(f.t)["token"].(string)
		return tok
	}
	sess, err := f.svc.SignInFederated(context.Background(), account.FederatedProfile{
		Provider: acc.FederatedIdentities[0].Provider,
		Subject:  acc.FederatedIdentities[0].Subject,
	})
	require.NoError(f.t, err)
	return sess.Token
}
