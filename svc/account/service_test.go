package account_test

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/account/memstore"
	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/password"
	"github.com/alqudsguide/backend/svc/token"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
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

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, html string) (notify.Result, error) {
	args := m.Called(ctx, to, subject, html)
	return args.Get(0).(notify.Result), args.Error(1)
}

// outbox records delivered messages so tests can follow the mailed links.
type outbox struct {
	mu       sync.Mutex
	messages []sent
}

type sent struct {
	to, subject, html string
}

var tokenParam = regexp.MustCompile(`token=([^"&<\s]+)`)

func (o *outbox) record(args mock.Arguments) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, sent{args.String(1), args.String(2), args.String(3)})
}

func (o *outbox) lastToken(t *testing.T, to string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].to != to {
			continue
		}
		m := tokenParam.FindStringSubmatch(o.messages[i].html)
		require.Len(t, m, 2, "message has no token link")
		tok, err := url.QueryUnescape(m[1])
		require.NoError(t, err)
		return tok
	}
	t.Fatalf("no message to %s", to)
	return ""
}

type fixture struct {
	svc      *account.Service
	store    *memstore.Store
	tokens   *token.Service
	notifier *mockNotifier
	outbox   *outbox
	clock    *clock
	ops      *opLog
}

type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) observe(_ context.Context, op string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	l.ops = append(l.ops, op+":"+status)
}

// newFixture wires a service on the memory store. The notifier delivers
// through "primary" unless the test overrides its expectations.
func newFixture(t *testing.T, opts ...account.Option) *fixture {
	t.Helper()

	clk := newClock()
	tokens, err := token.New("session-secret-for-tests", "action-secret-for-tests", token.WithClock(clk.Now), token.WithIssuer("test"))
	require.NoError(t, err)
	hasher, err := password.New(password.WithCost(4))
	require.NoError(t, err)

	f := &fixture{
		store:    memstore.New(),
		tokens:   tokens,
		notifier: &mockNotifier{},
		outbox:   &outbox{},
		clock:    clk,
		ops:      &opLog{},
	}

	base := []account.Option{
		account.WithClock(clk.Now),
		account.WithConfig(account.Config{ClientURL: "https://guide.example.com"}),
		account.WithObserver(f.ops.observe),
	}
	f.svc, err = account.NewService(f.store, tokens, hasher, f.notifier, append(base, opts...)...)
	require.NoError(t, err)
	return f
}

func (f *fixture) deliverOK() {
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(f.outbox.record).
		Return(notify.Result{Delivered: true, Channel: "primary"}, nil)
}

func (f *fixture) deliverFail() {
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(notify.Result{}, notify.ErrDeliveryFailed)
}

func (f *fixture) create(t *testing.T, email, pw string) *account.Session {
	t.Helper()
	sess, err := f.svc.Create(context.Background(), account.CreateInput{Email: email, Password: pw, ConfirmPassword: pw})
	require.NoError(t, err)
	return sess
}

func (f *fixture) federated(t *testing.T, provider, subject, email string) *account.Session {
	t.Helper()
	sess, err := f.svc.SignInFederated(context.Background(), account.FederatedProfile{
		Provider: provider, Subject: subject, Email: email, EmailVerified: email != "",
	})
	require.NoError(t, err)
	return sess
}
