package account_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
)

func TestCreateAndSignIn(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.do(request{method: http.MethodPost, path: "/create", body: map[string]string{
		"email": "  Pilgrim@Example.com ", "password": strongPassword, "confirmPassword": strongPassword,
	}})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	user := res.user(t)
	assert.Equal(t, "pilgrim@example.com", user["email"])
	assert.Equal(t, "admin", user["role"])
	assert.Equal(t, true, user["hasPassword"])
	assert.NotContains(t, res.Body.String(), "$2a$")

	c := res.cookie(auth.SessionCookie)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.False(t, c.Secure)

	res = f.signIn("pilgrim@example.com", strongPassword)
	require.Equal(t, http.StatusOK, res.Code)
	c = res.cookie(auth.SessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)

	me := f.do(request{method: http.MethodGet, path: "/me", token: c.Value})
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "pilgrim@example.com", me.user(t)["email"])
	assert.Equal(t, false, me.json(t)["passwordExpired"])
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signUp("taken@example.com")

	res := f.do(request{method: http.MethodPost, path: "/create", body: map[string]string{
		"email": "not-an-email", "password": "short", "confirmPassword": "other",
	}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "validation_error", res.errorCode(t))
	details, _ := res.json(t)["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "confirmPassword")

	res = f.do(request{method: http.MethodPost, path: "/create", body: map[string]string{
		"email": "TAKEN@example.com", "password": strongPassword, "confirmPassword": strongPassword,
	}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "duplicate_email", res.errorCode(t))

	req := request{method: http.MethodPost, path: "/create"}
	res = f.do(req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "invalid_request", res.errorCode(t))
}

func TestProductionCookie(t *testing.T) {
	t.Parallel()
	f := newFixture(t, production())

	res := f.do(request{method: http.MethodPost, path: "/create", body: map[string]string{
		"email": "a@example.com", "password": strongPassword, "confirmPassword": strongPassword,
	}})
	require.Equal(t, http.StatusCreated, res.Code)
	c := res.cookie(auth.SessionCookie)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	out := f.do(request{method: http.MethodPost, path: "/signout", token: c.Value})
	require.Equal(t, http.StatusOK, out.Code)
	cleared := out.cookie(auth.SessionCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.True(t, cleared.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cleared.SameSite)
}

func TestSignInEnumerationResistance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signUp("known@example.com")
	f.seed("social@example.com", account.RoleUser, false)

	unknown := f.signIn("nobody@example.com", strongPassword)
	federated := f.signIn("social@example.com", strongPassword)
	wrong := f.signIn("known@example.com", "Wr0ng!pass")

	for _, res := range []response{unknown, federated, wrong} {
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Equal(t, "invalid_credentials", res.errorCode(t))
	}
	assert.Equal(t, unknown.Body.String(), federated.Body.String())
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestSignOutIsLenient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, tok := range []string{"", "garbage"} {
		res := f.do(request{method: http.MethodPost, path: "/signout", token: tok})
		require.Equal(t, http.StatusOK, res.Code)
		c := res.cookie(auth.SessionCookie)
		require.NotNil(t, c)
		assert.Negative(t, c.MaxAge)
	}
}

func TestSessionErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.do(request{method: http.MethodGet, path: "/me"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "token_missing", res.errorCode(t))

	res = f.do(request{method: http.MethodGet, path: "/me", token: "garbage"})
	assert.Equal(t, "token_invalid", res.errorCode(t))

	tok := f.signUp("short@example.com")
	f.clock.Advance(24*time.Hour + time.Second)
	res = f.do(request{method: http.MethodGet, path: "/me", token: tok})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "token_expired", res.errorCode(t))

	gone := f.seed("gone@example.com", account.RoleUser, true)
	tok = f.sessionFor(gone)
	require.NoError(t, f.store.Delete(context.Background(), gone.ID))
	res = f.do(request{method: http.MethodGet, path: "/me", token: tok})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "account_deleted", res.errorCode(t))
	c := res.cookie(auth.SessionCookie)
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)
}

func TestInactiveAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.seed("admin@example.com", account.RoleAdmin, true)
	user := f.seed("user@example.com", account.RoleUser, true)
	userTok := f.sessionFor(user)
	adminTok := f.sessionFor(admin)

	res := f.do(request{method: http.MethodPut, path: "/" + user.ID.String() + "/status", token: adminTok, body: map[string]string{"status": "inactive"}})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "inactive", res.user(t)["status"])

	res = f.do(request{method: http.MethodGet, path: "/me", token: userTok})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "account_inactive", res.errorCode(t))

	res = f.signIn("user@example.com", strongPassword)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "account_inactive", res.errorCode(t))
}

func TestAuthRateLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signUp("pilgrim@example.com")

	// Successful sign-ins do not count.
	for range 10 {
		require.Equal(t, http.StatusOK, f.signIn("pilgrim@example.com", strongPassword).Code)
	}
	for range 5 {
		require.Equal(t, http.StatusUnauthorized, f.signIn("pilgrim@example.com", "Wr0ng!pass").Code)
	}

	res := f.signIn("pilgrim@example.com", strongPassword)
	assert.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.Equal(t, "too_many_requests", res.errorCode(t))
	assert.NotEmpty(t, res.Header().Get("Retry-After"))

	// Non-auth routes are not limited by the auth limiter.
	res = f.do(request{method: http.MethodPost, path: "/email/verify/check", body: map[string]string{"token": "x"}})
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	f.clock.Advance(15*time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, f.signIn("pilgrim@example.com", strongPassword).Code)
}

func TestOAuthRoutes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.do(request{method: http.MethodGet, path: "/google"})
	require.Equal(t, http.StatusFound, res.Code)
	target, err := url.Parse(res.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", target.Host)
	state := target.Query().Get("state")
	require.NotEmpty(t, state)
	stateCookie := res.cookie(auth.StateCookie)
	require.NotNil(t, stateCookie)

	res = f.do(request{
		method: http.MethodGet,
		path:   "/google/callback?code=ok&state=" + url.QueryEscape(state),
		cookie: stateCookie,
	})
	require.Equal(t, http.StatusFound, res.Code)
	back, err := url.Parse(res.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "guide.example.com", back.Host)
	assert.Equal(t, "/oauth/callback", back.Path)
	code := back.Query().Get("code")
	require.NotEmpty(t, code)
	assert.Empty(t, back.Query().Get("token"))
	require.NotNil(t, res.cookie(auth.SessionCookie))

	res = f.do(request{method: http.MethodPost, path: "/oauth/exchange", body: map[string]string{"code": code}})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	user := res.user(t)
	assert.Equal(t, "pilgrim@example.com", user["email"])
	assert.Equal(t, false, user["hasPassword"])
	assert.Equal(t, []any{"google"}, user["providers"])
	require.NotNil(t, res.cookie(auth.SessionCookie))

	res = f.do(request{method: http.MethodPost, path: "/oauth/exchange", body: map[string]string{"code": code}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "invalid_code", res.errorCode(t))
}

func TestOAuthFailureRedirects(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		reason string
	}{
		{"provider not configured", "/facebook", "provider_unavailable"},
		{"callback without state", "/google/callback?code=ok", "invalid_state"},
		{"provider denied", "/google/callback?error=access_denied", "access_denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.do(request{method: http.MethodGet, path: tt.path})
			require.Equal(t, http.StatusFound, res.Code)
			loc := res.Header().Get("Location")
			assert.True(t, strings.HasPrefix(loc, "https://guide.example.com/signin?"), loc)
			u, err := url.Parse(loc)
			require.NoError(t, err)
			assert.Equal(t, tt.reason, u.Query().Get("error"))
			assert.Nil(t, res.cookie(auth.SessionCookie))
		})
	}
}
