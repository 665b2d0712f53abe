package account_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/svc/account"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.seed("user@example.com", account.RoleUser, true)
	tok := f.sessionFor(user)

	for _, path := range []string{"/list", "/stats", "/export"} {
		res := f.do(request{method: http.MethodGet, path: path, token: tok})
		assert.Equal(t, http.StatusForbidden, res.Code, path)
		assert.Equal(t, "forbidden", res.errorCode(t), path)

		res = f.do(request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, res.Code, path)
	}
}

func TestAdminListAndStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.seed("admin@example.com", account.RoleAdmin, true)
	f.seed("one@example.com", account.RoleUser, true)
	f.seed("two@example.com", account.RoleUser, false)
	tok := f.sessionFor(admin)

	res := f.do(request{method: http.MethodGet, path: "/list", token: tok})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	body := res.json(t)
	assert.EqualValues(t, 3, body["count"])
	assert.NotContains(t, res.Body.String(), "passwordHash")

	res = f.do(request{method: http.MethodGet, path: "/list?role=user&limit=1", token: tok})
	require.Equal(t, http.StatusOK, res.Code)
	body = res.json(t)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 1, body["limit"])

	res = f.do(request{method: http.MethodGet, path: "/list?email=two", token: tok})
	require.Equal(t, http.StatusOK, res.Code)
	users, _ := res.json(t)["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "two@example.com", users[0].(map[string]any)["email"])

	res = f.do(request{method: http.MethodGet, path: "/stats", token: tok})
	require.Equal(t, http.StatusOK, res.Code)
	stats := res.json(t)
	assert.EqualValues(t, 3, stats["total"])
	assert.EqualValues(t, 1, stats["admins"])
	assert.EqualValues(t, 2, stats["users"])
	assert.EqualValues(t, 1, stats["federatedOnly"])
}

func TestAdminExport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.seed("admin@example.com", account.RoleAdmin, true)
	f.seed("=cmd@example.com", account.RoleUser, true)
	tok := f.sessionFor(admin)

	res := f.do(request{method: http.MethodGet, path: "/export", token: tok})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Contains(t, res.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, res.Header().Get("Content-Disposition"), "accounts-20260301-100000.csv")

	records, err := csv.NewReader(strings.NewReader(res.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "email", records[0][1])
	for _, rec := range records[1:] {
		assert.False(t, strings.HasPrefix(rec[1], "="), rec[1])
	}
}

func TestAdminDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.seed("admin@example.com", account.RoleAdmin, true)
	user := f.seed("user@example.com", account.RoleUser, true)
	tok := f.sessionFor(admin)

	res := f.do(request{method: http.MethodDelete, path: "/" + admin.ID.String(), token: tok})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "self_deletion", res.errorCode(t))
	_, err := f.store.FindByID(context.Background(), admin.ID)
	require.NoError(t, err)

	res = f.do(request{method: http.MethodDelete, path: "/" + user.ID.String(), token: tok})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	_, err = f.store.FindByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	res = f.do(request{method: http.MethodDelete, path: "/" + user.ID.String(), token: tok})
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "not_found", res.errorCode(t))

	res = f.do(request{method: http.MethodDelete, path: "/not-a-uuid", token: tok})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAdminStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.seed("admin@example.com", account.RoleAdmin, true)
	user := f.seed("user@example.com", account.RoleUser, true)
	tok := f.sessionFor(admin)

	res := f.do(request{method: http.MethodPut, path: "/" + admin.ID.String() + "/status", token: tok, body: map[string]string{"status": "inactive"}})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "self_deactivation", res.errorCode(t))

	res = f.do(request{method: http.MethodPut, path: "/" + user.ID.String() + "/status", token: tok, body: map[string]string{"status": "banned"}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "invalid_status", res.errorCode(t))

	res = f.do(request{method: http.MethodPut, path: "/" + user.ID.String() + "/status", token: tok, body: map[string]string{"status": " Inactive "}})
	require.Equal(t, http.StatusOK, res.Code)
	res = f.do(request{method: http.MethodPut, path: "/" + user.ID.String() + "/status", token: tok, body: map[string]string{"status": "active"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "active", res.user(t)["status"])
}

func TestExpiredPasswordBlocksAdminRoutes(t *testing.T) {
	t.Parallel()
	f := newFixture(t, enforceExpiry())
	admin := f.seed("admin@example.com", account.RoleAdmin, true)
	settings := account.DefaultSecuritySettings()
	settings.PasswordExpiryEnabled = true
	settings.PasswordExpiryIntervalMinutes = 60
	_, err := f.store.Update(context.Background(), admin.ID, account.Update{SecuritySettings: &settings, UpdatedAt: f.clock.Now()})
	require.NoError(t, err)
	tok := f.sessionFor(admin)

	res := f.do(request{method: http.MethodGet, path: "/stats", token: tok})
	require.Equal(t, http.StatusOK, res.Code)

	f.clock.Advance(2 * time.Hour)
	res = f.do(request{method: http.MethodGet, path: "/stats", token: tok})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "password_expired", res.errorCode(t))

	me := f.do(request{method: http.MethodGet, path: "/me", token: tok})
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, true, me.json(t)["passwordExpired"])
}
