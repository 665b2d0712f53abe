package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/binder"
)

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes and ignores unknown fields", func(t *testing.T) {
		t.Parallel()
		var req signinRequest
		err := binder.JSON()(jsonRequest(`{"email":"a@example.com","password":" p ","extra":1}`), &req)
		require.NoError(t, err)
		assert.Equal(t, signinRequest{Email: "a@example.com", Password: " p "}, req)
	})

	tests := []struct {
		name    string
		req     func() *http.Request
		wantErr error
	}{
		{"missing content type", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		}, binder.ErrMissingContentType},
		{"wrong content type", func() *http.Request {
			r := jsonRequest(`{}`)
			r.Header.Set("Content-Type", "text/plain")
			return r
		}, binder.ErrUnsupportedMediaType},
		{"empty body", func() *http.Request { return jsonRequest("") }, binder.ErrFailedToParseJSON},
		{"malformed", func() *http.Request { return jsonRequest(`{"email":`) }, binder.ErrFailedToParseJSON},
		{"wrong type", func() *http.Request { return jsonRequest(`{"email":42}`) }, binder.ErrFailedToParseJSON},
		{"too large", func() *http.Request {
			return jsonRequest(`{"email":"` + strings.Repeat("a", binder.DefaultMaxJSONSize) + `"}`)
		}, binder.ErrBodyTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req signinRequest
			err := binder.JSON()(tt.req(), &req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, binder.IsBindingError(err))
		})
	}
}

type listRequest struct {
	Role   string   `query:"role"`
	Limit  int      `query:"limit"`
	Active *bool    `query:"active"`
	Tags   []string `query:"tags"`
	Skip   string
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?role=admin&limit=20&active=true&tags=a,b&tags=c&Skip=x", nil)
	var req listRequest
	require.NoError(t, binder.Query()(r, &req))
	require.NotNil(t, req.Active)
	assert.True(t, *req.Active)
	assert.Equal(t, "admin", req.Role)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, []string{"a", "b", "c"}, req.Tags)
	assert.Empty(t, req.Skip)

	bad := httptest.NewRequest(http.MethodGet, "/?limit=many", nil)
	assert.ErrorIs(t, binder.Query()(bad, &listRequest{}), binder.ErrFailedToParseQuery)
}

type statusRequest struct {
	ID     uuid.UUID `path:"id" json:"-"`
	Status string    `json:"status"`
}

func TestPath(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	params := map[string]string{"id": id.String()}
	extract := func(_ *http.Request, name string) string { return params[name] }

	r := jsonRequest(`{"status":"inactive"}`)
	var req statusRequest
	require.NoError(t, binder.Path(extract)(r, &req))
	require.NoError(t, binder.JSON()(r, &req))
	assert.Equal(t, statusRequest{ID: id, Status: "inactive"}, req)

	params["id"] = "not-a-uuid"
	assert.ErrorIs(t, binder.Path(extract)(r, &statusRequest{}), binder.ErrFailedToParsePath)
}
