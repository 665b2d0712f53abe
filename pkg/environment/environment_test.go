package environment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want environment.Environment
	}{
		{"production", environment.Production},
		{"PROD", environment.Production},
		{" stage ", environment.Staging},
		{"staging", environment.Staging},
		{"dev", environment.Development},
		{"", environment.Development},
		{"qa", environment.Development},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, environment.Parse(tt.in))
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	t.Parallel()

	var env environment.Environment
	require.NoError(t, env.UnmarshalText([]byte("prod")))
	assert.True(t, env.IsProduction())
	assert.False(t, env.IsDevelopment())
}

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("defaults to development", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, environment.Development, environment.FromContext(context.Background()))
		assert.False(t, environment.IsProduction(context.Background()))
	})

	t.Run("middleware sets environment", func(t *testing.T) {
		t.Parallel()
		var got environment.Environment
		h := environment.Middleware(environment.Production)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = environment.FromContext(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, environment.Production, got)
	})

	t.Run("logger extractor", func(t *testing.T) {
		t.Parallel()
		extract := environment.LoggerExtractor()

		_, ok := extract(context.Background())
		assert.False(t, ok)

		attr, ok := extract(environment.WithContext(context.Background(), environment.Staging))
		require.True(t, ok)
		assert.Equal(t, "env", attr.Key)
		assert.Equal(t, "staging", attr.Value.String())
	})
}
