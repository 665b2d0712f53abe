package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/validator"
)

func TestDefaultPasswordPolicy(t *testing.T) {
	t.Parallel()

	p := validator.DefaultPasswordPolicy()
	assert.Equal(t, 6, p.MinLength)
	assert.Equal(t, 64, p.MaxLength)
	assert.True(t, p.RequireLetter)
	assert.True(t, p.RequireDigit)
	assert.True(t, p.RequireSymbol)
	assert.Equal(t, 72, p.MaxBytes)
}

func TestPassword(t *testing.T) {
	t.Parallel()

	policy := validator.DefaultPasswordPolicy()

	t.Run("accepts compliant passwords", func(t *testing.T) {
		t.Parallel()
		for _, p := range []string{"Passw0rd!", "a1!aaa", "مرحبا1#", strings.Repeat("a", 62) + "1$"} {
			assert.NoError(t, validator.Apply(validator.Password("password", p, policy)...), p)
		}
	})

	tests := []struct {
		name  string
		value string
		key   string
	}{
		{"too short", "a1!", "validation.password_length"},
		{"too long", strings.Repeat("a", 63) + "1!", "validation.password_length"},
		{"no letter", "123456!", "validation.password_letter"},
		{"no digit", "abcdef!", "validation.password_digit"},
		{"no symbol", "abcdef1", "validation.password_symbol"},
		{"too many bytes", strings.Repeat("ب", 40) + "1!", "validation.password_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validator.Apply(validator.Password("password", tt.value, policy)...)
			require.Error(t, err)

			ve := validator.ExtractValidationErrors(err)
			require.Len(t, ve, 1)
			assert.Equal(t, "password", ve[0].Field)
			assert.Equal(t, tt.key, ve[0].TranslationKey)
		})
	}

	t.Run("reports every failure", func(t *testing.T) {
		t.Parallel()
		ve := validator.ExtractValidationErrors(validator.Apply(validator.Password("password", "", policy)...))
		assert.Len(t, ve, 4)
	})

	t.Run("optional classes", func(t *testing.T) {
		t.Parallel()
		relaxed := validator.PasswordPolicy{MinLength: 4, MaxLength: 10}
		assert.NoError(t, validator.Apply(validator.Password("password", "abcd", relaxed)...))
	})
}
