package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alqudsguide/backend/svc/password"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := password.New(password.WithCost(bcrypt.MaxCost + 1))
	assert.ErrorIs(t, err, password.ErrInvalidCost)

	_, err = password.New(password.WithCost(1))
	assert.ErrorIs(t, err, password.ErrInvalidCost)
}

func TestDefaultCost(t *testing.T) {
	t.Parallel()

	h, err := password.New()
	require.NoError(t, err)

	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestHashAndCompare(t *testing.T) {
	t.Parallel()

	h, err := password.New(password.WithCost(bcrypt.MinCost))
	require.NoError(t, err)

	passwords := []string{"Passw0rd!", "a1!", "with spaces 1$", "юникод-1!", strings.Repeat("x", 72)}

	for _, p := range passwords {
		hash, err := h.Hash(p)
		require.NoError(t, err, p)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Compare(p, hash), "round trip must verify: %q", p)
		assert.False(t, h.Compare(p+"x", hash), "different password must not verify: %q", p)
	}

	t.Run("salted", func(t *testing.T) {
		t.Parallel()
		a, err := h.Hash("Passw0rd!")
		require.NoError(t, err)
		b, err := h.Hash("Passw0rd!")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("empty inputs", func(t *testing.T) {
		t.Parallel()
		_, err := h.Hash("")
		assert.ErrorIs(t, err, password.ErrEmptyPassword)
		assert.False(t, h.Compare("Passw0rd!", ""))
		assert.False(t, h.Compare("", "$2a$04$abc"))
	})

	t.Run("too long", func(t *testing.T) {
		t.Parallel()
		_, err := h.Hash(strings.Repeat("x", 73))
		assert.ErrorIs(t, err, password.ErrTooLong)
	})
}
