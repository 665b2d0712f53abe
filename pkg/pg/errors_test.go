package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/alqudsguide/backend/pkg/pg"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})
	check := &pgconn.PgError{Code: "23514", ConstraintName: "accounts_pending_pair"}

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(check))
	assert.Equal(t, "accounts_email_key", pg.ConstraintName(dup))
	assert.True(t, pg.IsCheckViolationError(check))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.Empty(t, pg.ConstraintName(errors.New("plain")))
}
