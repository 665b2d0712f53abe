// Package pgstore implements account.Storage on PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alqudsguide/backend/pkg/pg"
	"github.com/alqudsguide/backend/svc/account"
)

const (
	emailConstraint    = "accounts_email_unique"
	identityConstraint = "account_identities_pkey"
)

// Store keeps accounts in the accounts and account_identities tables.
type Store struct {
	pool *pgxpool.Pool
}

var _ account.Storage = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectAccount = `
SELECT a.id, a.email, a.password_hash, a.role, a.status, a.pending_email, a.pending_email_token,
       a.security_settings, a.password_changed_at, a.created_at, a.updated_at,
       COALESCE((
           SELECT json_agg(json_build_object('provider', i.provider, 'subject', i.subject, 'linkedAt', i.linked_at)
                           ORDER BY i.linked_at, i.provider)
           FROM account_identities i WHERE i.account_id = a.id
       ), '[]'::json)
FROM accounts a`

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc                                                 account.Account
		email, hash, pendingEmail, pendingToken, role, stat *string
	)
	err := row.Scan(
		&acc.ID, &email, &hash, &role, &stat, &pendingEmail, &pendingToken,
		&acc.SecuritySettings, &acc.PasswordChangedAt, &acc.CreatedAt, &acc.UpdatedAt,
		&acc.FederatedIdentities,
	)
	if err != nil {
		return nil, err
	}
	acc.Email = deref(email)
	acc.PasswordHash = deref(hash)
	acc.Role = account.Role(deref(role))
	acc.Status = account.Status(deref(stat))
	acc.PendingEmail = deref(pendingEmail)
	acc.PendingEmailToken = deref(pendingToken)
	acc.PasswordChangedAt = acc.PasswordChangedAt.UTC()
	acc.CreatedAt = acc.CreatedAt.UTC()
	acc.UpdatedAt = acc.UpdatedAt.UTC()
	if len(acc.FederatedIdentities) == 0 {
		acc.FederatedIdentities = nil
	}
	for i := range acc.FederatedIdentities {
		acc.FederatedIdentities[i].LinkedAt = acc.FederatedIdentities[i].LinkedAt.UTC()
	}
	return &acc, nil
}

func (s *Store) findOne(ctx context.Context, q querier, where string, args ...any) (*account.Account, error) {
	acc, err := scanAccount(q.QueryRow(ctx, selectAccount+" WHERE "+where, args...))
	if err != nil {
		return nil, wrapError(err)
	}
	return acc, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.findOne(ctx, s.pool, "a.id = $1", id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	if email == "" {
		return nil, account.ErrAccountNotFound
	}
	return s.findOne(ctx, s.pool, "a.email = $1", email)
}

func (s *Store) FindByFederatedIdentity(ctx context.Context, provider, subject string) (*account.Account, error) {
	return s.findOne(ctx, s.pool,
		"a.id = (SELECT account_id FROM account_identities WHERE provider = $1 AND subject = $2)",
		provider, subject)
}

func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO accounts (id, email, password_hash, role, status, pending_email, pending_email_token,
                      security_settings, password_changed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			acc.ID, nullable(acc.Email), nullable(acc.PasswordHash), string(acc.Role), string(acc.Status),
			nullable(acc.PendingEmail), nullable(acc.PendingEmailToken),
			acc.SecuritySettings, acc.PasswordChangedAt, acc.CreatedAt, acc.UpdatedAt,
		)
		if err != nil {
			return wrapError(err)
		}
		for _, fi := range acc.FederatedIdentities {
			if err := insertIdentity(ctx, tx, acc.ID, fi); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertIdentity(ctx context.Context, tx pgx.Tx, id uuid.UUID, fi account.FederatedIdentity) error {
	linkedAt := fi.LinkedAt
	if linkedAt.IsZero() {
		linkedAt = time.Now().UTC()
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO account_identities (provider, subject, account_id, linked_at) VALUES ($1, $2, $3, $4)`,
		fi.Provider, fi.Subject, id, linkedAt,
	)
	return wrapError(err)
}

// Update applies upd inside one transaction and returns the new state.
func (s *Store) Update(ctx context.Context, id uuid.UUID, upd account.Update) (*account.Account, error) {
	var out *account.Account
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		sets, args := buildSet(upd)
		args = append(args, id)
		query := "UPDATE accounts SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
		if len(sets) == 0 {
			query = "SELECT 1 FROM accounts WHERE id = $1 FOR UPDATE"
			args = []any{id}
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return wrapError(err)
		}
		if tag.RowsAffected() == 0 {
			return account.ErrAccountNotFound
		}

		if fi := upd.AddIdentity; fi != nil {
			var owner uuid.UUID
			err := tx.QueryRow(ctx,
				`SELECT account_id FROM account_identities WHERE provider = $1 AND subject = $2`,
				fi.Provider, fi.Subject,
			).Scan(&owner)
			switch {
			case err == nil && owner != id:
				return account.ErrIdentityLinked
			case errors.Is(err, pgx.ErrNoRows):
				if err := insertIdentity(ctx, tx, id, *fi); err != nil {
					return err
				}
			case err != nil:
				return wrapError(err)
			}
		}

		out, err = s.findOne(ctx, tx, "a.id = $1", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildSet(upd account.Update) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Email != nil {
		add("email", nullable(*upd.Email))
	}
	if upd.PasswordHash != nil {
		add("password_hash", nullable(*upd.PasswordHash))
	}
	if upd.PasswordChangedAt != nil {
		add("password_changed_at", *upd.PasswordChangedAt)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}
	if upd.SecuritySettings != nil {
		add("security_settings", *upd.SecuritySettings)
	}
	switch {
	case upd.SetPending != nil:
		add("pending_email", upd.SetPending.Email)
		add("pending_email_token", upd.SetPending.TokenDigest)
	case upd.ClearPending:
		sets = append(sets, "pending_email = NULL", "pending_email_token = NULL")
	}
	if !upd.UpdatedAt.IsZero() {
		add("updated_at", upd.UpdatedAt)
	}
	return sets, args
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return wrapError(err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	filter = filter.Normalize()
	where, args := buildWhere(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("%s%s ORDER BY a.created_at DESC, a.id LIMIT $%d OFFSET $%d",
		selectAccount, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	out := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, wrapError(err)
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}
	return out, nil
}

func buildWhere(filter account.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Role == account.RoleUser {
		conds = append(conds, "a.role IN ('user', '')")
	} else if filter.Role != "" {
		args = append(args, string(filter.Role))
		conds = append(conds, fmt.Sprintf("a.role = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.EmailContains != "" {
		args = append(args, "%"+escapeLike(filter.EmailContains)+"%")
		conds = append(conds, fmt.Sprintf("a.email ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsNotFoundError(err):
		return account.ErrAccountNotFound
	case pg.IsDuplicateKeyError(err):
		if pg.ConstraintName(err) == identityConstraint {
			return account.ErrIdentityLinked
		}
		if pg.ConstraintName(err) == emailConstraint {
			return account.ErrEmailTaken
		}
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
