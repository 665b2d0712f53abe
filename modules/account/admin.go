package account

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/sanitizer"
	"github.com/alqudsguide/backend/svc/account"
)

type listRequest struct {
	Role   string `query:"role"`
	Status string `query:"status"`
	Email  string `query:"email"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (r listRequest) filter() account.ListFilter {
	return account.ListFilter{
		Role:          account.Role(strings.ToLower(r.Role)),
		Status:        account.Status(strings.ToLower(r.Status)),
		EmailContains: strings.TrimSpace(r.Email),
		Limit:         r.Limit,
		Offset:        r.Offset,
	}
}

type listResponse struct {
	Users  []account.Summary `json:"users"`
	Count  int               `json:"count"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

func (m *Module) list(ctx handler.Context, req listRequest) handler.Response {
	filter := req.filter()
	accs, err := m.accounts.List(ctx, filter)
	if err != nil {
		return handler.Error(err)
	}
	filter = filter.Normalize()
	return handler.JSON(listResponse{
		Users:  account.NewSummaries(accs),
		Count:  len(accs),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

func (m *Module) stats(ctx handler.Context, _ struct{}) handler.Response {
	st, err := m.accounts.Stats(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(st)
}

var exportHeader = []string{
	"id", "email", "role", "status", "has_password", "providers",
	"pending_email", "password_changed_at", "created_at", "updated_at",
}

func (m *Module) export(ctx handler.Context, req listRequest) handler.Response {
	filter := req.filter()
	actor := currentAccount(ctx)
	m.logger.InfoContext(ctx, "accounts exported", logger.AccountID(actor.ID))

	name := "accounts-" + m.accounts.Now().UTC().Format("20060102-150405") + ".csv"
	return handler.CSV(name, exportHeader, func(write handler.RowWriter) error {
		return m.accounts.Each(ctx, filter, func(a *account.Account) error {
			return write(exportRow(a))
		})
	})
}

func exportRow(a *account.Account) []string {
	s := account.NewSummary(a)
	pending := ""
	if s.PendingEmail != nil {
		pending = *s.PendingEmail
	}
	return []string{
		s.ID.String(),
		sanitizer.CSVField(s.Email),
		string(s.Role),
		string(s.Status),
		strconv.FormatBool(s.HasPassword),
		sanitizer.CSVField(strings.Join(s.Providers, ";")),
		sanitizer.CSVField(pending),
		formatTime(s.PasswordChangedAt),
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

type idRequest struct {
	ID uuid.UUID `path:"id"`
}

func (m *Module) deleteAccount(ctx handler.Context, req idRequest) handler.Response {
	if err := m.accounts.Delete(ctx, currentAccount(ctx), req.ID); err != nil {
		return handler.Error(err)
	}
	return handler.Message("account deleted")
}

type statusRequest struct {
	ID     uuid.UUID `path:"id" json:"-"`
	Status string    `json:"status"`
}

func (m *Module) updateStatus(ctx handler.Context, req statusRequest) handler.Response {
	acc, err := m.accounts.UpdateStatus(ctx, currentAccount(ctx), req.ID, strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(userResponse{User: account.NewSummary(acc), Message: "status updated"})
}
