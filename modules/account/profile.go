package account

import (
	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/svc/account"
)

type profileResponse struct {
	User               account.Summary `json:"user"`
	PasswordChanged    bool            `json:"passwordChanged"`
	EmailChangePending bool            `json:"emailChangePending"`
	Message            string          `json:"message"`
}

func (m *Module) updateProfile(ctx handler.Context, req account.ProfileInput) handler.Response {
	acc := currentAccount(ctx)
	res, err := m.accounts.UpdateProfile(ctx, acc.ID, req)
	if err != nil {
		return handler.Error(err)
	}

	msg := "profile updated"
	switch {
	case res.EmailRequested && res.PasswordChanged:
		msg = "password updated, check your new email to confirm the change"
	case res.EmailRequested:
		msg = "check your new email to confirm the change"
	case !res.PasswordChanged:
		msg = "no changes"
	}

	return handler.JSON(profileResponse{
		User:               account.NewSummary(res.Account),
		PasswordChanged:    res.PasswordChanged,
		EmailChangePending: res.EmailRequested,
		Message:            msg,
	})
}
