package account

import (
	"net/http"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/svc/account"
)

// The same reply is used whether or not the email is registered.
const forgotPasswordReply = "if an account exists for this email, a reset link has been sent"

func (m *Module) forgotPassword(ctx handler.Context, req emailRequest) handler.Response {
	if _, err := m.accounts.ForgotPassword(ctx, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.Message(forgotPasswordReply)
}

func (m *Module) resetPassword(ctx handler.Context, req account.ResetInput) handler.Response {
	if err := m.accounts.ResetPassword(ctx, req); err != nil {
		return handler.Error(tokenError(err, http.StatusBadRequest))
	}
	return handler.Message("password has been reset, please sign in")
}
