package account

import (
	"net/http"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/svc/account"
)

type emailRequest struct {
	Email string `json:"email"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type deliveryResponse struct {
	Message string `json:"message"`
	Channel string `json:"channel"`
}

func (m *Module) sendVerification(ctx handler.Context, req emailRequest) handler.Response {
	res, err := m.accounts.SendVerification(ctx, req.Email)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(deliveryResponse{
		Message: "verification email sent",
		Channel: res.Channel,
	})
}

func (m *Module) checkVerification(ctx handler.Context, req tokenRequest) handler.Response {
	email, err := m.accounts.CheckVerification(ctx, req.Token)
	if err != nil {
		return handler.Error(tokenError(err, http.StatusUnauthorized))
	}
	return handler.Created(map[string]string{"email": email})
}

func (m *Module) confirmEmailChange(ctx handler.Context, req tokenRequest) handler.Response {
	acc, err := m.accounts.ConfirmEmailChange(ctx, req.Token)
	if err != nil {
		return handler.Error(tokenError(err, http.StatusBadRequest))
	}
	return handler.JSON(userResponse{User: account.NewSummary(acc)})
}

type userResponse struct {
	User    account.Summary `json:"user"`
	Message string          `json:"message,omitempty"`
}
