package account

import (
	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
)

type sessionResponse struct {
	User  account.Summary `json:"user"`
	Token string          `json:"token"`
}

func newSessionResponse(sess *account.Session) sessionResponse {
	return sessionResponse{User: account.NewSummary(sess.Account), Token: sess.Token}
}

func (m *Module) create(ctx handler.Context, req account.CreateInput) handler.Response {
	sess, err := m.accounts.Create(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	m.setSession(ctx.ResponseWriter(), sess)
	return handler.Created(newSessionResponse(sess))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m *Module) signIn(ctx handler.Context, req signInRequest) handler.Response {
	sess, err := m.accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}
	m.setSession(ctx.ResponseWriter(), sess)
	return handler.JSON(newSessionResponse(sess))
}

// signOut clears the cookie whether or not the session is still valid.
func (m *Module) signOut(ctx handler.Context, _ struct{}) handler.Response {
	m.clearSession(ctx.ResponseWriter())
	return handler.Message("signed out")
}

type meResponse struct {
	User            account.Summary `json:"user"`
	PasswordExpired bool            `json:"passwordExpired"`
}

func (m *Module) me(ctx handler.Context, _ struct{}) handler.Response {
	acc := currentAccount(ctx)
	return handler.JSON(meResponse{
		User:            account.NewSummary(acc),
		PasswordExpired: auth.PasswordExpiredFromContext(ctx),
	})
}

type providerRequest struct {
	Provider string `path:"provider"`
}

func (m *Module) oauthBegin(ctx handler.Context, req providerRequest) handler.Response {
	if m.oauth == nil || !m.oauth.Enabled(req.Provider) {
		return handler.Redirect(m.oauthFailureURL(req.Provider, auth.ErrUnknownProvider))
	}
	target, err := m.oauth.Begin(ctx, ctx.ResponseWriter(), req.Provider)
	if err != nil {
		m.logger.ErrorContext(ctx, "oauth begin failed", oauthAttrs(req.Provider, err)...)
		return handler.Redirect(m.oauthFailureURL(req.Provider, err))
	}
	return handler.Redirect(target)
}

func (m *Module) oauthCallback(ctx handler.Context, req providerRequest) handler.Response {
	if m.oauth == nil || !m.oauth.Enabled(req.Provider) {
		return handler.Redirect(m.oauthFailureURL(req.Provider, auth.ErrUnknownProvider))
	}
	done, err := m.oauth.Complete(ctx.ResponseWriter(), ctx.Request(), req.Provider)
	if err != nil {
		m.logger.WarnContext(ctx, "oauth callback failed", oauthAttrs(req.Provider, err)...)
		return handler.Redirect(m.oauthFailureURL(req.Provider, err))
	}
	m.setSession(ctx.ResponseWriter(), done.Session)
	return handler.Redirect(m.clientURL(m.cfg.OAuthSuccessPath, "code", done.Code))
}

type exchangeRequest struct {
	Code string `json:"code"`
}

func (m *Module) oauthExchange(ctx handler.Context, req exchangeRequest) handler.Response {
	if m.oauth == nil {
		return handler.Error(auth.ErrInvalidExchange)
	}
	sess, err := m.oauth.Exchange(ctx, req.Code)
	if err != nil {
		return handler.Error(err)
	}
	m.setSession(ctx.ResponseWriter(), sess)
	return handler.JSON(newSessionResponse(sess))
}
