package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/pkg/binder"
)

// Router returns the routes to mount under /api/user.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(m.authLimit)
		r.Post("/create", wrap(m, m.create, binder.JSON()))
		r.Post("/signin", wrap(m, m.signIn, binder.JSON()))
		r.Post("/email/verify/send", wrap(m, m.sendVerification, binder.JSON()))
		r.Post("/forgot-password", wrap(m, m.forgotPassword, binder.JSON()))
		r.Get("/{provider:google|facebook}", wrap(m, m.oauthBegin, binder.Path(chi.URLParam)))
	})

	r.Post("/email/verify/check", wrap(m, m.checkVerification, binder.JSON()))
	r.Post("/signout", wrap(m, m.signOut))
	r.Post("/reset-password", wrap(m, m.resetPassword, binder.JSON()))
	r.Post("/verify-email", wrap(m, m.confirmEmailChange, binder.JSON()))
	r.Get("/{provider:google|facebook}/callback", wrap(m, m.oauthCallback, binder.Path(chi.URLParam)))
	r.Post("/oauth/exchange", wrap(m, m.oauthExchange, binder.JSON()))

	r.Group(func(r chi.Router) {
		r.Use(m.gate.Authenticate)
		r.Get("/me", wrap(m, m.me))
		r.Put("/profile", wrap(m, m.updateProfile, binder.JSON()))
	})

	r.Group(func(r chi.Router) {
		r.Use(m.gate.RequireAdmin, m.gate.RequireFreshPassword)
		r.Get("/list", wrap(m, m.list, binder.Query()))
		r.Get("/stats", wrap(m, m.stats))
		r.Get("/export", wrap(m, m.export, binder.Query()))
		r.Delete("/{id}", wrap(m, m.deleteAccount, binder.Path(chi.URLParam)))
		r.Put("/{id}/status", wrap(m, m.updateStatus, binder.Path(chi.URLParam), binder.JSON()))
	})

	return r
}

func wrap[R any](m *Module, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](m.onError),
	)
}
