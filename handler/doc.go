// Package handler turns typed functions into http.HandlerFuncs.
//
// A handler receives a Context and a request value filled by binders, and
// returns a Response:
//
//	func signIn(ctx handler.Context, req SignInRequest) handler.Response {
//	    sess, err := svc.SignIn(ctx, req.Email, req.Password)
//	    if err != nil {
//	        return handler.Error(err)
//	    }
//	    return handler.JSON(sess)
//	}
//
//	r.Post("/signin", handler.Wrap(signIn,
//	    handler.WithBinders[handler.Context, SignInRequest](binder.JSON()),
//	    handler.WithErrorHandler[handler.Context, SignInRequest](errorHandler),
//	))
//
// Binding failures and Error responses reach the ErrorHandler, which writes
// the JSON envelope {"error": {"code", "message", "details"}}. NewErrorHandler
// classifies validation errors, binder errors and HTTPError values itself and
// consults ErrorMappers for domain errors. Anything unclassified is a 500
// carrying only the request id.
package handler
