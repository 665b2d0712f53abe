// Package jwt signs and validates HS256 JSON Web Tokens and extracts them from
// HTTP requests.
//
// Service is a thin layer over github.com/golang-jwt/jwt/v5 that pins the
// signing method, requires an expiration claim and collapses the library's
// error zoo into two outcomes callers can act on: ErrExpiredToken (the token
// was genuine but is too old) and ErrInvalidToken (anything else).
//
//	svc, _ := jwt.New([]byte(secret), jwt.WithIssuer("alquds-guide"))
//	tok, _ := svc.Generate(claims)
//	err := svc.Parse(tok, &claims)
//	if errors.Is(err, jwt.ErrExpiredToken) { ... }
//
// Extractors pull the raw token out of a request: CookieTokenExtractor,
// BearerTokenExtractor and FirstOf to combine them in precedence order.
package jwt
