// Package cookie sets, reads and clears HTTP cookies with one shared set of
// attributes, so a cookie is always deleted with the Path, Domain, Secure and
// SameSite it was written with.
//
//	m, err := cookie.New(cfg.Secrets, cookie.ForEnvironment(env)...)
//	m.Set(w, "token", tok, cookie.WithMaxAge(int(ttl.Seconds())))
//	m.Delete(w, "token")
//
// Signed cookies carry an HMAC-SHA256 signature. Several secrets may be
// configured; the first signs and all of them verify, which allows rotation.
package cookie
