// Package environment resolves the deployment environment the server runs in
// and carries it through request contexts and structured logs.
//
// The environment drives security-sensitive defaults elsewhere in the service:
// session cookies are marked Secure with SameSite=None only in production, and
// error responses never include internal details outside development.
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	if env.IsProduction() {
//	    // ...
//	}
package environment
