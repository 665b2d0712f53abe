// Package account mounts the /api/user HTTP surface: sign-up, sign-in,
// verification, recovery, profile, admin management and federated sign-in.
//
//	m, err := account.New(accounts, gate, cookies,
//		account.WithOAuth(oauth),
//		account.WithAuthLimit(authLimit),
//		account.WithLogger(log),
//	)
//	r.Mount("/api/user", m.Router())
package account
