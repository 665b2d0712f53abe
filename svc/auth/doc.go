// Package auth guards HTTP routes with session tokens and runs the federated
// sign-in flow.
//
// Gate resolves the session token from the "token" cookie or an
// Authorization bearer header and stores the account in the request context.
// Each failure has its own error code so clients can tell an expired session
// from a deleted account.
//
// OAuth drives the provider redirect and callback. The callback never puts
// the session token in a URL: it stores the session behind a short-lived
// one-time code that the client trades in through Exchange.
package auth
