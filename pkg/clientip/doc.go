// Package clientip resolves the client address used for rate limiting.
//
// Forwarding headers are only believed when configured: a Resolver with no
// options uses RemoteAddr alone. Behind N reverse proxies set
// WithTrustedProxies(N) to take the Nth address from the right of
// X-Forwarded-For, or WithTrustedHeader for a CDN header such as
// CF-Connecting-IP.
package clientip
