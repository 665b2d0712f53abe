// Package token issues and verifies the two kinds of signed tokens the
// account system relies on.
//
// Session tokens prove an authenticated identity and travel in the "token"
// cookie or an Authorization bearer header. Action tokens carry a single
// out-of-band intent (email verification, password reset, email change
// confirmation) and are only accepted by the operation matching their purpose.
//
// The two kinds are signed with different secrets, so a leaked action secret
// cannot mint sessions, and each kind carries a "typ" claim that is checked on
// verification. Verification reports ErrTokenExpired separately from
// ErrTokenInvalid so callers can offer "request a new link" instead of
// "this link is broken".
package token
