package token

import (
	gjwt "github.com/golang-jwt/jwt/v5"
)

// Purpose names the single operation an action token may be used for.
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email_verify"
	PurposePasswordReset Purpose = "password_reset"
	PurposeEmailChange   Purpose = "email_change"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeEmailVerify, PurposePasswordReset, PurposeEmailChange:
		return true
	}
	return false
}

const (
	typeSession = "session"
	typeAction  = "action"
)

// SessionClaims identifies an authenticated account. Subject holds the account id.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	gjwt.RegisteredClaims
}

// ActionClaims is the payload of an action token. Which fields are required
// depends on Purpose:
//
//	email_verify:   Email
//	password_reset: AccountID, Email
//	email_change:   AccountID, NewEmail
type ActionClaims struct {
	Purpose   Purpose `json:"purpose"`
	AccountID string  `json:"aid,omitempty"`
	Email     string  `json:"email,omitempty"`
	NewEmail  string  `json:"new_email,omitempty"`
	Type      string  `json:"typ"`
	gjwt.RegisteredClaims
}

func (c ActionClaims) complete() bool {
	switch c.Purpose {
	case PurposeEmailVerify:
		return c.Email != ""
	case PurposePasswordReset:
		return c.AccountID != "" && c.Email != ""
	case PurposeEmailChange:
		return c.AccountID != "" && c.NewEmail != ""
	}
	return false
}
