// Package account implements the account lifecycle: creation, password and
// federated sign-in, session resolution, password reset and expiry, profile
// changes with a pending email confirmation, and administration.
//
// Persistence goes through the Storage contract. The mongostore, pgstore and
// memstore subpackages implement it; every implementation enforces email and
// federated identity uniqueness itself so that concurrent sign-ups cannot race
// past an application-level check.
//
// Service methods return the sentinel errors declared in this package, the
// token package (ErrTokenExpired, ErrTokenInvalid), the notify package
// (ErrDeliveryFailed) or validator.ValidationErrors. Callers map them with
// errors.Is and never need to inspect storage or crypto errors.
package account
