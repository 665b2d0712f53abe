package sanitizer

import (
	"strings"
	"unicode/utf8"
)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// The local part is otherwise kept intact so distinct mailboxes never collapse
// into one stored identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskEmail keeps the first character of the local part and the full domain.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return email
	}

	n := utf8.RuneCountInString(local)
	if n == 1 {
		return "*@" + domain
	}

	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + strings.Repeat("*", n-1) + "@" + domain
}
