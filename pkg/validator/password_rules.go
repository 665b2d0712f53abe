package validator

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// PasswordPolicy is the complexity rule set applied whenever a password is set.
type PasswordPolicy struct {
	MinLength     int
	MaxLength     int
	MaxBytes      int // bcrypt ignores input past 72 bytes
	RequireLetter bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy requires 6-64 characters with at least one letter,
// one digit and one symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     6,
		MaxLength:     64,
		MaxBytes:      72,
		RequireLetter: true,
		RequireDigit:  true,
		RequireSymbol: true,
	}
}

// Password returns the rules for policy. Length is counted in characters, not bytes.
func Password(field, value string, policy PasswordPolicy) []Rule {
	rules := []Rule{PasswordLength(field, value, policy.MinLength, policy.MaxLength)}
	if policy.MaxBytes > 0 {
		rules = append(rules, PasswordBytes(field, value, policy.MaxBytes))
	}
	if policy.RequireLetter {
		rules = append(rules, PasswordLetter(field, value))
	}
	if policy.RequireDigit {
		rules = append(rules, PasswordDigit(field, value))
	}
	if policy.RequireSymbol {
		rules = append(rules, PasswordSymbol(field, value))
	}
	return rules
}

func PasswordLength(field, value string, min, max int) Rule {
	return Rule{
		Check: func() bool {
			n := utf8.RuneCountInString(value)
			return n >= min && n <= max
		},
		Error: newError(field, fmt.Sprintf("password must be %d-%d characters long", min, max),
			"validation.password_length", map[string]any{"min_length": min, "max_length": max}),
	}
}

func PasswordBytes(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: newError(field, fmt.Sprintf("password must be at most %d bytes when encoded", max),
			"validation.password_bytes", map[string]any{"max_bytes": max}),
	}
}

func PasswordLetter(field, value string) Rule {
	return Rule{
		Check: func() bool { return containsRune(value, unicode.IsLetter) },
		Error: newError(field, "password must contain at least one letter", "validation.password_letter", nil),
	}
}

func PasswordDigit(field, value string) Rule {
	return Rule{
		Check: func() bool { return containsRune(value, unicode.IsDigit) },
		Error: newError(field, "password must contain at least one digit", "validation.password_digit", nil),
	}
}

func PasswordSymbol(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return containsRune(value, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		},
		Error: newError(field, "password must contain at least one symbol", "validation.password_symbol", nil),
	}
}

func containsRune(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}
	return false
}
