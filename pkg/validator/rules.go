package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: newError(field, "field is required", "validation.required", nil),
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: newError(field, fmt.Sprintf("must be at most %d characters long", max),
			"validation.max_length", map[string]any{"max": max}),
	}
}

// ValidEmail validates an address of the form local@domain.tld.
// Display names ("Name <a@b.c>") are rejected.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			value = strings.TrimSpace(value)
			if value == "" || len(value) > 254 {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value || addr.Name != "" {
				return false
			}
			local, domain, ok := strings.Cut(value, "@")
			if !ok || local == "" {
				return false
			}
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: newError(field, "must be a valid email address", "validation.email", nil),
	}
}

// OneOf validates that value is one of allowed.
func OneOf[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool {
			for _, a := range allowed {
				if value == a {
					return true
				}
			}
			return false
		},
		Error: newError(field, fmt.Sprintf("must be one of: %v", allowed),
			"validation.in_list", map[string]any{"allowed_values": allowed}),
	}
}

// EqualString validates that value matches other, e.g. a confirmation field.
func EqualString(field, value, other, otherField string) Rule {
	return Rule{
		Check: func() bool { return value == other },
		Error: newError(field, fmt.Sprintf("must match %s", otherField),
			"validation.match", map[string]any{"other": otherField}),
	}
}
