package sanitizer

import "strings"

// CSVField prefixes values that spreadsheet applications would evaluate as a
// formula with a single quote.
func CSVField(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return strings.ReplaceAll(value, "\x00", "")
}
