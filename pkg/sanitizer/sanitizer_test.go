package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alqudsguide/backend/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace and converts to lowercase", "  USER@EXAMPLE.COM  ", "user@example.com"},
		{"keeps dots in local part", "first..last@example.com", "first..last@example.com"},
		{"handles normal email", "user@example.com", "user@example.com"},
		{"handles invalid email format", "Invalid-Email", "invalid-email"},
		{"handles empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"masks normal email", "user@example.com", "u***@example.com"},
		{"masks single character local part", "a@example.com", "*@example.com"},
		{"handles email with spaces", "  testuser@domain.org  ", "t*******@domain.org"},
		{"handles multibyte local part", "سلام@example.com", "س***@example.com"},
		{"handles invalid email format", "invalid-email", "invalid-email"},
		{"handles empty local part", "@example.com", "@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.MaskEmail(tt.input))
		})
	}
}

func TestCSVField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", sanitizer.CSVField(""))
	assert.Equal(t, "user@example.com", sanitizer.CSVField("user@example.com"))
	assert.Equal(t, "'=HYPERLINK(\"x\")", sanitizer.CSVField("=HYPERLINK(\"x\")"))
	assert.Equal(t, "'+1", sanitizer.CSVField("+1"))
	assert.Equal(t, "'-1", sanitizer.CSVField("-1"))
	assert.Equal(t, "'@SUM(A1)", sanitizer.CSVField("@SUM(A1)"))
}
