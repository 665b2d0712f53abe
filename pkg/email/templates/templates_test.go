package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/email/templates"
)

func TestRender(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.Layout("Reset <password>",
		templates.Text("Hello & welcome"),
		templates.Button("Reset", "https://example.com/reset?token=a.b.c"),
		templates.Muted("Expires in 15 minutes"),
	))
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Reset &lt;password&gt;</title>")
	assert.Contains(t, html, "Hello &amp; welcome")
	assert.Contains(t, html, `href="https://example.com/reset?token=a.b.c"`)
	assert.Contains(t, html, "Expires in 15 minutes")
}

func TestButtonRejectsUnsafeScheme(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.Button("Click", "javascript:alert(1)"))
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:")
}
