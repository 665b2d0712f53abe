// Package templates holds the building blocks of transactional email bodies.
// Components write inline-styled HTML since most mail clients ignore stylesheets.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps children in the document shell with a heading.
func Layout(title string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head>`+
				`<body style="margin:0;padding:24px;background:#f4f1ea;font-family:Arial,sans-serif;color:#2b2b2b">`+
				`<div style="max-width:560px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px">`+
				`<h1 style="font-size:22px;margin:0 0 16px">%s</h1>`,
			templ.EscapeString(title), templ.EscapeString(title)); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></body></html>`)
		return err
	})
}

// Text renders an escaped paragraph.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p style="font-size:15px;line-height:1.5;margin:0 0 16px">%s</p>`, templ.EscapeString(s))
		return err
	})
}

// Muted renders secondary text such as expiry notes.
func Muted(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p style="font-size:13px;color:#777777;margin:16px 0 0">%s</p>`, templ.EscapeString(s))
		return err
	})
}

// Button renders a call-to-action link. Unsafe URL schemes are replaced by templ's sanitizer.
func Button(label, href string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		url := templ.EscapeString(string(templ.URL(href)))
		_, err := fmt.Fprintf(w,
			`<p style="margin:24px 0"><a href="%s" style="display:inline-block;background:#8a5a2b;color:#ffffff;`+
				`text-decoration:none;padding:12px 24px;border-radius:6px">%s</a></p>`+
				`<p style="font-size:12px;color:#777777;word-break:break-all">%s</p>`,
			url, templ.EscapeString(label), url)
		return err
	})
}
