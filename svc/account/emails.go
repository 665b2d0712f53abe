package account

import (
	"context"

	"github.com/a-h/templ"

	"github.com/alqudsguide/backend/pkg/email/templates"
)

type message struct {
	tag     string
	subject string
	body    templ.Component
}

func (m message) render(ctx context.Context) (string, error) {
	return templates.Render(ctx, m.body)
}

func verificationEmail(link string) message {
	const subject = "Verify your email address"
	return message{
		tag:     "email_verify",
		subject: subject,
		body: templates.Layout(subject,
			templates.Text("Welcome to the Alquds Virtual Guide. Confirm your email address to continue creating your account."),
			templates.Button("Verify email", link),
			templates.Muted("This link expires in 15 minutes. If you did not request it, you can ignore this email."),
		),
	}
}

func resetPasswordEmail(link string) message {
	const subject = "Reset your password"
	return message{
		tag:     "password_reset",
		subject: subject,
		body: templates.Layout(subject,
			templates.Text("We received a request to reset the password of your Alquds Virtual Guide account."),
			templates.Button("Choose a new password", link),
			templates.Muted("This link expires in 15 minutes and works once. If you did not request a reset, your password is unchanged."),
		),
	}
}

func emailChangeEmail(link, newEmail string) message {
	const subject = "Confirm your new email address"
	return message{
		tag:     "email_change",
		subject: subject,
		body: templates.Layout(subject,
			templates.Text("Confirm that "+newEmail+" should become the email address of your Alquds Virtual Guide account."),
			templates.Button("Confirm email change", link),
			templates.Muted("This link expires in 15 minutes. Until you confirm, your current email address stays active."),
		),
	}
}
