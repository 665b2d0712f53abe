// Package email provides the transports the notification gateway delivers through.
//
// Every transport implements Sender:
//   - PostmarkSender delivers through Postmark's transactional API
//   - SMTPSender delivers through any SMTP relay
//   - DevSender writes messages to disk for local development
//
// All senders validate the Message before sending and report failures wrapped
// in ErrFailedToSendEmail so callers can check them with errors.Is.
//
// HTML bodies are usually produced from templ components:
//
//	html, err := templates.Render(ctx, component)
//	if err != nil {
//	    return err
//	}
//	err = sender.SendEmail(ctx, email.Message{To: to, Subject: subject, HTML: html})
package email
