// Package notify is the notification gateway used by the account lifecycle.
//
// A Gateway tries its channels in order (primary first, then fallbacks). Each
// attempt is bounded by a per-attempt timeout and the first channel that
// accepts the message wins:
//
//	gw, err := notify.New(
//	    []notify.Channel{
//	        {Name: "postmark", Sender: postmarkSender},
//	        {Name: "smtp", Sender: smtpSender},
//	    },
//	    notify.WithTimeout(10*time.Second),
//	    notify.WithLogger(log),
//	)
//	res, err := gw.Send(ctx, "user@example.com", "Subject", html)
//
// When every channel fails Send returns ErrDeliveryFailed joined with the
// per-channel errors.
package notify
