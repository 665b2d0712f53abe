package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alqudsguide/backend/pkg/email"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/sanitizer"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// Notifier is what the account lifecycle depends on.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) (Result, error)
}

// Result reports which channel accepted the message.
type Result struct {
	Delivered bool   `json:"delivered"`
	Channel   string `json:"channel"`
}

// Channel is a named transport.
type Channel struct {
	Name   string
	Sender email.Sender
}

// Observer is notified after each attempt.
type Observer func(channel string, err error, took time.Duration)

// Gateway delivers through an ordered list of channels.
type Gateway struct {
	channels []Channel
	timeout  time.Duration
	logger   *slog.Logger
	observe  Observer
}

type Option func(*Gateway)

// WithTimeout sets the per-attempt timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithObserver registers a callback invoked after every attempt.
func WithObserver(o Observer) Option {
	return func(g *Gateway) { g.observe = o }
}

// New builds a gateway. The first channel is the primary.
func New(channels []Channel, opts ...Option) (*Gateway, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	for _, c := range channels {
		if c.Name == "" || c.Sender == nil {
			return nil, ErrInvalidChannel
		}
	}

	g := &Gateway{
		channels: append([]Channel(nil), channels...),
		timeout:  DefaultTimeout,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Channels returns the channel names in delivery order.
func (g *Gateway) Channels() []string {
	names := make([]string, len(g.channels))
	for i, c := range g.channels {
		names[i] = c.Name
	}
	return names
}

// Send delivers html to the recipient through the first channel that accepts it.
func (g *Gateway) Send(ctx context.Context, to, subject, html string) (Result, error) {
	msg := email.Message{To: to, Subject: subject, HTML: html}
	if err := msg.Validate(); err != nil {
		return Result{}, errors.Join(ErrDeliveryFailed, err)
	}

	var errs []error
	for _, ch := range g.channels {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		took, err := g.attempt(ctx, ch, msg)
		if g.observe != nil {
			g.observe(ch.Name, err, took)
		}
		if err == nil {
			g.logger.DebugContext(ctx, "notification delivered",
				logger.Channel(ch.Name),
				logger.Email(sanitizer.MaskEmail(to)),
				logger.Duration(took),
			)
			return Result{Delivered: true, Channel: ch.Name}, nil
		}

		g.logger.WarnContext(ctx, "notification channel failed",
			logger.Channel(ch.Name),
			logger.Email(sanitizer.MaskEmail(to)),
			logger.Duration(took),
			logger.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
	}

	g.logger.ErrorContext(ctx, "notification not delivered",
		logger.Email(sanitizer.MaskEmail(to)),
		slog.Int("attempts", len(errs)),
	)
	return Result{}, errors.Join(append([]error{ErrDeliveryFailed}, errs...)...)
}

func (g *Gateway) attempt(ctx context.Context, ch Channel, msg email.Message) (time.Duration, error) {
	actx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	// A nil error means the message was accepted, even past the deadline.
	err := ch.Sender.SendEmail(actx, msg)
	return time.Since(start), err
}
