package main

import (
	"fmt"
	"log/slog"

	"github.com/alqudsguide/backend/pkg/email"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/metrics"
	"github.com/alqudsguide/backend/svc/notify"
)

// newGateway orders the configured channels: Postmark first, SMTP as the
// fallback. Outside production the dev sender writes mail to disk when no
// real channel is configured.
func newGateway(cfg appConfig, log *slog.Logger, m *metrics.Metrics) (*notify.Gateway, error) {
	var channels []notify.Channel
	if cfg.Email.PostmarkServerToken != "" {
		s, err := email.NewPostmarkSender(cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to configure postmark: %w", err)
		}
		channels = append(channels, notify.Channel{Name: "postmark", Sender: s})
	}
	if cfg.SMTP.Enabled() {
		smtpCfg := cfg.SMTP
		if smtpCfg.From == "" {
			smtpCfg.From = cfg.Email.SenderEmail
		}
		s, err := email.NewSMTPSender(smtpCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure smtp: %w", err)
		}
		channels = append(channels, notify.Channel{Name: "smtp", Sender: s})
	}
	if len(channels) == 0 && !cfg.Env.IsProduction() {
		channels = append(channels, notify.Channel{Name: "dev", Sender: email.NewDevSender(cfg.Email.DevDir)})
	}

	gw, err := notify.New(channels,
		notify.WithTimeout(cfg.NotifyTimeout),
		notify.WithLogger(log.With(logger.Component("notify"))),
		notify.WithObserver(m.DeliveryObserver()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build notification gateway: %w", err)
	}
	return gw, nil
}
