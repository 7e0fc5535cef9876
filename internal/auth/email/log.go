package email

import (
	"context"
	"log/slog"
)

// LogSender writes outbound mail to the log instead of delivering it. Used
// in development and whenever SMTP is not configured, so account flows keep
// working and the codes are visible in the service log.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("outbound email (log sender)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
