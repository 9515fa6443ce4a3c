// Package notification delivers verification proofs and account notices by
// email and SMS.
package notification

import (
	"context"

	"go.uber.org/zap"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("mailer", "log"))}
}

func (m *LogMailer) Send(_ context.Context, to, subject, html string) error {
	m.log.Info("Email not delivered (log mailer)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", html),
	)
	return nil
}

// LogSender writes SMS bodies to the log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("sms", "log"))}
}

func (s *LogSender) Send(_ context.Context, to, body string) error {
	s.log.Info("SMS not delivered (log sender)",
		zap.String("to", to),
		zap.String("body", body),
	)
	return nil
}
