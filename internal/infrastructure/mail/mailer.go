// Package mail holds transactional mail delivery. Only a log-based
// implementation exists for now; swapping in a real provider is a matter of
// implementing ports.Mailer.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer writes outgoing mail to the log instead of delivering it. Used
// in development and as the default until an SMTP provider is wired.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.log.Info().
		Str("email", email).
		Str("link", link).
		Msg("password reset mail")
	return nil
}
