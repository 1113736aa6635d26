// Package mailer turns queued mail events into outbound messages. The
// transport is pluggable; the shipped sender logs the rendered mail, which is
// what dev and test environments run.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Mail is a rendered outbound message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered mail. Implementations are the SMTP-like
// transport boundary.
type Sender interface {
	Send(ctx context.Context, mail Mail) error
}

// LogSender writes the mail to the structured log instead of a wire. Default
// for environments without a mail relay.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, mail Mail) error {
	s.Logger.Info("mail dispatched",
		slog.String("to", mail.To),
		slog.String("subject", mail.Subject),
		slog.String("body", mail.Body),
	)
	return nil
}

// Renderer builds the user-facing links from the public base URL. The token
// rides as a query parameter, matching what the redeem endpoints expect.
type Renderer struct {
	BaseURL string
}

func (r *Renderer) VerificationMail(email, token string) Mail {
	link := r.link("/auth/verify", token)
	return Mail{
		To:      email,
		Subject: "Confirm your registration",
		Body: "Welcome! Follow this link to confirm your registration:\n\n" +
			link + "\n\nThe link expires shortly; if it has, just sign up again.",
	}
}

func (r *Renderer) ResetMail(email, token string) Mail {
	link := r.link("/auth/reset/confirm", token)
	return Mail{
		To:      email,
		Subject: "Reset your password",
		Body: "A password reset was requested for this address. Follow this " +
			"link to choose a new password:\n\n" + link +
			"\n\nIf you did not request this, ignore this mail.",
	}
}

func (r *Renderer) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", r.BaseURL, path, url.QueryEscape(token))
}
