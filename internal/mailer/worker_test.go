package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edustack/coursegate/internal/events"
)

type captureSender struct {
	mails []Mail
	fail  error
}

func (s *captureSender) Send(_ context.Context, mail Mail) error {
	if s.fail != nil {
		return s.fail
	}
	s.mails = append(s.mails, mail)
	return nil
}

func newWorker(sender Sender) *Worker {
	return &Worker{
		Renderer: &Renderer{BaseURL: "https://edu.example.com"},
		Sender:   sender,
		Logger:   slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
}

func TestHandleVerification(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	w := newWorker(sender)

	body, err := json.Marshal(events.VerificationMessage{Email: "ada@example.com", Token: "t-1"})
	require.NoError(t, err)

	require.NoError(t, w.HandleVerification(context.Background(), body))
	require.Len(t, sender.mails, 1)

	mail := sender.mails[0]
	require.Equal(t, "ada@example.com", mail.To)
	require.Contains(t, mail.Body, "https://edu.example.com/auth/verify?token=t-1")
}

func TestHandleReset(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	w := newWorker(sender)

	body, err := json.Marshal(events.ResetMessage{Email: "ada@example.com", Token: "t-2"})
	require.NoError(t, err)

	require.NoError(t, w.HandleReset(context.Background(), body))
	require.Len(t, sender.mails, 1)
	require.Contains(t, sender.mails[0].Body, "/auth/reset/confirm?token=t-2")
}

func TestTokenIsQueryEscaped(t *testing.T) {
	t.Parallel()

	r := &Renderer{BaseURL: "https://edu.example.com"}
	mail := r.VerificationMail("ada@example.com", "a b&c")
	require.Contains(t, mail.Body, "token=a+b%26c")
	require.False(t, strings.Contains(mail.Body, "token=a b&c"))
}

func TestMalformedEventsAreDroppedNotRequeued(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	w := newWorker(sender)

	require.NoError(t, w.HandleVerification(context.Background(), []byte("{not json")))
	require.NoError(t, w.HandleReset(context.Background(), []byte(`{"email":""}`)))
	require.Empty(t, sender.mails)
}

func TestSenderFailureRequeues(t *testing.T) {
	t.Parallel()

	sender := &captureSender{fail: errors.New("relay down")}
	w := newWorker(sender)

	body, err := json.Marshal(events.VerificationMessage{Email: "ada@example.com", Token: "t-1"})
	require.NoError(t, err)

	require.Error(t, w.HandleVerification(context.Background(), body))
}
