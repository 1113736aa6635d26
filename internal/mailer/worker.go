package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/edustack/coursegate/internal/events"
)

// Worker binds the queued mail events to the sender. One handler per queue;
// a handler error nacks the delivery so the broker redelivers it.
type Worker struct {
	Renderer *Renderer
	Sender   Sender
	Logger   *slog.Logger
}

// HandleVerification processes one verification event body.
func (w *Worker) HandleVerification(ctx context.Context, body []byte) error {
	var msg events.VerificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// A body that never parses would redeliver forever; log and drop.
		w.Logger.Error("discarding unparseable verification event", "err", err)
		return nil
	}
	if msg.Email == "" || msg.Token == "" {
		w.Logger.Error("discarding incomplete verification event")
		return nil
	}

	if err := w.Sender.Send(ctx, w.Renderer.VerificationMail(msg.Email, msg.Token)); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}

	w.Logger.Info("verification mail sent", slog.String("email", msg.Email))
	return nil
}

// HandleReset processes one reset event body.
func (w *Worker) HandleReset(ctx context.Context, body []byte) error {
	var msg events.ResetMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		w.Logger.Error("discarding unparseable reset event", "err", err)
		return nil
	}
	if msg.Email == "" || msg.Token == "" {
		w.Logger.Error("discarding incomplete reset event")
		return nil
	}

	if err := w.Sender.Send(ctx, w.Renderer.ResetMail(msg.Email, msg.Token)); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	w.Logger.Info("reset mail sent", slog.String("email", msg.Email))
	return nil
}
