// Package events defines the async mail-event channel between the user
// service and the mail worker. The queue is the bridge that lets a
// synchronous signup/reset request finish while the email round trip happens
// later, surviving restarts of either side.
package events

import "context"

// Topology shared by publisher and consumer. Both sides declare it, so
// whichever starts first creates the durable exchange and queues.
const (
	Exchange = "mail.exchange"

	VerificationRoutingKey = "mail.verification"
	VerificationQueue      = "mail.verification.queue"

	ResetRoutingKey = "mail.reset"
	ResetQueue      = "mail.reset.queue"
)

// VerificationMessage asks the mail worker to send a signup-confirmation
// link carrying the correlation token.
type VerificationMessage struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// ResetMessage asks the mail worker to send a password-reset link.
type ResetMessage struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Publisher is what the correlation workflow needs from the message broker.
type Publisher interface {
	PublishVerification(ctx context.Context, msg VerificationMessage) error
	PublishReset(ctx context.Context, msg ResetMessage) error
}
