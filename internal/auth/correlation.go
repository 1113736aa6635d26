package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edustack/coursegate/internal/events"
	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/google/uuid"
)

// Default correlation-token TTLs. Short: an abandoned signup or reset attempt
// just ages out of the store, nothing to clean up.
const (
	DefaultSignupTTL = 15 * time.Minute
	DefaultResetTTL  = 10 * time.Minute
)

// ErrTokenNotFound reports redemption of an absent, expired, or
// already-consumed correlation token. User-visible and non-retryable; the
// originating flow has to be restarted.
var ErrTokenNotFound = errors.New("auth: correlation token invalid or expired")

// SignupPayload is the full pending registration, parked in the token store
// until the email round trip proves mailbox ownership. The durable user row
// is only created on redemption, so abandoned signups never leave
// half-registered accounts behind.
type SignupPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// CorrelationService mints and redeems the single-use tokens that bridge a
// synchronous request to its asynchronous confirmation.
type CorrelationService struct {
	Store     tokenstore.Store
	Publisher events.Publisher
	SignupTTL time.Duration
	ResetTTL  time.Duration
}

// BeginSignup parks the registration payload under a fresh token and
// publishes the verification event for the mail worker. The store write
// happens before the publish: a mail link must never reference a token that
// isn't redeemable yet.
func (s *CorrelationService) BeginSignup(ctx context.Context, payload SignupPayload) (string, error) {
	token := uuid.NewString()

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal signup payload: %w", err)
	}

	if err := s.Store.Put(ctx, tokenstore.PrefixSignup+token, string(body), s.signupTTL()); err != nil {
		return "", fmt.Errorf("store signup token: %w", err)
	}

	if err := s.Publisher.PublishVerification(ctx, events.VerificationMessage{
		Email: payload.Email,
		Token: token,
	}); err != nil {
		// The store entry TTLs out on its own; surface the failure so the
		// client knows no mail is coming.
		return "", fmt.Errorf("publish verification event: %w", err)
	}

	return token, nil
}

// RedeemSignup consumes the token and returns the pending payload. The
// fetch-and-delete is atomic at the store, so of any number of concurrent
// redeemers exactly one gets the payload and the rest see ErrTokenNotFound.
func (s *CorrelationService) RedeemSignup(ctx context.Context, token string) (SignupPayload, error) {
	value, err := s.Store.GetDel(ctx, tokenstore.PrefixSignup+token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return SignupPayload{}, ErrTokenNotFound
		}
		return SignupPayload{}, err
	}

	var payload SignupPayload
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		return SignupPayload{}, fmt.Errorf("unmarshal signup payload: %w", err)
	}
	return payload, nil
}

// BeginReset parks the target email under a fresh token and publishes the
// reset event. Callers must have checked the account exists first.
func (s *CorrelationService) BeginReset(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()

	if err := s.Store.Put(ctx, tokenstore.PrefixReset+token, email, s.resetTTL()); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	if err := s.Publisher.PublishReset(ctx, events.ResetMessage{
		Email: email,
		Token: token,
	}); err != nil {
		return "", fmt.Errorf("publish reset event: %w", err)
	}

	return token, nil
}

// RedeemReset consumes the token and returns the email whose credential may
// now be replaced. Same exactly-once guarantee as RedeemSignup.
func (s *CorrelationService) RedeemReset(ctx context.Context, token string) (string, error) {
	email, err := s.Store.GetDel(ctx, tokenstore.PrefixReset+token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return email, nil
}

func (s *CorrelationService) signupTTL() time.Duration {
	if s.SignupTTL > 0 {
		return s.SignupTTL
	}
	return DefaultSignupTTL
}

func (s *CorrelationService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}
