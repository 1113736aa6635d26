// Package service holds the user service's business logic on top of the
// shared auth fabric and the durable user store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edustack/coursegate/internal/auth"
	"github.com/edustack/coursegate/internal/user/store"
	"github.com/edustack/coursegate/pkg/cryptox"
	"github.com/edustack/coursegate/pkg/idx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("service: invalid email or password")
	ErrDuplicateAccount   = errors.New("service: email or phone number already registered")
	ErrUnknownEmail       = errors.New("service: no account for that email")
)

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthenticationService glues credential checks, the token lifecycle, and
// the correlation workflow together. Handlers own HTTP concerns; this owns
// the rules.
type AuthenticationService struct {
	Store       store.Store
	Tokens      *auth.TokenService
	Correlation *auth.CorrelationService
}

// InitiateSignup rejects duplicates before any correlation token is minted,
// then parks the payload and kicks off the verification mail. No durable row
// is written yet; that happens at redemption.
func (s *AuthenticationService) InitiateSignup(ctx context.Context, payload auth.SignupPayload) error {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Users().GetUserByEmail(ctx, payload.Email); err == nil {
		return ErrDuplicateAccount
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := s.Store.Users().GetUserByPhone(ctx, payload.PhoneNumber); err == nil {
		return ErrDuplicateAccount
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := s.Correlation.BeginSignup(ctx, payload); err != nil {
		return err
	}

	log.Info("signup initiated", slog.String("email", payload.Email))
	return nil
}

// VerifyAndCreate redeems the signup token and creates the durable account.
// The consumed token is the proof of a completed email round trip; a second
// redemption of the same link fails before any row is touched.
func (s *AuthenticationService) VerifyAndCreate(ctx context.Context, token string) (store.User, error) {
	log := slogx.FromContext(ctx)

	payload, err := s.Correlation.RedeemSignup(ctx, token)
	if err != nil {
		return store.User{}, err
	}

	hash, err := cryptox.HashPassword(payload.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := store.User{
		ID:           idx.New().String(),
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Email:        payload.Email,
		PhoneNumber:  payload.PhoneNumber,
		PasswordHash: hash,
		Role:         identity.RoleUser,
		Status:       store.StatusEnabled,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Someone registered the email between signup and redemption.
			return store.User{}, ErrDuplicateAccount
		}
		return store.User{}, err
	}

	log.Info("user verified and created", slog.String("email", u.Email))
	return u, nil
}

// Login checks the credential and establishes a session. Success is only
// reported after the refresh entry is acknowledged by the token store; a
// signed access token without a registered session would be revoked-on-
// arrival at the gateway.
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (TokenPair, store.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, store.User{}, ErrInvalidCredentials
		}
		return TokenPair{}, store.User{}, err
	}
	if u.Status != store.StatusEnabled {
		return TokenPair{}, store.User{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		log.Info("login failed", slog.String("email", email))
		return TokenPair{}, store.User{}, ErrInvalidCredentials
	}

	access, err := s.Tokens.IssueAccessToken(u.Email, u.Role)
	if err != nil {
		return TokenPair{}, store.User{}, err
	}

	refresh, err := s.Tokens.EstablishSession(ctx, u.Email)
	if err != nil {
		return TokenPair{}, store.User{}, err
	}

	log.Info("login successful", slog.String("email", email))
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.Tokens.AccessTokenTTL(),
	}, u, nil
}

// Refresh exchanges a live refresh id for a fresh access token. The role is
// re-read from the durable record so a role change lands on the next
// refresh, not only at the next login.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshID string) (string, error) {
	subject, err := s.Tokens.ResolveRefresh(ctx, refreshID)
	if err != nil {
		return "", err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Session outlived the account; treat like a dead session.
			return "", auth.ErrInvalidRefresh
		}
		return "", err
	}

	return s.Tokens.IssueAccessToken(u.Email, u.Role)
}

// Logout drops one of the caller's live sessions.
func (s *AuthenticationService) Logout(ctx context.Context, subject string) error {
	dropped, err := s.Tokens.Logout(ctx, subject)
	if err != nil {
		return err
	}

	log := slogx.FromContext(ctx)
	if dropped {
		log.Info("session revoked", slog.String("subject", subject))
	} else {
		log.Info("logout with no live session", slog.String("subject", subject))
	}
	return nil
}

// SendResetLink begins the reset workflow for an existing account. Unknown
// emails are a visible error at this boundary.
func (s *AuthenticationService) SendResetLink(ctx context.Context, email string) error {
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownEmail
		}
		return err
	}

	_, err := s.Correlation.BeginReset(ctx, email)
	return err
}

// ResetPassword redeems the reset token and replaces the credential for the
// email it was bound to.
func (s *AuthenticationService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.Correlation.RedeemReset(ctx, token)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, email, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("email", email))
	return nil
}
