// Package auth implements the token lifecycle shared by the gateway and the
// user service: short-lived signed access tokens, revocable refresh sessions
// in the token store, and single-use correlation tokens bridging HTTP
// requests to async mail delivery.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/edustack/coursegate/pkg/cryptox"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/jwtx"
)

var (
	// ErrInvalidRefresh reports a refresh id with no live store entry.
	// Unlike the fail-open filters, the refresh endpoint surfaces this to
	// the client explicitly.
	ErrInvalidRefresh = errors.New("auth: invalid or expired refresh token")
)

// TokenService issues access tokens and manages refresh sessions. Everything
// is keyed off the shared codec secret and the shared token store; there is
// no other authority.
type TokenService struct {
	Codec      *jwtx.Codec
	Store      tokenstore.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccessToken signs a self-contained access token for the subject. No
// store interaction: validity is signature plus expiry.
func (s *TokenService) IssueAccessToken(subject string, role identity.Role) (string, error) {
	claims := jwtx.NewAccessClaims(subject, string(role), s.Codec.Issuer(), s.AccessTokenTTL(), time.Now())
	token, err := s.Codec.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// EstablishSession mints an opaque refresh id and records it in the store
// under the refresh namespace with the long TTL. Issuance and registration
// cross a network boundary, so the session only exists once the store write
// is acknowledged; on error the caller must not report login success.
func (s *TokenService) EstablishSession(ctx context.Context, subject string) (string, error) {
	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	if err := s.Store.Put(ctx, tokenstore.PrefixRefresh+id, subject, s.refreshTTL()); err != nil {
		return "", fmt.Errorf("register refresh session: %w", err)
	}

	return id, nil
}

// ResolveRefresh maps a refresh id to its subject, or ErrInvalidRefresh if
// the id was revoked or aged out. Store faults propagate as-is: a broken
// store is never the same verdict as a missing session.
func (s *TokenService) ResolveRefresh(ctx context.Context, refreshID string) (string, error) {
	subject, err := s.Store.Get(ctx, tokenstore.PrefixRefresh+refreshID)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return "", ErrInvalidRefresh
		}
		return "", err
	}
	return subject, nil
}

// Logout revokes one live session for the subject (multi-device: other
// sessions stay). Reports whether a session was actually dropped.
//
// Revocation is visible on the gateway's next liveness check; an access token
// issued before logout keeps verifying until its own expiry, so full effect
// lags by at most AccessTTL.
func (s *TokenService) Logout(ctx context.Context, subject string) (bool, error) {
	return tokenstore.DeleteSessionForSubject(ctx, s.Store, subject)
}

// AccessTokenTTL is the effective access token lifetime after defaulting.
func (s *TokenService) AccessTokenTTL() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL <= 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return s.RefreshTTL
}
