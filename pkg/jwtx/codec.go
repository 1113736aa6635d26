package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrNoSecret    = errors.New("jwtx: signing secret is empty")
)

// Verifier validates a compact token and gives you back the claims if it's
// legit. Both admission filters depend on this interface rather than the
// concrete codec so tests can swap in fakes.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Codec signs and verifies HS256 tokens with a single shared symmetric
// secret. The secret is process-wide configuration loaded once at startup;
// there is no rotation, every service in the deployment holds the same one.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec builds a Codec. The secret must be non-empty; the issuer is
// embedded in every signed token and enforced on verify.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issuer returns the issuer embedded in signed tokens.
func (c *Codec) Issuer() string { return c.issuer }

// Sign produces the compact signed encoding of the claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a compact token. Failures come back as the
// package sentinel errors so callers can decide between fail-open (filters)
// and explicit rejection (endpoints) without string matching.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSig
		}
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}
	if claims.Subject == "" {
		return Claims{}, ErrMalformed
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
