package authservice

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrMissingCredential = fmt.Errorf("%w: missing credential", ErrUnauthorized)
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrUnauthorized)
	ErrMissingEmailClaim = fmt.Errorf("%w: credential has no email claim", ErrUnauthorized)
	ErrEmailNotAllowed   = fmt.Errorf("%w: email is not an administrator", ErrUnauthorized)
)

// Identity is the verified caller of an admin request.
type Identity struct {
	Email string
}

// Gate admits callers holding a valid token whose email is on the allow-list.
type Gate struct {
	verifier *TokenVerifier
	allow    *AllowList
	logger   *slog.Logger
}

func NewGate(verifier *TokenVerifier, allow *AllowList, logger *slog.Logger) *Gate {
	return &Gate{verifier: verifier, allow: allow, logger: logger}
}

// Authorize checks a raw bearer token. Every rejection wraps ErrUnauthorized.
func (g *Gate) Authorize(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}

	if g.verifier == nil || g.allow == nil {
		return nil, ErrInvalidCredential
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.Debug("token rejected", slog.String("error", err.Error()))
		return nil, ErrInvalidCredential
	}

	if claims.Email == "" {
		return nil, ErrMissingEmailClaim
	}

	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", ErrEmailNotAllowed)
	}

	if !g.allow.Allowed(claims.Email) {
		g.logger.Warn("email not on allow-list", slog.String("email", claims.Email))
		return nil, ErrEmailNotAllowed
	}

	return &Identity{Email: normalizeEmail(claims.Email)}, nil
}
