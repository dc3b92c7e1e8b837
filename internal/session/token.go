// AngelaMos | 2026
// token.go

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/ecoplagas/backend/internal/core"
)

const tokenType = "session"

// TokenSigner produces the cookie value that references a server-side
// session: an HS256 JWT whose jti is the session id.
type TokenSigner struct {
	key    jwk.Key
	issuer string
	now    func() time.Time
}

func NewTokenSigner(secret, issuer string) (*TokenSigner, error) {
	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("import session secret: %w", err)
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.HS256()); err != nil {
		return nil, fmt.Errorf("set algorithm: %w", err)
	}

	return &TokenSigner{
		key:    key,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (s *TokenSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	now := s.now()

	token, err := jwt.NewBuilder().
		JwtID(sessionID).
		Issuer(s.issuer).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim("type", tokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return string(signed), nil
}

// Verify checks signature, issuer and expiry and returns the session id.
func (s *TokenSigner) Verify(raw string) (string, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return "", fmt.Errorf("verify session token: %w", core.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify session token: %w", core.ErrTokenInvalid)
	}

	var typ string
	if err := token.Get("type", &typ); err != nil || typ != tokenType {
		return "", fmt.Errorf(
			"verify session token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	id, ok := token.JwtID()
	if !ok || id == "" {
		return "", fmt.Errorf(
			"verify session token: missing jti: %w",
			core.ErrTokenInvalid,
		)
	}

	return id, nil
}
