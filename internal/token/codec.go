package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ticketon/ticketon/internal/domain/user"
)

// Claims is the signed payload of both token kinds. Refresh tokens carry no
// role or login: they authorize token renewal only, never resource access.
type Claims struct {
	Role  user.Role `json:"role,omitempty"`
	Login string    `json:"login,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies compact HS256 tokens.
type Codec struct {
	log *zap.Logger
}

func NewCodec(log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{log: log.With(zap.String("component", "token.codec"))}
}

func (c *Codec) Encode(claims Claims, key []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature and expiry under key and returns the claims.
// Failures are classified into the five sentinel kinds of this package.
func (c *Codec) Decode(raw string, key []byte) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("%w: alg %q", ErrTokenUnsupported, t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return &claims, nil
}

// Validate reports whether the token verifies under key. Errors are logged
// and swallowed; request filtering only needs the yes/no.
func (c *Codec) Validate(raw string, key []byte) bool {
	if _, err := c.Decode(raw, key); err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			c.log.Error("token has expired", zap.Error(err))
		case errors.Is(err, ErrTokenUnsupported):
			c.log.Error("unsupported token", zap.Error(err))
		case errors.Is(err, ErrTokenMalformed):
			c.log.Error("malformed token", zap.Error(err))
		case errors.Is(err, ErrSignatureInvalid):
			c.log.Error("token signature does not verify", zap.Error(err))
		default:
			c.log.Error("invalid token", zap.Error(err))
		}
		return false
	}
	return true
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %s", ErrTokenExpired, err)
	case errors.Is(err, ErrTokenUnsupported):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %s", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %s", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}
}
