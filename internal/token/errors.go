package token

import "errors"

// The five validation failure kinds. Callers branch on these with errors.Is;
// they are never conflated into a single "bad token" error.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenUnsupported = errors.New("unsupported token")
	ErrTokenMalformed   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrTokenInvalid     = errors.New("invalid token")
)
