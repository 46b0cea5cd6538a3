package token

import (
	"encoding/base64"
	"fmt"
)

// Keys holds the two symmetric signing secrets. Access and refresh tokens are
// signed with different keys: a leaked access key cannot forge a refresh
// token. Decoded once at startup, never mutated, safe for concurrent reads.
type Keys struct {
	Access  []byte
	Refresh []byte
}

func KeysFromBase64(access, refresh string) (Keys, error) {
	a, err := base64.StdEncoding.DecodeString(access)
	if err != nil {
		return Keys{}, fmt.Errorf("decode access secret: %w", err)
	}
	r, err := base64.StdEncoding.DecodeString(refresh)
	if err != nil {
		return Keys{}, fmt.Errorf("decode refresh secret: %w", err)
	}
	if len(a) == 0 || len(r) == 0 {
		return Keys{}, fmt.Errorf("empty signing secret")
	}
	return Keys{Access: a, Refresh: r}, nil
}
