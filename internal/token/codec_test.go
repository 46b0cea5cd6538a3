package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketon/ticketon/internal/domain/user"
)

func testKeys(t *testing.T) Keys {
	t.Helper()
	return Keys{
		Access:  []byte("access-secret-at-least-32-bytes-long!"),
		Refresh: []byte("refresh-secret-at-least-32-bytes-ok!!"),
	}
}

func signedClaims(t *testing.T, c *Codec, claims Claims, key []byte) string {
	t.Helper()
	raw, err := c.Encode(claims, key)
	require.NoError(t, err)
	return raw
}

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec(nil)
	keys := testKeys(t)
	now := time.Now().UTC()

	in := Claims{
		Role:  user.RoleBuyer,
		Login: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ticketon",
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	raw := signedClaims(t, c, in, keys.Access)

	out, err := c.Decode(raw, keys.Access)
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Subject)
	assert.Equal(t, "alice", out.Login)
	assert.Equal(t, user.RoleBuyer, out.Role)
	assert.Equal(t, "ticketon", out.Issuer)
	assert.Equal(t, in.ExpiresAt.Unix(), out.ExpiresAt.Unix())
	assert.Equal(t, in.IssuedAt.Unix(), out.IssuedAt.Unix())
}

func TestCodecExpiryBoundary(t *testing.T) {
	c := NewCodec(nil)
	keys := testKeys(t)
	now := time.Now().UTC()

	expired := signedClaims(t, c, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
	}}, keys.Access)
	_, err := c.Decode(expired, keys.Access)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, c.Validate(expired, keys.Access))

	alive := signedClaims(t, c, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Second)),
	}}, keys.Access)
	_, err = c.Decode(alive, keys.Access)
	require.NoError(t, err)
	assert.True(t, c.Validate(alive, keys.Access))
}

func TestCodecSignatureIsolation(t *testing.T) {
	c := NewCodec(nil)
	keys := testKeys(t)
	now := time.Now().UTC()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}

	access := signedClaims(t, c, claims, keys.Access)
	refresh := signedClaims(t, c, claims, keys.Refresh)

	_, err := c.Decode(access, keys.Refresh)
	require.ErrorIs(t, err, ErrSignatureInvalid)
	_, err = c.Decode(refresh, keys.Access)
	require.ErrorIs(t, err, ErrSignatureInvalid)

	assert.False(t, c.Validate(access, keys.Refresh))
	assert.False(t, c.Validate(refresh, keys.Access))
}

func TestCodecMalformed(t *testing.T) {
	c := NewCodec(nil)
	keys := testKeys(t)

	for _, raw := range []string{"", "garbage", "a.b", "!!!.@@@.###"} {
		_, err := c.Decode(raw, keys.Access)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}

func TestCodecUnsupportedAlgorithm(t *testing.T) {
	c := NewCodec(nil)
	keys := testKeys(t)
	now := time.Now().UTC()

	// Same HMAC family, different algorithm: must be rejected as unsupported,
	// not verified against the HS256 key.
	other := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	raw, err := other.SignedString(keys.Access)
	require.NoError(t, err)

	_, err = c.Decode(raw, keys.Access)
	require.ErrorIs(t, err, ErrTokenUnsupported)
	assert.False(t, c.Validate(raw, keys.Access))
}

func TestCodecTamperedPayload(t *testing.T) {
	c := NewCodec(nil)
	keys := testKeys(t)
	now := time.Now().UTC()

	raw := signedClaims(t, c, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}, keys.Access)

	tampered := raw[:len(raw)-2] + "xx"
	_, err := c.Decode(tampered, keys.Access)
	require.Error(t, err)
	assert.False(t, c.Validate(tampered, keys.Access))
}
