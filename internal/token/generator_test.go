package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketon/ticketon/internal/domain/user"
)

var alice = &user.User{
	ID:        1,
	Login:     "alice",
	FirstName: "Alice",
	LastName:  "Liddell",
	Role:      user.RoleBuyer,
}

func fixedGenerator(t *testing.T, at time.Time) (*Generator, *Codec, Keys) {
	t.Helper()
	codec := NewCodec(nil)
	keys := testKeys(t)
	gen := NewGenerator(codec, keys, "ticketon").WithNow(func() time.Time { return at })
	return gen, codec, keys
}

func TestGeneratorAccessToken(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 15, 42, 0, time.UTC)
	gen, codec, keys := fixedGenerator(t, at)

	issued, err := gen.AccessToken(alice)
	require.NoError(t, err)

	// Persisted mirror is minute-truncated; embedded claim keeps full precision.
	assert.Equal(t, time.Date(2026, 8, 28, 11, 15, 0, 0, time.UTC), issued.ExpiresAt)

	claims, err := codec.Decode(issued.Token, keys.Access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice", claims.Login)
	assert.Equal(t, user.RoleBuyer, claims.Role)
	assert.Equal(t, "ticketon", claims.Issuer)
	assert.Equal(t, at.Add(AccessTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestGeneratorRefreshTokenCarriesNoRole(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 15, 42, 0, time.UTC)
	gen, codec, keys := fixedGenerator(t, at)

	issued, err := gen.RefreshToken(alice)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 27, 10, 15, 0, 0, time.UTC), issued.ExpiresAt)

	claims, err := codec.Decode(issued.Token, keys.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Empty(t, claims.Role)
	assert.Empty(t, claims.Login)
}

func TestGeneratorKeySeparation(t *testing.T) {
	at := time.Now().UTC()
	gen, codec, keys := fixedGenerator(t, at)

	access, err := gen.AccessToken(alice)
	require.NoError(t, err)
	refresh, err := gen.RefreshToken(alice)
	require.NoError(t, err)

	_, err = codec.Decode(access.Token, keys.Refresh)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	_, err = codec.Decode(refresh.Token, keys.Access)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestGeneratorPairCoherence(t *testing.T) {
	at := time.Date(2026, 8, 28, 23, 59, 30, 0, time.UTC)
	gen, codec, keys := fixedGenerator(t, at)

	pair, err := gen.AccessAndRefresh(alice)
	require.NoError(t, err)
	assert.Equal(t, at, pair.IssuedAt)
	assert.Equal(t, at.Add(AccessTTL).Truncate(time.Minute), pair.ExpiresAtAccess)
	assert.Equal(t, at.Add(RefreshTTL).Truncate(time.Minute), pair.ExpiresAtRefresh)

	accessClaims, err := codec.Decode(pair.AccessToken, keys.Access)
	require.NoError(t, err)
	refreshClaims, err := codec.Decode(pair.RefreshToken, keys.Refresh)
	require.NoError(t, err)

	// Both halves stamped with the same instant.
	assert.Equal(t, accessClaims.IssuedAt.Unix(), refreshClaims.IssuedAt.Unix())
}
