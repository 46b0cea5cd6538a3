package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaintoken "github.com/ticketon/ticketon/internal/domain/token"
	"github.com/ticketon/ticketon/internal/domain/user"
	"github.com/ticketon/ticketon/internal/token"
)

type fakeUserRepo struct {
	byLogin map[string]*user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error { f.byLogin[u.Login] = u; return nil }

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range f.byLogin {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakeUserRepo) GetByLogin(_ context.Context, login string) (*user.User, error) {
	u, ok := f.byLogin[login]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func (f *fakeUserRepo) ExistsByLogin(_ context.Context, login string) (bool, error) {
	_, ok := f.byLogin[login]
	return ok, nil
}

type fakeTokenRepo struct {
	byUser map[int64]domaintoken.Record
}

func (f *fakeTokenRepo) Save(_ context.Context, r *domaintoken.Record) error {
	f.byUser[r.UserID] = *r
	return nil
}

func (f *fakeTokenRepo) Update(_ context.Context, r *domaintoken.Record) error {
	f.byUser[r.UserID] = *r
	return nil
}

func (f *fakeTokenRepo) FindByUserID(_ context.Context, userID int64) (*domaintoken.Record, error) {
	r, ok := f.byUser[userID]
	if !ok {
		return nil, assert.AnError
	}
	return &r, nil
}

func (f *fakeTokenRepo) ExistsByUserID(_ context.Context, userID int64) (bool, error) {
	_, ok := f.byUser[userID]
	return ok, nil
}

func (f *fakeTokenRepo) FindByExpiresAtAccess(_ context.Context, at time.Time) ([]*domaintoken.Record, error) {
	return f.find(at, true), nil
}

func (f *fakeTokenRepo) FindByExpiresAtRefresh(_ context.Context, at time.Time) ([]*domaintoken.Record, error) {
	return f.find(at, false), nil
}

func (f *fakeTokenRepo) ExistsByExpiresAtAccess(_ context.Context, at time.Time) (bool, error) {
	return len(f.find(at, true)) > 0, nil
}

func (f *fakeTokenRepo) ExistsByExpiresAtRefresh(_ context.Context, at time.Time) (bool, error) {
	return len(f.find(at, false)) > 0, nil
}

func (f *fakeTokenRepo) find(at time.Time, access bool) []*domaintoken.Record {
	var out []*domaintoken.Record
	for _, r := range f.byUser {
		r := r
		exp := r.ExpiresAtRefresh
		if access {
			exp = r.ExpiresAtAccess
		}
		if exp.Equal(at) {
			out = append(out, &r)
		}
	}
	return out
}

var testKeys = token.Keys{
	Access:  []byte("access-secret-at-least-32-bytes-long!"),
	Refresh: []byte("refresh-secret-at-least-32-bytes-ok!!"),
}

// fixture seeds alice with a record due at minute and returns the usecase
// clocked a few seconds past it.
func fixture(t *testing.T, minute time.Time, dueAccess, dueRefresh bool) (*Usecase, *fakeTokenRepo) {
	t.Helper()
	codec := token.NewCodec(nil)
	now := minute.Add(3 * time.Second)
	gen := token.NewGenerator(codec, testKeys, "ticketon").WithNow(func() time.Time { return now })

	users := &fakeUserRepo{byLogin: map[string]*user.User{
		"alice": {ID: 1, Login: "alice", Role: user.RoleBuyer},
	}}

	refreshExp := minute.Add(10 * 24 * time.Hour)
	if dueRefresh {
		refreshExp = minute
	}
	refreshToken, err := codec.Encode(token.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "ticketon",
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(minute.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(minute.Add(29 * 24 * time.Hour)),
	}}, testKeys.Refresh)
	require.NoError(t, err)

	accessExp := minute.Add(30 * time.Minute)
	if dueAccess {
		accessExp = minute
	}
	tokens := &fakeTokenRepo{byUser: map[int64]domaintoken.Record{
		1: {
			UserID:           1,
			AccessToken:      "old-access",
			RefreshToken:     refreshToken,
			IssuedAt:         minute.Add(-time.Hour),
			ExpiresAtAccess:  accessExp,
			ExpiresAtRefresh: refreshExp,
		},
	}}

	uc := NewUsecase(tokens, users, codec, gen, testKeys, nil).
		WithNow(func() time.Time { return now })
	return uc, tokens
}

func TestRotateAccessDueRecord(t *testing.T) {
	minute := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	uc, tokens := fixture(t, minute, true, false)
	before := tokens.byUser[1]

	rotated, skipped, err := uc.RotateAccess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rotated)
	assert.Equal(t, 0, skipped)

	after := tokens.byUser[1]
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.Equal(t, minute.Add(time.Hour), after.ExpiresAtAccess)
	assert.Equal(t, before.RefreshToken, after.RefreshToken, "refresh half untouched")
	assert.Equal(t, before.ExpiresAtRefresh, after.ExpiresAtRefresh)
}

func TestRotateAccessIdempotentWithinMinute(t *testing.T) {
	minute := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	uc, tokens := fixture(t, minute, true, false)

	rotated, _, err := uc.RotateAccess(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rotated)
	first := tokens.byUser[1]

	// Same minute, second tick: the record now expires an hour out and no
	// longer matches, so nothing may move again.
	rotated, skipped, err := uc.RotateAccess(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rotated)
	assert.Zero(t, skipped)
	assert.Equal(t, first, tokens.byUser[1])
}

func TestRotateAccessTamperedRefreshSkips(t *testing.T) {
	minute := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	uc, tokens := fixture(t, minute, true, false)

	rec := tokens.byUser[1]
	rec.RefreshToken = rec.RefreshToken[:len(rec.RefreshToken)-2] + "xx"
	tokens.byUser[1] = rec
	before := tokens.byUser[1]

	rotated, skipped, err := uc.RotateAccess(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rotated)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, before, tokens.byUser[1], "record left for re-login")
}

func TestRotateRefreshTamperedTokenSkips(t *testing.T) {
	minute := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	uc, tokens := fixture(t, minute, false, true)

	rec := tokens.byUser[1]
	rec.RefreshToken = rec.RefreshToken[:len(rec.RefreshToken)-2] + "xx"
	tokens.byUser[1] = rec
	before := tokens.byUser[1]

	rotated, skipped, err := uc.RotateRefresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rotated)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, before, tokens.byUser[1])
}

func TestRotateRefreshDueRecord(t *testing.T) {
	minute := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	uc, tokens := fixture(t, minute, false, true)
	before := tokens.byUser[1]

	rotated, skipped, err := uc.RotateRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rotated)
	assert.Equal(t, 0, skipped)

	after := tokens.byUser[1]
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
	assert.Equal(t, minute.Add(time.Hour), after.ExpiresAtAccess)
	assert.Equal(t, minute.Add(30*24*time.Hour), after.ExpiresAtRefresh)
	assert.True(t, after.IssuedAt.After(before.IssuedAt))
}

func TestRotateNothingDue(t *testing.T) {
	minute := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	uc, tokens := fixture(t, minute, false, false)
	before := tokens.byUser[1]

	rotated, skipped, err := uc.RotateAccess(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rotated+skipped)

	rotated, skipped, err = uc.RotateRefresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rotated+skipped)
	assert.Equal(t, before, tokens.byUser[1])
}
