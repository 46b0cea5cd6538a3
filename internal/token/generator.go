package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ticketon/ticketon/internal/domain/user"
)

const (
	AccessTTL  = 60 * time.Minute
	RefreshTTL = 30 * 24 * time.Hour
)

// Issued is one freshly signed token plus the expiry mirror to persist.
// The embedded claim keeps full precision for the expiry check; ExpiresAt is
// truncated to the minute because the rotator matches records by exact
// equality against "now truncated to the minute".
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Pair is an access+refresh pair stamped with a single issued-at instant.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	ExpiresAtAccess  time.Time
	ExpiresAtRefresh time.Time
}

type Generator struct {
	codec  *Codec
	keys   Keys
	issuer string
	now    func() time.Time
}

func NewGenerator(codec *Codec, keys Keys, issuer string) *Generator {
	return &Generator{
		codec:  codec,
		keys:   keys,
		issuer: issuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock, for tests.
func (g *Generator) WithNow(now func() time.Time) *Generator {
	cp := *g
	cp.now = now
	return &cp
}

func (g *Generator) AccessToken(u *user.User) (Issued, error) {
	return g.access(u, g.now())
}

func (g *Generator) RefreshToken(u *user.User) (Issued, error) {
	return g.refresh(u, g.now())
}

// AccessAndRefresh issues both tokens under one issued-at timestamp. Callers
// needing a coherent pair must use this, not two single-token calls taken at
// different instants.
func (g *Generator) AccessAndRefresh(u *user.User) (Pair, error) {
	issuedAt := g.now()
	access, err := g.access(u, issuedAt)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := g.refresh(u, issuedAt)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		IssuedAt:         issuedAt,
		ExpiresAtAccess:  access.ExpiresAt,
		ExpiresAtRefresh: refresh.ExpiresAt,
	}, nil
}

func (g *Generator) access(u *user.User, issuedAt time.Time) (Issued, error) {
	expiresAt := issuedAt.Add(AccessTTL)
	signed, err := g.codec.Encode(Claims{
		Role:  u.Role,
		Login: u.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   u.Login,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}, g.keys.Access)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ExpiresAt: expiresAt.Truncate(time.Minute)}, nil
}

func (g *Generator) refresh(u *user.User, issuedAt time.Time) (Issued, error) {
	expiresAt := issuedAt.Add(RefreshTTL)
	signed, err := g.codec.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   u.Login,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}, g.keys.Refresh)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ExpiresAt: expiresAt.Truncate(time.Minute)}, nil
}
