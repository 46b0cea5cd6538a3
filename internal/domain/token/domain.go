package token

import "time"

// Record is the single active credential pair of one user. Its primary key
// equals the owning user's id, so a user never holds more than one pair.
type Record struct {
	UserID           int64
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	ExpiresAtAccess  time.Time // minute granularity, matched by the rotator
	ExpiresAtRefresh time.Time // minute granularity, matched by the rotator
}
