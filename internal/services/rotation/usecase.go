package rotation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domaintoken "github.com/ticketon/ticketon/internal/domain/token"
	"github.com/ticketon/ticketon/internal/domain/user"
	"github.com/ticketon/ticketon/internal/token"
)

// Usecase reissues tokens for records whose persisted expiry equals "now
// truncated to the minute". Both expiry mirrors are written minute-truncated,
// so the equality match is exact; anything finer would never rotate.
type Usecase struct {
	tokens domaintoken.Repo
	users  user.Repo
	codec  *token.Codec
	gen    *token.Generator
	keys   token.Keys
	now    func() time.Time
	log    *zap.Logger
}

func NewUsecase(tokens domaintoken.Repo, users user.Repo, codec *token.Codec, gen *token.Generator, keys token.Keys, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		tokens: tokens,
		users:  users,
		codec:  codec,
		gen:    gen,
		keys:   keys,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.With(zap.String("component", "rotation.usecase")),
	}
}

// WithNow overrides the clock, for tests.
func (u *Usecase) WithNow(now func() time.Time) *Usecase {
	cp := *u
	cp.now = now
	return &cp
}

// RotateAccess reissues the access token of every record due this minute,
// leaving the refresh half untouched. Records whose refresh token no longer
// validates are skipped without error: the owner re-logs-in instead.
func (u *Usecase) RotateAccess(ctx context.Context) (rotated, skipped int, err error) {
	now := u.now().Truncate(time.Minute)

	due, err := u.tokens.ExistsByExpiresAtAccess(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("probe due access records: %w", err)
	}
	if !due {
		return 0, 0, nil
	}
	recs, err := u.tokens.FindByExpiresAtAccess(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch due access records: %w", err)
	}

	for _, rec := range recs {
		usr, ok := u.owner(ctx, rec)
		if !ok {
			skipped++
			continue
		}
		issued, err := u.gen.AccessToken(usr)
		if err != nil {
			u.log.Error("issue access token", zap.Int64("user_id", rec.UserID), zap.Error(err))
			skipped++
			continue
		}
		rec.AccessToken = issued.Token
		rec.ExpiresAtAccess = issued.ExpiresAt
		if err := u.tokens.Update(ctx, rec); err != nil {
			u.log.Error("update rotated record", zap.Int64("user_id", rec.UserID), zap.Error(err))
			skipped++
			continue
		}
		rotated++
		u.log.Info("access token rotated", zap.Int64("user_id", rec.UserID))
	}
	return rotated, skipped, nil
}

// RotateRefresh reissues both tokens of every record whose refresh expiry is
// due this minute.
func (u *Usecase) RotateRefresh(ctx context.Context) (rotated, skipped int, err error) {
	now := u.now().Truncate(time.Minute)

	due, err := u.tokens.ExistsByExpiresAtRefresh(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("probe due refresh records: %w", err)
	}
	if !due {
		return 0, 0, nil
	}
	recs, err := u.tokens.FindByExpiresAtRefresh(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch due refresh records: %w", err)
	}

	for _, rec := range recs {
		usr, ok := u.owner(ctx, rec)
		if !ok {
			skipped++
			continue
		}
		pair, err := u.gen.AccessAndRefresh(usr)
		if err != nil {
			u.log.Error("issue token pair", zap.Int64("user_id", rec.UserID), zap.Error(err))
			skipped++
			continue
		}
		rec.AccessToken = pair.AccessToken
		rec.RefreshToken = pair.RefreshToken
		rec.IssuedAt = pair.IssuedAt
		rec.ExpiresAtAccess = pair.ExpiresAtAccess
		rec.ExpiresAtRefresh = pair.ExpiresAtRefresh
		if err := u.tokens.Update(ctx, rec); err != nil {
			u.log.Error("update rotated record", zap.Int64("user_id", rec.UserID), zap.Error(err))
			skipped++
			continue
		}
		rotated++
		u.log.Info("token pair rotated", zap.Int64("user_id", rec.UserID))
	}
	return rotated, skipped, nil
}

// owner validates the record's refresh token and resolves its user. A refresh
// token that fails validation leaves the record untouched; there is no
// request to surface the failure to.
func (u *Usecase) owner(ctx context.Context, rec *domaintoken.Record) (*user.User, bool) {
	if !u.codec.Validate(rec.RefreshToken, u.keys.Refresh) {
		u.log.Warn("refresh token invalid, leaving record for re-login", zap.Int64("user_id", rec.UserID))
		return nil, false
	}
	claims, err := u.codec.Decode(rec.RefreshToken, u.keys.Refresh)
	if err != nil {
		u.log.Warn("decode refresh claims", zap.Int64("user_id", rec.UserID), zap.Error(err))
		return nil, false
	}
	usr, err := u.users.GetByLogin(ctx, claims.Subject)
	if err != nil {
		u.log.Error("resolve token owner", zap.String("login", claims.Subject), zap.Error(err))
		return nil, false
	}
	return usr, true
}
