package token

import (
	"context"
	"time"
)

type Repo interface {
	Save(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	FindByUserID(ctx context.Context, userID int64) (*Record, error)
	ExistsByUserID(ctx context.Context, userID int64) (bool, error)
	FindByExpiresAtAccess(ctx context.Context, at time.Time) ([]*Record, error)
	FindByExpiresAtRefresh(ctx context.Context, at time.Time) ([]*Record, error)
	ExistsByExpiresAtAccess(ctx context.Context, at time.Time) (bool, error)
	ExistsByExpiresAtRefresh(ctx context.Context, at time.Time) (bool, error)
}
