package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/ticketon/ticketon/internal/config/rotator"
	"github.com/ticketon/ticketon/internal/obs"
	pg "github.com/ticketon/ticketon/internal/repository/postgres"
	"github.com/ticketon/ticketon/internal/services/rotation"
	"github.com/ticketon/ticketon/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting rotator",
		zap.String("access_cron", cfg.Rotation.AccessCron),
		zap.String("refresh_cron", cfg.Rotation.RefreshCron),
		zap.String("metrics_addr", cfg.Rotation.MetricsAddr),
	)

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	keys, err := token.KeysFromBase64(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	if err != nil {
		l.Fatal("jwt keys", zap.Error(err))
	}
	codec := token.NewCodec(l)
	gen := token.NewGenerator(codec, keys, cfg.JWT.Issuer)

	tokenRecords := pg.NewTokenRepo(db)
	users := pg.NewUserRepo(db)

	uc := rotation.NewUsecase(tokenRecords, users, codec, gen, keys, l)
	runner := rotation.New(l, uc, &cfg.Rotation)

	ms := obs.BootstrapMetricsServer(cfg.Rotation.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("rotator started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
