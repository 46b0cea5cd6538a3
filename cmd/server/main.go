package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/ticketon/ticketon/internal/config/server"
	"github.com/ticketon/ticketon/internal/httpapi"
	"github.com/ticketon/ticketon/internal/obs"
	kafkarepo "github.com/ticketon/ticketon/internal/repository/kafka"
	natsrepo "github.com/ticketon/ticketon/internal/repository/nats"
	pg "github.com/ticketon/ticketon/internal/repository/postgres"
	"github.com/ticketon/ticketon/internal/services/auth"
	"github.com/ticketon/ticketon/internal/services/tickets"
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
	l.Info("starting server",
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
	)

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

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

	prod := kafkarepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
	defer func() { _ = prod.Close() }()
	events := kafkarepo.NewPurchaseEventsKafka(prod)

	notifier, err := natsrepo.NewNotifier(cfg.NATS.URL, cfg.NATS.Subject, l)
	if err != nil {
		l.Fatal("nats connect", zap.Error(err))
	}
	defer notifier.Close()

	users := pg.NewUserRepo(db)
	tokenRecords := pg.NewTokenRepo(db)
	carriers := pg.NewCarrierRepo(db)
	routes := pg.NewRouteRepo(db)
	ticketRepo := pg.NewTicketRepo(db)

	authSvc := auth.NewService(users, tokenRecords, gen, l)
	ticketSvc := tickets.NewService(carriers, routes, ticketRepo, events, notifier, l)

	router := httpapi.NewRouter(l, codec, keys,
		httpapi.NewAuthHandler(authSvc),
		httpapi.NewTransitHandler(ticketSvc, users),
	)

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	l.Info("server started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
