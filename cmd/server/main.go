package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/ticket-reservation/internal/config"
	"github.com/iliyamo/ticket-reservation/internal/database"
	"github.com/iliyamo/ticket-reservation/internal/handler"
	"github.com/iliyamo/ticket-reservation/internal/middleware"
	"github.com/iliyamo/ticket-reservation/internal/queue"
	"github.com/iliyamo/ticket-reservation/internal/repository"
	"github.com/iliyamo/ticket-reservation/internal/router"
	"github.com/iliyamo/ticket-reservation/internal/service"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	svc := service.NewReservationService(repository.NewShowRepo(), repository.NewBookingRepo())
	publisher := queue.NewPublisher(cfg.AMQPURL)
	h := handler.NewReservationHandler(svc, publisher, log.WithField("component", "http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rlCfg := config.LoadRateLimitConfig()
	var rdb *redis.Client
	if rlCfg.Enabled {
		client, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			log.WithError(err).Warn("redis unavailable, rate limiting disabled")
		} else {
			rdb = client
			defer rdb.Close()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID(), middleware.Logger(log))
	router.RegisterRoutes(e)
	router.RegisterReservations(e, h, middleware.NewTokenBucket(rlCfg, rdb, log.WithField("component", "ratelimit")))

	consumerDone := make(chan struct{})
	if cfg.EventsEnabled() && cfg.ConsumerEnabled {
		db := openAuditDB(ctx, cfg, log)
		if db != nil {
			defer db.Close()
		}
		go func() {
			defer close(consumerDone)
			runConsumer(ctx, cfg, db, log)
		}()
	} else {
		close(consumerDone)
	}

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "events": cfg.EventsEnabled()}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	<-consumerDone
}

// openAuditDB connects to MySQL when configured.  Failures are logged and
// the consumer falls back to the file sink alone.
func openAuditDB(ctx context.Context, cfg config.Config, log *logrus.Logger) *sql.DB {
	if !cfg.AuditDBEnabled() {
		return nil
	}
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.WithError(err).Warn("audit database unavailable")
		return nil
	}
	return db
}

func runConsumer(ctx context.Context, cfg config.Config, db *sql.DB, log *logrus.Logger) {
	sinks := queue.MultiSink{queue.NewFileSink(cfg.AuditLogDir)}
	if db != nil {
		sqlSink := queue.NewSQLSink(db)
		if err := sqlSink.EnsureSchema(ctx); err != nil {
			log.WithError(err).Warn("booking_audit schema setup failed")
		} else {
			sinks = append(sinks, sqlSink)
		}
	}
	consumer := queue.NewConsumer(cfg.AMQPURL, sinks, log)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("booking consumer stopped")
	}
}
