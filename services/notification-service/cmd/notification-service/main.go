package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carelane/hms/libs/config"
	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/libs/grpcx"
	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/libs/kafkax"
	otelx "github.com/carelane/hms/libs/otel"
	"github.com/carelane/hms/libs/runtime"
	"github.com/carelane/hms/services/notification-service/internal/consumer"
	"github.com/carelane/hms/services/notification-service/internal/email"
	"github.com/carelane/hms/services/notification-service/internal/inbox"
	"github.com/carelane/hms/services/notification-service/internal/notify"
	"github.com/carelane/hms/services/notification-service/internal/storage"
	"github.com/carelane/hms/services/notification-service/migrations"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// clinicHealthService matches the name clinic-service registers its health under.
const clinicHealthService = "hms.clinic"

func main() {
	_ = config.LoadDotEnv()
	service := config.String("SERVICE_NAME", "notification-service")
	env := config.String("ENV", "development")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service, env))
	if err != nil {
		logger.Error("otel setup failed", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: 5})
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()
	if config.Bool("MIGRATE_ON_START", true) {
		if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	sender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@clinic.local"),
	)
	notifier := notify.New(sender, storage.NewRepository(pool), logger, config.String("CLINIC_NAME", ""))

	brokers := config.List("KAFKA_BROKERS")
	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	}
	if len(brokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set; no events will be consumed")
	} else {
		eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
			Topics:  notify.Topics,
		}, notifier.Handle)
		go eventConsumer.Run(ctx)
	}

	if addr := config.String("CLINIC_GRPC_ADDR", ""); addr != "" {
		conn, err := grpcx.Dial(addr, grpcx.DialOptions{})
		if err != nil {
			logger.Fatal("clinic grpc client init failed", zap.Error(err))
		}
		defer conn.Close()
		checks = append(checks, runtime.ReadyCheck{Name: "clinic", Check: grpcx.HealthReadyCheck(conn, clinicHealthService)})
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}
	logger.Info("http server stopped")
}
