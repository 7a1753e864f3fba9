package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/carelane/hms/libs/auth"
	"github.com/carelane/hms/libs/config"
	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/libs/grpcx"
	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/libs/kafkax"
	otelx "github.com/carelane/hms/libs/otel"
	"github.com/carelane/hms/libs/runtime"
	"github.com/carelane/hms/services/clinic-service/internal/booking"
	"github.com/carelane/hms/services/clinic-service/internal/grpcserver"
	"github.com/carelane/hms/services/clinic-service/internal/handlers"
	"github.com/carelane/hms/services/clinic-service/internal/outbox"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"github.com/carelane/hms/services/clinic-service/migrations"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	_ = config.LoadDotEnv()
	cfg, err := loadSettings()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.Service, cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service, cfg.Env))
	if err != nil {
		logger.Error("otel setup failed", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{MaxConns: int32(cfg.DBMaxConns)})
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.Service, cfg.JWTTTL)
	if err != nil {
		logger.Fatal("jwt signer init failed", zap.Error(err))
	}

	outboxRepo := outbox.NewRepository(pool)
	var writer outbox.MessageWriter
	if len(cfg.KafkaBrokers) > 0 {
		writer = kafkax.NewWriter(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set; outbox events stay unpublished")
	}
	go outbox.NewPublisher(outboxRepo, writer, logger, outbox.PublisherConfig{
		PollEvery: cfg.OutboxPollEvery,
		BatchSize: 50,
	}).Run(ctx)

	policy := booking.Policy{Strict: cfg.StrictSlots, Location: cfg.ClinicLocation}
	patients := storage.NewPatientRepository(pool)
	doctors := storage.NewDoctorRepository(pool)
	schedules := storage.NewScheduleRepository(pool)
	appointments := storage.NewAppointmentRepository(pool, outboxRepo)
	api := handlers.API{
		Accounts:     handlers.NewAccountHandler(patients, doctors, signer, logger),
		People:       handlers.NewPeopleHandler(patients, doctors, logger),
		Schedules:    handlers.NewScheduleHandler(schedules, appointments, policy, logger),
		Appointments: handlers.NewAppointmentHandler(appointments, schedules, policy, logger),
		Clinical:     handlers.NewClinicalHandler(storage.NewClinicalRepository(pool), logger),
		Masters:      handlers.NewMasterHandler(storage.NewMasterRepository(pool), logger),
	}

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if len(cfg.KafkaBrokers) > 0 {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}
	limiter := httpx.Limiter(httpx.NewMemoryLimiter(cfg.RatePerMinute, time.Minute))
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = rdb.Close() }()
		limiter = httpx.NewRedisLimiter(rdb, cfg.RatePerMinute, time.Minute, cfg.Service)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	var protect httpx.Middleware
	if cfg.AuthEnforced {
		protect = auth.RequireAuth(signer)
	}
	api.Mount(mux, protect)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.ClinicCORSPolicy(cfg.CORSOrigins)),
		httpx.WithRateLimit(limiter, logger, cfg.RateFailOpen),
		httpx.WithBodyLimit(int64(cfg.BodyLimitBytes)),
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "clinic")

	if err := startGrpcServer(ctx, logger, cfg, pool); err != nil {
		logger.Error("grpc server disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("http server starting",
			zap.String("addr", srv.Addr),
			zap.Bool("strict_slots", cfg.StrictSlots),
			zap.String("clinic_timezone", cfg.ClinicLocation.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
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

func startGrpcServer(ctx context.Context, logger *zap.Logger, cfg settings, pool *db.Pool) error {
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	srv := grpcx.NewServer(logger)
	hs := grpcserver.Register(srv, pool, logger, cfg.HealthProbeEvery)
	go hs.Run(ctx)

	go func() {
		logger.Info("grpc server starting", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()
	return nil
}
