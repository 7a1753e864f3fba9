package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/carelane/hms/libs/config"
)

type settings struct {
	Service          string
	Env              string
	Port             string
	GRPCPort         string
	DatabaseURL      string
	DBMaxConns       int
	MigrateOnStart   bool
	KafkaBrokers     []string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RatePerMinute    int
	RateFailOpen     bool
	CORSOrigins      []string
	BodyLimitBytes   int
	RequestTimeout   time.Duration
	JWTSecret        string
	JWTTTL           time.Duration
	AuthEnforced     bool
	ClinicLocation   *time.Location
	StrictSlots      bool
	OutboxPollEvery  time.Duration
	HealthProbeEvery time.Duration
}

func loadSettings() (settings, error) {
	s := settings{
		Service:        config.String("SERVICE_NAME", "clinic-service"),
		Env:            config.String("ENV", "development"),
		MigrateOnStart: config.Bool("MIGRATE_ON_START", true),
		KafkaBrokers:   config.List("KAFKA_BROKERS"),
		RedisAddr:      config.String("REDIS_ADDR", ""),
		RedisPassword:  config.String("REDIS_PASSWORD", ""),
		RateFailOpen:   config.Bool("RATE_LIMIT_FAIL_OPEN", true),
		CORSOrigins:    config.List("CORS_ALLOWED_ORIGINS"),
		AuthEnforced:   config.Bool("AUTH_ENFORCED", false),
		StrictSlots:    config.Bool("BOOKING_STRICT_SLOTS", true),
	}
	var err error
	if s.Port, err = config.Port("PORT", "8080"); err != nil {
		return s, err
	}
	if s.GRPCPort, err = config.Port("GRPC_PORT", "9090"); err != nil {
		return s, err
	}
	if s.DatabaseURL, err = config.RequiredString("DATABASE_URL"); err != nil {
		return s, err
	}
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"DB_MAX_CONNS", 10, &s.DBMaxConns},
		{"REDIS_DB", 0, &s.RedisDB},
		{"RATE_LIMIT_PER_MINUTE", 120, &s.RatePerMinute},
		{"REQUEST_BODY_LIMIT_BYTES", 1 << 20, &s.BodyLimitBytes},
	}
	for _, v := range ints {
		if *v.dst, err = config.Int(v.key, v.fallback); err != nil {
			return s, err
		}
	}
	timeoutSecs, err := config.Int("REQUEST_TIMEOUT_SECONDS", 15)
	if err != nil {
		return s, err
	}
	s.RequestTimeout = time.Duration(timeoutSecs) * time.Second
	ttlMins, err := config.Int("JWT_TTL_MINUTES", 60)
	if err != nil {
		return s, err
	}
	s.JWTTTL = time.Duration(ttlMins) * time.Minute
	if s.OutboxPollEvery, err = config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second); err != nil {
		return s, err
	}
	if s.HealthProbeEvery, err = config.Duration("HEALTH_PROBE_INTERVAL", 10*time.Second); err != nil {
		return s, err
	}
	if s.ClinicLocation, err = config.Location("CLINIC_TIMEZONE"); err != nil {
		return s, err
	}

	s.JWTSecret = config.String("JWT_SECRET", "")
	if s.JWTSecret == "" {
		if s.AuthEnforced || strings.EqualFold(s.Env, "production") {
			return s, fmt.Errorf("JWT_SECRET is required when AUTH_ENFORCED is set or ENV=production")
		}
		s.JWTSecret = "dev-only-secret-change-me"
	}
	return s, nil
}
