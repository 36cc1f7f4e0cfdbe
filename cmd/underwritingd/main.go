package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/internal/infrastructure/cache"
	"github.com/bibbank/underwriting/internal/infrastructure/config"
	"github.com/bibbank/underwriting/internal/infrastructure/kafka"
	"github.com/bibbank/underwriting/internal/infrastructure/metrics"
	pgrepo "github.com/bibbank/underwriting/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/underwriting/internal/infrastructure/scheduler"
	grpcPresentation "github.com/bibbank/underwriting/internal/presentation/grpc"
	"github.com/bibbank/underwriting/internal/presentation/rest"
	"github.com/bibbank/underwriting/pkg/auth"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
	"github.com/bibbank/underwriting/pkg/observability"
	pkgpostgres "github.com/bibbank/underwriting/pkg/postgres"
	"github.com/bibbank/underwriting/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("underwriting-service exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})
	logger.Info("starting underwriting-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Telemetry.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck
	recorder, err := metrics.NewRecorder(meterProvider)
	if err != nil {
		return err
	}

	// Database.
	pgCfg := cfg.DB.Postgres()
	if cfg.DB.MigrateOnStart {
		if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgrepo.Migrations, pgrepo.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	dbCancel()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	readiness := map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}

	appRepo := pgrepo.NewLoanApplicationRepo(pool)
	acctRepo := pgrepo.NewLoanAccountRepo(pool)
	store := pgrepo.NewDisbursementStore(pool)
	caseRepo := pgrepo.NewCollectionCaseRepo(pool)

	var profiles port.ProfileReader = pgrepo.NewProfileReader(pool)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		profiles = cache.NewProfileCache(profiles, rdb, cfg.Redis.ProfileTTL, logger)
		readiness["redis"] = func(ctx context.Context) error { return pingRedis(ctx, rdb) }
		logger.Info("profile cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.ProfileTTL)
	}

	// Messaging.
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		ClientID:      cfg.ServiceName,
		TLS:           cfg.Kafka.TLS,
	}
	producer := pkgkafka.NewProducer(kafkaCfg)
	defer func() { _ = producer.Close() }()

	publisher := kafka.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic, logger)
	auditSink := kafka.NewAuditSink(producer, cfg.Kafka.AuditTopic)
	emitter := usecase.NewEmitter(publisher, auditSink, recorder, logger)

	// Use cases.
	engine := service.NewUnderwritingEngine()
	evaluateBorrower := usecase.NewEvaluateApplicationUseCase(profiles, engine, recorder)
	makePayment := usecase.NewMakePaymentUseCase(acctRepo, emitter)
	sweep := usecase.NewSweepOverdueLoansUseCase(acctRepo, caseRepo, emitter)

	useCases := usecase.Set{
		EvaluateQuote:    usecase.NewEvaluateQuoteUseCase(engine, recorder),
		EvaluateBorrower: evaluateBorrower,
		Submit:           usecase.NewSubmitLoanApplicationUseCase(appRepo, evaluateBorrower, emitter),
		Decide:           usecase.NewDecideApplicationUseCase(appRepo, emitter, cfg.Underwriting.Ceiling()),
		GetApplication:   usecase.NewGetApplicationUseCase(appRepo),
		Disburse:         usecase.NewDisburseLoanUseCase(appRepo, acctRepo, store, emitter),
		MakePayment:      makePayment,
		GetLoan:          usecase.NewGetLoanUseCase(acctRepo, caseRepo),
		SweepOverdue:     sweep,
	}

	// Security.
	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	tlsCfg, err := tlsutil.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return fmt.Errorf("load TLS: %w", err)
	}

	// Servers.
	grpcServer := grpcPresentation.NewServer(
		grpcPresentation.NewUnderwritingHandler(useCases, logger),
		logger,
		grpcPresentation.ServerOptions{JWT: jwtSvc, TLS: tlsCfg, Reflection: cfg.GRPCReflection},
	)

	router := rest.NewRouter(
		rest.NewHandler(useCases, cfg.Underwriting.GraceDays, logger),
		rest.NewHealthHandler(cfg.ServiceName, readiness, logger),
		logger,
		rest.RouterOptions{JWT: jwtSvc, AllowedOrigins: cfg.CORSOrigins, Metrics: metricsHandler},
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", httpServer.Addr, "tls", tlsCfg != nil)
		if err := serveHTTP(httpServer, tlsCfg); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Background workers.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	consumer := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.PaymentsTopic, kafka.NewPaymentHandler(makePayment, logger), logger)
	defer func() { _ = consumer.Close() }()
	go func() {
		if err := consumer.Run(workerCtx); err != nil {
			errCh <- fmt.Errorf("payment consumer error: %w", err)
		}
	}()

	sweeper := scheduler.NewOverdueSweeper(sweep, cfg.Underwriting.SweepInterval, cfg.Underwriting.GraceDays, logger)
	go sweeper.Run(workerCtx)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("component failed", "error", runErr)
	}

	// Graceful shutdown.
	stopWorkers()
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("underwriting-service stopped")
	return runErr
}

// newJWTService returns nil when authentication is disabled.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	jwtCfg := auth.JWTConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.Issuer,
		Expiration: cfg.TokenTTL,
	}
	if cfg.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read JWT public key: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("init JWT service: %w", err)
	}
	return svc, nil
}

func serveHTTP(srv *http.Server, tlsCfg *tls.Config) error {
	if tlsCfg != nil {
		return srv.ListenAndServeTLS("", "")
	}
	return srv.ListenAndServe()
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
