package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"

	"github.com/potgreen/nursery-backend/internal/app/seed"
	"github.com/potgreen/nursery-backend/internal/domains/access"
	ordermemory "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/memory"
	"github.com/potgreen/nursery-backend/internal/domains/orders/adapters/notify/amqp"
	"github.com/potgreen/nursery-backend/internal/domains/orders/adapters/notify/logsink"
	temporalnotify "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/notify/temporal"
	orderobs "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/potgreen/nursery-backend/internal/domains/orders/application"
	orderports "github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	platformobservability "github.com/potgreen/nursery-backend/internal/platform/observability"
	platformpostgres "github.com/potgreen/nursery-backend/internal/platform/postgres"
)

const (
	serviceName     = "nursery-orders-api"
	shutdownTimeout = 10 * time.Second
	seedOrderCount  = 40
)

// Run boots the admin orders HTTP API and blocks until ctx is cancelled or
// the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo, err := buildOrderRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupRepo()

	gate, err := buildGate(cfg)
	if err != nil {
		return err
	}

	notifier, cleanupNotifier, err := buildNotifier(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanupNotifier()

	coreService := orderapp.NewService(
		repo,
		gate,
		orderapp.WithNotifier(notifier),
		orderapp.WithLogger(logger),
		orderapp.WithStoreTimeout(cfg.StoreTimeout),
	)
	orderService := orderobs.New(
		coreService,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	if cfg.SeedOrders {
		seeded, err := seed.Orders(ctx, repo, seedOrderCount, time.Now())
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
		logger.Info("sample orders seeded", slog.Int("count", len(seeded)))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(orderService, RouterOptions{
		ServiceName:    serviceName,
		Registry:       registry,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("orders API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("orders API shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.Repository, func(), error) {
	db, cleanup, err := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, platformpostgres.Options{}, logger)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return ordermemory.NewRepository(), cleanup, nil
	}
	logger.Info("order repository configured with postgres")
	return orderpostgres.NewRepository(db), cleanup, nil
}

func buildGate(cfg Config) (*access.Gate, error) {
	gateCfg := access.Config{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}
	if cfg.AccessPolicyFile != "" {
		policy, err := access.NewFilePolicy(cfg.AccessPolicyFile)
		if err != nil {
			return nil, fmt.Errorf("load access policy %s: %w", cfg.AccessPolicyFile, err)
		}
		gateCfg.Policy = policy
	}
	return access.NewGate(gateCfg)
}

func buildNotifier(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (orderports.Notifier, func(), error) {
	logger := instruments.Logger
	fallback := logsink.New(logger)
	switch cfg.Notifier {
	case NotifierAMQP:
		publisher, err := amqp.Dial(ctx, amqp.Config{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange}, logger)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() { _ = publisher.Close() }, nil
	case NotifierTemporal:
		temporalClient, err := connectTemporalClient(cfg, instruments)
		if err != nil {
			logger.Warn("Temporal notifications unavailable, logging status changes instead", slog.String("error", err.Error()))
			return fallback, func() {}, nil
		}
		logger.Info("Temporal notifications enabled", slog.String("namespace", cfg.TemporalNamespace))
		return temporalnotify.NewNotifier(temporalClient), temporalClient.Close, nil
	}
	return fallback, func() {}, nil
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
