package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/config"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	handler "github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/handler/http"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	redisrepo "github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository/redis"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository/remote"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/database"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/health"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httpclient"
	pkgkafka "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/kafka"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	workspaces     *service.Workspaces
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Redis and Kafka are optional: without them vouchers are read straight from
// the API and events are dropped.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize tracing.
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.Enabled = cfg.OTelEnabled
	tracingCfg.OTLPEndpoint = cfg.OTelEndpoint
	tracingCfg.SampleRate = cfg.OTelSampleRate
	tracerShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Remote storefront API behind a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout
	httpCfg.MaxReadRetries = cfg.APIMaxReadRetries
	cbCfg := httpclient.DefaultCircuitBreakerConfig("storefront-api")
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests
	cbCfg.Timeout = cfg.CBOpenTimeout
	api := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger).
		WithFallback(remote.CircuitOpenFallback)
	client := remote.NewClient(api, cfg.APIBaseURL, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterNonCritical("storefront-api", func(context.Context) error {
		if api.State() == gobreaker.StateOpen {
			return errors.New("circuit breaker open")
		}
		return nil
	})

	// Voucher reads go through Redis when it is configured.
	var vouchers repository.VoucherStore = remote.NewVoucherStore(client)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB
		rdb, err = database.NewRedisClient(ctx, redisCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		vouchers = redisrepo.NewVoucherCache(rdb, vouchers, cfg.VoucherCacheTTL, logger)
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	var publisher event.Publisher = event.NoopPublisher{}
	var producer *pkgkafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	} else {
		logger.Warn("no kafka brokers configured, storefront events are dropped")
	}

	// Build the dependency graph.
	workspaces := service.NewWorkspaces(service.Dependencies{
		Carts:           remote.NewCartStore(client),
		Vouchers:        vouchers,
		Orders:          remote.NewOrderStore(client),
		Dashboard:       remote.NewDashboardStore(client),
		Publisher:       publisher,
		Logger:          logger,
		ShippingCost:    cfg.ShippingCost,
		DefaultSellerID: cfg.DefaultSellerID,
	})

	// HTTP router.
	router := handler.NewRouter(workspaces, healthHandler, logger, cfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		workspaces:     workspaces,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the workspace sweeper, and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go a.workspaces.Run(sweepCtx, a.cfg.WorkspaceSweep, a.cfg.WorkspaceIdle)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
