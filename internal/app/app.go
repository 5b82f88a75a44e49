package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/bcart01v/atlas-cinema-guru/internal/auth"
	"github.com/bcart01v/atlas-cinema-guru/internal/cache"
	"github.com/bcart01v/atlas-cinema-guru/internal/config"
	"github.com/bcart01v/atlas-cinema-guru/internal/event"
	handler "github.com/bcart01v/atlas-cinema-guru/internal/handler/http"
	"github.com/bcart01v/atlas-cinema-guru/internal/repository/postgres"
	"github.com/bcart01v/atlas-cinema-guru/internal/service"
	"github.com/bcart01v/atlas-cinema-guru/migrations"
	"github.com/bcart01v/atlas-cinema-guru/pkg/database"
	"github.com/bcart01v/atlas-cinema-guru/pkg/health"
	pkgkafka "github.com/bcart01v/atlas-cinema-guru/pkg/kafka"
	"github.com/bcart01v/atlas-cinema-guru/pkg/middleware"
	"github.com/bcart01v/atlas-cinema-guru/pkg/tracing"
)

// App wires together all dependencies and runs the cinema guru API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	stopLimiter    context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// Redis and Kafka are optional; without them list pages are not cached and
// toggle events are dropped.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Anything started before a later step fails is released on return.
	var undo cleanup
	defer undo.run()
	undo.add(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown after failed start", slog.String("error", err.Error()))
		}
	})

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	undo.add(pool.Close)
	logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// Redis list cache.
	var (
		rdb       *redis.Client
		listCache service.ListCache = cache.Noop{}
	)
	if cfg.RedisEnabled {
		rdb, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
		pageCache := cache.NewListCache(rdb, cfg.CacheTTL)
		listCache = pageCache
		healthHandler.RegisterNonCritical("redis", pageCache.Ping)
	}

	// Kafka producer.
	var (
		producer *pkgkafka.Producer
		events   service.EventPublisher = event.Discard{}
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer)
	movieRepo := postgres.NewMovieRepository(pool)
	relationRepo := postgres.NewRelationRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)

	libraryService := service.NewLibraryService(relationRepo, listCache, events, cfg.PageSize, logger)
	catalogService := service.NewCatalogService(movieRepo, listCache, cfg.PageSize, logger)
	activityService := service.NewActivityService(activityRepo, listCache, cfg.PageSize, logger)

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	limiter := middleware.NewRateLimiter(limiterCtx, cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute, logger)

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    config.ServiceName,
		Library:        libraryService,
		Catalog:        catalogService,
		Activities:     activityService,
		TokenValidator: jwtManager.Validator(),
		Health:         healthHandler,
		RateLimiter:    limiter,
		CORS:           cfg.CORS(),
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	undo.release()
	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
		stopLimiter:    stopLimiter,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

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
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in dependency order: HTTP first so in-flight
// requests drain, then the tracer flushes their spans, then the clients.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.stopLimiter()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// cleanup collects release funcs for a partially built App and runs them
// in reverse order unless released first.
type cleanup struct {
	fns []func()
}

func (c *cleanup) add(fn func()) { c.fns = append(c.fns, fn) }

// release hands ownership of everything registered to the caller.
func (c *cleanup) release() { c.fns = nil }

func (c *cleanup) run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}
