package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"article-service/internal/common/pagination"
	"article-service/internal/config"
	pgRepo "article-service/internal/infra/adapter/persistence/postgres"
	"article-service/internal/infra/cache"
	"article-service/internal/infra/db"
	"article-service/internal/observability/logging"
	"article-service/internal/observability/tracing"
	"article-service/pkg/ratelimit"

	artUC "article-service/internal/usecase/article"

	hhttp "article-service/internal/handler/http"
	harticle "article-service/internal/handler/http/article"
	hauth "article-service/internal/handler/http/auth"
	"article-service/internal/handler/http/middleware"
	"article-service/internal/handler/http/requestid"
)

func main() {
	logger := initLogger()

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger = logging.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(cfg.OTelEnabled, tracing.InstrumentationName)
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}

	database := initDatabase(logger, cfg)
	redisClient := initRedis(logger, cfg)

	components := setupServer(logger, cfg, database, redisClient)
	runServer(logger, cfg, components)

	if err := shutdownTracing(context.Background()); err != nil {
		logger.Error("failed to flush traces", slog.Any("error", err))
	}
	if err := components.Cache.Close(); err != nil {
		logger.Error("failed to close redis client", slog.Any("error", err))
	}
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", slog.Any("error", err))
	}
	logger.Info("shutdown complete")
}

// initLogger returns the bootstrap logger used until configuration is loaded.
func initLogger() *slog.Logger {
	logger := logging.NewLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the pool and creates the schema. Failure here is fatal:
// the database is the system of record.
func initDatabase(logger *slog.Logger, cfg *config.Config) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg.DatabaseURL, db.ConnectionConfigFromEnv())
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		_ = database.Close()
		os.Exit(1)
	}
	return database
}

// initRedis builds the client. An unreachable Redis is logged, not fatal:
// the cache and the rate limiter both degrade without it.
func initRedis(logger *slog.Logger, cfg *config.Config) *redis.Client {
	client, err := cache.NewClient(cfg.RedisURL, cfg.CacheTimeout)
	if err != nil {
		logger.Error("invalid redis configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, serving without cache",
			slog.String("error", err.Error()))
	}
	return client
}

// ServerComponents holds what runServer needs beyond the handler.
type ServerComponents struct {
	Handler     http.Handler
	Cache       *cache.RedisStore
	MemoryStore *ratelimit.MemoryCounterStore
}

func setupServer(logger *slog.Logger, cfg *config.Config, database *sql.DB, redisClient *redis.Client) *ServerComponents {
	store := cache.NewRedisStore(redisClient, cache.Config{
		Timeout: cfg.CacheTimeout,
	}, logger)

	artSvc := &artUC.Service{
		Repo:     pgRepo.NewArticleRepo(database),
		Cache:    store,
		CacheTTL: cfg.CacheTTL,
	}

	var (
		limiter     *middleware.IPRateLimiter
		memoryStore *ratelimit.MemoryCounterStore
	)
	if cfg.RateLimit.Enabled {
		proxyConfig, err := middleware.ParseTrustedProxyConfig(cfg.RateLimit.TrustProxy, cfg.RateLimit.TrustedProxies)
		if err != nil {
			logger.Error("failed to parse trusted proxy configuration", slog.Any("error", err))
			os.Exit(1)
		}
		if proxyConfig.Enabled {
			logger.Info("rate limiting: trusted proxy mode enabled",
				slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
		} else {
			logger.Info("rate limiting: using RemoteAddr, proxy headers ignored")
		}

		var counters ratelimit.CounterStore = store
		if cfg.RateLimit.Store == config.StoreMemory {
			memoryStore = ratelimit.NewMemoryCounterStore(&ratelimit.SystemClock{})
			counters = memoryStore
		}

		limiter = middleware.NewIPRateLimiter(
			cfg.RateLimitConfig(),
			middleware.NewIPExtractor(proxyConfig),
			counters,
			ratelimit.NewFixedWindowAlgorithm(&ratelimit.SystemClock{}, middleware.LimiterTypeIP),
			ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer),
			logger,
			hauth.IsPublicEndpoint,
		)

		logger.Info("rate limiting initialized",
			slog.Int("limit", cfg.RateLimit.MaxRequests),
			slog.Duration("window", cfg.RateLimit.Window),
			slog.String("store", cfg.RateLimit.Store))
	} else {
		logger.Warn("rate limiting is DISABLED")
	}

	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set, article routes are open")
	}

	cors, err := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("invalid CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("CORS configured", slog.Any("allowed_origins", cfg.CORS.AllowedOrigins))

	mux := setupRoutes(cfg, database, store, artSvc)
	return &ServerComponents{
		Handler:     applyMiddleware(logger, cfg, mux, cors, limiter),
		Cache:       store,
		MemoryStore: memoryStore,
	}
}

func setupRoutes(cfg *config.Config, database *sql.DB, store *cache.RedisStore, artSvc *artUC.Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: hhttp.PingFunc(database.PingContext), Cache: store})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: hhttp.PingFunc(database.PingContext)})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	harticle.Register(mux, artSvc, harticle.RouteConfig{
		Prefix:     cfg.APIPrefix,
		APIKey:     cfg.APIKey,
		Pagination: pagination.LoadFromEnv(),
	})
	return mux
}

// applyMiddleware wraps handler; the first middleware listed is the outermost.
// CORS sits outside the limiter so preflights are answered without being counted.
func applyMiddleware(logger *slog.Logger, cfg *config.Config, handler http.Handler, cors hhttp.Middleware, limiter *middleware.IPRateLimiter) http.Handler {
	chain := []hhttp.Middleware{
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		cors,
	}
	if limiter != nil {
		chain = append(chain, limiter.Middleware())
	}
	chain = append(chain,
		hhttp.MetricsMiddleware,
		hhttp.Timeout(cfg.RequestTimeout),
		hhttp.LimitRequestBody(cfg.MaxBodyBytes),
	)
	return hhttp.Chain(handler, chain...)
}

// runServer serves until SIGINT or SIGTERM, then drains in-flight requests
// for up to cfg.ShutdownTimeout.
func runServer(logger *slog.Logger, cfg *config.Config, components *ServerComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.MemoryStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.MemoryStore, cfg.RateLimit.CleanupInterval, logger)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("server failed", slog.Any("error", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
