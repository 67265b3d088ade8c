package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/allmytab/startpage/internal/aggregator"
	"github.com/allmytab/startpage/internal/auth"
	"github.com/allmytab/startpage/internal/config"
	"github.com/allmytab/startpage/internal/engagement"
	"github.com/allmytab/startpage/internal/favicon"
	"github.com/allmytab/startpage/internal/httpserver"
	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/layout"
	"github.com/allmytab/startpage/internal/logger"
	"github.com/allmytab/startpage/internal/redis"
	"github.com/allmytab/startpage/internal/resolver"
	"github.com/allmytab/startpage/internal/scheduler"
	redisstore "github.com/allmytab/startpage/internal/store/redis"
	"github.com/allmytab/startpage/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.SeedReloader
	janitor     *scheduler.CacheJanitor
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	catResolver := resolver.New(store, loggerClient, cfg.CategoryFilterTTL, cfg.CategoryRawTTL)
	layoutManager := layout.NewManager(store, loggerClient)
	agg := aggregator.New(store, loggerClient, aggregator.Options{
		TTL:         cfg.BookmarkTTL,
		Retries:     cfg.FetchRetries,
		BackoffBase: cfg.BackoffBase,
		FetchDelay:  cfg.FetchDelay,
		StaggerStep: cfg.StaggerStep,
	})
	tracker := engagement.New(store, catResolver, layoutManager, loggerClient)
	icons := favicon.New(favicon.Options{
		Endpoint: cfg.FaviconEndpoint,
		Timeout:  cfg.FaviconTimeout,
		Debounce: cfg.FaviconDebounce,
	}, loggerClient)
	tokens := auth.NewTokenService(cfg.AuthSecret, cfg.TokenTTL)

	// Manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewSeedReloader(
		cfg.SeedFile,
		store,
		catResolver,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	janitor := scheduler.NewCacheJanitor(
		loggerClient,
		cfg.JanitorInterval,
		scheduler.DefaultJanitorMaxAge,
		catResolver,
		agg,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		RedisClient:   redisClient,
		Store:         store,
		Resolver:      catResolver,
		LayoutManager: layoutManager,
		Aggregator:    agg,
		Engagement:    tracker,
		Favicon:       icons,
		Tokens:        tokens,
		ReloadTrigger: reloadTrigger,
		TrustProxy:    cfg.TrustProxy,
		AdminCIDRs:    cfg.AdminCIDRs,
		RateBurst:     cfg.RateBurst,
		RatePerMinute: cfg.RatePerMinute,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		janitor:     janitor,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting startpage v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("startpage %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start seed reloader (loads the admin catalog and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start seed reloader: %w", err)
	}
	a.logger.Info("seed reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	a.janitor.Start(ctx)
	a.logger.Info("cache janitor started",
		logger.Duration("interval", a.cfg.JanitorInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ startpage stopped cleanly")
	return nil
}
