package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/yassinehussein4-cyber/storefront/api/controllers"
	"github.com/yassinehussein4-cyber/storefront/api/routes"
	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/internal/checkout"
	"github.com/yassinehussein4-cyber/storefront/internal/cron"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/internal/storefront"
	"github.com/yassinehussein4-cyber/storefront/pkg/config"
	"github.com/yassinehussein4-cyber/storefront/pkg/instance"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	"github.com/yassinehussein4-cyber/storefront/pkg/metrics"
	pkgredis "github.com/yassinehussein4-cyber/storefront/pkg/redis"
)

const (
	serviceName     = "storefront"
	sweepLockName   = "session-sweep"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if !cfg.CMS.Configured() {
		logg.Warn(logg.WithField(context.Background(), "missing", cfg.CMS.Missing()), "cms credentials missing; catalog will be empty")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	catalogMetrics := metrics.NewCatalogMetrics(reg)
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)
	jobMetrics := metrics.NewJobMetrics(reg)

	var (
		redisClient *pkgredis.Client
		redisPinger controllers.Pinger
		idempotency pkgredis.IdempotencyStore
		cacheOpts   = []catalog.CacheOption{catalog.WithCacheLogger(logg)}
		sweepLock   cron.Lock
	)
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		redisPinger = redisClient
		idempotency = redisClient
		cacheOpts = append(cacheOpts, catalog.WithSharedCache(redisClient, cfg.Redis.CategoryTTL))
		sweepLock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(sweepLockName), cfg.Session.SweepInterval)
		if err != nil {
			logg.Error(context.Background(), "failed to create sweep lock", err)
			os.Exit(1)
		}
	} else {
		logg.Info(context.Background(), "redis not configured; caching and locks stay in process")
	}

	client := catalog.NewClient(catalog.ClientParams{Config: cfg.CMS, Logger: logg, Metrics: catalogMetrics})
	store := catalog.NewCachedStore(client, cacheOpts...)
	svc := storefront.NewService(storefront.ServiceParams{Store: store, Logger: logg, Metrics: catalogMetrics})

	registry := session.NewRegistry(session.RegistryParams{
		Options: session.Options{
			SearchDebounce:  cfg.Storefront.SearchDebounce,
			ToastTTL:        cfg.Storefront.ToastTTL,
			Pricing:         checkout.PricingFromConfig(cfg.Storefront),
			CheckoutMetrics: checkoutMetrics,
		},
		IdleTTL: cfg.Session.IdleTTL,
		Logger:  logg,
	})
	registry.OnCreate(svc.Attach)

	sweepJob, err := cron.NewSessionSweepJob(registry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep job", err)
		os.Exit(1)
	}
	jobRegistry, err := cron.NewRegistry(sweepJob)
	if err != nil {
		logg.Error(context.Background(), "failed to register jobs", err)
		os.Exit(1)
	}
	jobs, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   jobRegistry,
		Lock:       sweepLock,
		Metrics:    jobMetrics,
		Interval:   cfg.Session.SweepInterval,
		JobTimeout: cfg.Session.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create job runner", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisPinger, idempotency, registry, store, svc, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr, "instance": instance.GetID()})
	logg.Info(ctx, "starting storefront server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := jobs.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()
	closeErr := multierr.Combine(registry.Close(), redisClient.Close())
	if err := multierr.Append(runErr, closeErr); err != nil {
		logg.Error(ctx, "storefront stopped with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "storefront shut down gracefully")
}
