package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/AttuneLearning/cadence-access/pkg/api"
	"github.com/AttuneLearning/cadence-access/pkg/authz"
	"github.com/AttuneLearning/cadence-access/pkg/config"
	"github.com/AttuneLearning/cadence-access/pkg/departments"
	"github.com/AttuneLearning/cadence-access/pkg/httputil"
	"github.com/AttuneLearning/cadence-access/pkg/navigation"
	"github.com/AttuneLearning/cadence-access/pkg/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("Starting cadence-access")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	// Preference storage. Without a Redis URL the service still runs, it
	// just forgets preferences on restart.
	var redisClient *redis.Client
	var prefs navigation.PreferenceStore
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Error("Invalid Redis URL")
			os.Exit(1)
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		opts.DB = cfg.Redis.DB
		redisClient = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Error("Failed to connect to Redis")
			os.Exit(1)
		}
		prefs = navigation.NewRedisPreferenceStore(redisClient, "")
		logger.Info("Using Redis preference store")
	} else {
		prefs = navigation.NewMemoryPreferenceStore()
		logger.Warn("No Redis URL configured, preferences will not survive restarts")
	}

	switcher := departments.NewClient(cfg.Departments.BaseURL, &http.Client{
		Timeout:   cfg.Departments.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})

	holder := authz.NewHolder()
	store := navigation.NewStore(prefs, switcher, logger, metrics)
	store.RestorePreferences(ctx)

	handlerLogger := logrus.New()
	handlerLogger.SetFormatter(&logrus.JSONFormatter{})
	handlers := api.NewHandlers(holder, store, handlerLogger, metrics)

	router := mux.NewRouter()
	handlers.RegisterRoutes(router)
	router.Use(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger, metrics),
		httputil.RecoveryMiddleware(logger),
	)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes.
	healthChecker := observability.NewHealthChecker(redisClient)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthChecker.Liveness)
	healthMux.HandleFunc("/readyz", healthChecker.Readiness)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	// Periodic preference reconciliation. Covers saves that were dropped by
	// transient Redis failures.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		store.FlushPreferences(context.Background())
	}); err != nil {
		logger.WithError(err).Error("Failed to schedule preference flush")
		os.Exit(1)
	}
	scheduler.Start()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		scheduler.Stop()
		store.FlushPreferences(shutdownCtx)

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("API server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Health server shutdown failed")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Tracing shutdown failed")
		}
		if redisClient != nil {
			redisClient.Close()
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
