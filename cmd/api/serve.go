package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/eventreg/internal/config"
	"github.com/geocoder89/eventreg/internal/db"
	httpx "github.com/geocoder89/eventreg/internal/http"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/ratelimit"
	"github.com/geocoder89/eventreg/internal/redisclient"
	"github.com/geocoder89/eventreg/internal/repo/memory"
	"github.com/geocoder89/eventreg/internal/repo/postgres"
	"github.com/geocoder89/eventreg/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var serveMigrate bool

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
	rootCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		flush, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: cfg.OTelServiceName,
			Environment: cfg.Env,
			Endpoint:    cfg.OTelEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = flush(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	checks := map[string]handlers.Check{}

	var (
		events        service.EventStore
		registrations service.AttendeeStore
	)

	switch cfg.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		events, registrations = store, store
		checks["store"] = store.Ping
		log.Warn("using in-memory store; data is lost on restart")

	default:
		if serveMigrate {
			if err := db.MigrateUp(cfg.DBURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied")
		}

		pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DBURL, MaxConns: cfg.DBMaxConns})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		eventsRepo := postgres.NewEventsRepo(pool, prom)
		events = eventsRepo
		registrations = postgres.NewAttendeesRepo(pool, prom)
		checks["store"] = eventsRepo.Ping
	}

	var limiter ratelimit.Limiter

	switch {
	case cfg.RegisterRateLimit == 0:
		log.Info("registration rate limiting disabled")

	case cfg.RedisAddr != "":
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		limiter = ratelimit.NewRedisLimiter(rdb.Raw(), cfg.RegisterRateLimit, cfg.RegisterRateWindow)
		checks["redis"] = rdb.Ping

	default:
		limiter = ratelimit.NewMemoryLimiter(cfg.RegisterRateLimit, cfg.RegisterRateWindow)
	}

	serviceName := ""
	if cfg.OTelEnabled {
		serviceName = cfg.OTelServiceName
	}

	router := httpx.NewRouter(httpx.Deps{
		Env:           cfg.Env,
		ServiceName:   serviceName,
		Log:           log,
		Events:        service.NewEventService(events, log, cfg.StoreTimeout),
		Registrations: service.NewRegistrationService(registrations, log, prom, cfg.StoreTimeout),
		Checks:        checks,
		Prom:          prom,
		Gatherer:      reg,
		Limiter:       limiter,
		CORSOrigins:   cfg.CORSOrigins,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "err", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	return shutdown(srv, log)
}

// graceful shutdown
func shutdown(srv *http.Server, log *slog.Logger) error {
	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}
