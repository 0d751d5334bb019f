package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/aleph-zero/linkstack/api"
	"github.com/aleph-zero/linkstack/service/info"
	"github.com/aleph-zero/linkstack/service/store"
	"github.com/aleph-zero/linkstack/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/riandyrn/otelchi"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serviceName     = "linkstack"
	serviceVersion  = "0.0.1"
	shutdownTimeout = 10 * time.Second
)

var collectorURL = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

/* *** Server Config *** */

type Config struct {
	Address         string
	Port            uint16
	NodeName        string
	PersistInterval time.Duration
	StoreConfig     *store.Config
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithAddress(address string) Option {
	return func(c *Config) {
		c.Address = address
	}
}

func WithPort(port uint16) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithNodeName(nodeName string) Option {
	return func(c *Config) {
		c.NodeName = nodeName
	}
}

// WithPersistInterval makes the server snapshot its stacks every interval. Zero
// disables periodic snapshots; the store is always persisted on shutdown.
func WithPersistInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PersistInterval = interval
	}
}

func WithStoreConfig(storeConfig *store.Config) Option {
	return func(c *Config) {
		c.StoreConfig = storeConfig
	}
}

func newLogger() *httplog.Logger {
	return httplog.NewLogger(serviceName, httplog.Options{
		LogLevel:         slog.LevelInfo,
		MessageFieldName: "msg",
		JSON:             true,
		Concise:          true,
		RequestHeaders:   false,
		ResponseHeaders:  false,
	})
}

// NewRouter wires every api route over the given services.
func NewRouter(logger *httplog.Logger, storeSvc store.Service, infoSvc info.Service) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat("/heartbeat"))
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(httplog.RequestLogger(logger))

	{
		handler := api.NewIdentityHandler(infoSvc)
		router.Get("/identity", handler.GetIdentity)
		router.Get("/info", handler.GetInfo)
	}
	{
		handler := api.NewStackHandler(storeSvc)
		router.Mount("/stacks", handler.Routes())
	}
	return router
}

func Bootstrap(config *Config) {
	ctx := context.Background()
	logger := newLogger()
	logger.InfoContext(ctx, "Bootstrapping server...", "config", config)

	/* *** Initialize Opentelemetry *** */
	shutdownTelemetry, err := telemetry.New(serviceName, serviceVersion, collectorURL)
	if err != nil {
		logger.ErrorContext(ctx, "Error initializing telemetry", "err", err)
		shutdownTelemetry = func() {}
	}
	defer shutdownTelemetry()

	/* *** Initialize services and inject them into the api routes *** */
	storeSvc := store.NewService(config.StoreConfig.Directory)
	if err := storeSvc.Open(); err != nil {
		logger.ErrorContext(ctx, "Error opening store", "err", err)
		os.Exit(1)
	}
	infoSvc := info.NewService(config.NodeName, config.Address, config.Port, serviceVersion)

	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler: NewRouter(logger, storeSvc, infoSvc),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Error starting server", "err", err)
		}
		logger.InfoContext(ctx, "Server stopped accepting connections")
	}()

	persistCtx, stopPersisting := context.WithCancel(ctx)
	defer stopPersisting()
	if config.PersistInterval > 0 {
		go persistPeriodically(persistCtx, logger, storeSvc, config.PersistInterval)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(ctx, "Error shutting down server", "err", err)
	}
	stopPersisting()
	if err := storeSvc.Persist(); err != nil {
		logger.ErrorContext(ctx, "Error persisting store", "err", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Server shutdown complete")
}

func persistPeriodically(ctx context.Context, logger *httplog.Logger, storeSvc store.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := storeSvc.Persist(); err != nil {
				logger.ErrorContext(ctx, "Error persisting store", "err", err)
			}
		}
	}
}
