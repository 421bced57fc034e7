package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"threatshare/api"
	"threatshare/config"
	"threatshare/search"
	"threatshare/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// App represents the threatshare server with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	Storage *StorageComponents
	Cache   *CacheComponents

	// Services
	Engine    *search.Engine
	Service   *service.IOCService
	APIServer *api.API

	// Lifecycle
	serviceWg *sync.WaitGroup
}

// NewApp creates a new application instance and initializes all components.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{serviceWg: &sync.WaitGroup{}}

	logger, sugar, err := InitLogger(os.Getenv(config.EnvPrefix + "_LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Info("threatshare starting...")

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if ParseLevel(cfg.Log.Level) != logger.Level() {
		_ = logger.Sync()
		if app.Logger, app.Sugar, err = InitLogger(cfg.Log.Level); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	if err := app.wire(ctx); err != nil {
		app.Sugar.Errorw("Initialization failed", "error", err)
		app.closeBackends()
		return nil, err
	}
	return app, nil
}

// wire connects storage and the cache and builds the search, submission
// and HTTP layers on top of them.
func (a *App) wire(ctx context.Context) error {
	storageComponents, err := InitStorage(ctx, a.Config, a.Sugar)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = storageComponents

	cacheComponents, err := InitCache(ctx, a.Config, a.Sugar)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.Cache = cacheComponents

	// Typed nils must not leak into the interface parameters below
	var (
		engineCache  search.Cache
		invalidator  service.CacheInvalidator
		sharedPinger api.CachePinger
	)
	if a.Cache != nil {
		engineCache = a.Cache.Cache
		invalidator = a.Cache.Cache
		if a.Cache.Redis != nil {
			sharedPinger = a.Cache
		}
	}

	a.Engine = search.NewEngine(a.Storage.IOCs, engineCache, search.Config{
		CacheTTL:     a.Config.Cache.TTL,
		QueryTimeout: a.Config.Search.QueryTimeout,
		ExportLimit:  a.Config.Search.ExportLimit,
	}, a.Sugar)
	a.Service = service.NewIOCService(a.Storage.IOCs, invalidator, a.Sugar)
	a.APIServer = api.NewAPI(a.Config, a.Engine, a.Service, a.Storage.IOCs, sharedPinger, a.Sugar)
	return nil
}

// Start starts the API server in the background.
func (a *App) Start(_ context.Context) error {
	if a.APIServer == nil {
		return errors.New("application not initialized")
	}

	addr := fmt.Sprintf(":%d", a.Config.API.Port)
	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()

		var err error
		if a.Config.API.TLS {
			a.Sugar.Infow("Starting API server with TLS", "addr", addr)
			err = a.APIServer.StartTLS(addr, a.Config.API.CertFile, a.Config.API.KeyFile)
		} else {
			a.Sugar.Infow("Starting API server", "addr", addr)
			err = a.APIServer.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Errorw("API server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	a.Sugar.Infow("Shutdown signal received", "signal", sig.String())
}

// Shutdown stops the API server, waits for in-flight requests and closes
// the cache and storage connections.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("API server shutdown failed", "error", err)
		}
		cancel()
	}
	a.serviceWg.Wait()

	a.closeBackends()

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}

func (a *App) closeBackends() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Sugar.Warnw("Failed to close cache", "error", err)
		}
	}
	if a.Storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Storage.Close(ctx); err != nil {
			a.Sugar.Warnw("Failed to close storage", "error", err)
		}
	}
}
