// Package api threatshare IOC API
//
//	@title			threatshare API
//	@version		1.0
//	@description	Search, filter, export and submit indicators of compromise
//	@termsOfService	http://swagger.io/terms/
//
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
//
// @host		localhost:8081
// @BasePath	/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Enter "Bearer <token>"
package api

import (
	"context"
	"net/http"

	"threatshare/config"
	"threatshare/search"
	"threatshare/service"
	"threatshare/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// maxRequestBodySize bounds JSON request bodies
const maxRequestBodySize = 1 << 20 // 1MB

// StatsStorer provides the aggregate views and the storage health probe
type StatsStorer interface {
	PopularTags(ctx context.Context, limit int) ([]storage.TagCount, error)
	DashboardStats(ctx context.Context) (*storage.DashboardStats, error)
	HealthCheck(ctx context.Context) error
}

// CachePinger reports the health of the shared cache tier
type CachePinger interface {
	Ping(ctx context.Context) error
}

// API holds the API server
type API struct {
	router  *mux.Router
	server  *http.Server
	config  *config.Config
	engine  *search.Engine
	service *service.IOCService
	stats   StatsStorer
	cache   CachePinger
	logger  *zap.SugaredLogger
}

// NewAPI creates a new API server. cache may be nil when no shared cache is configured.
func NewAPI(cfg *config.Config, engine *search.Engine, svc *service.IOCService, stats StatsStorer, cache CachePinger, logger *zap.SugaredLogger) *API {
	api := &API{
		router:  mux.NewRouter(),
		config:  cfg,
		engine:  engine,
		service: svc,
		stats:   stats,
		cache:   cache,
		logger:  logger,
	}
	api.setupRoutes()
	return api
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.requestIDMiddleware)
	a.router.Use(a.metricsMiddleware)
	a.router.Use(a.corsMiddleware)

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())
	a.router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	v1 := a.router.PathPrefix("/api/v1").Subrouter()
	if a.config.Auth.Enabled {
		v1.Use(a.jwtAuthMiddleware)
	}

	v1.HandleFunc("/search/advanced", a.advancedSearch).Methods("GET")
	v1.HandleFunc("/search/quick", a.quickSearch).Methods("GET")
	v1.HandleFunc("/search/ioc/{value}", a.getIOCByValue).Methods("GET")
	v1.HandleFunc("/search/filters", a.getSearchFilters).Methods("GET")
	v1.HandleFunc("/search/export", a.exportSearchResults).Methods("GET")

	v1.HandleFunc("/iocs", a.listIOCs).Methods("GET")
	v1.HandleFunc("/iocs", a.submitIOC).Methods("POST")
	v1.HandleFunc("/iocs/type/{type}", a.getIOCsByType).Methods("GET")
	v1.HandleFunc("/iocs/{id}", a.getIOC).Methods("GET")
	v1.HandleFunc("/iocs/{id}/verify", a.verifyIOC).Methods("PATCH")

	v1.HandleFunc("/tags/popular", a.getPopularTags).Methods("GET")
	v1.HandleFunc("/analytics/dashboard", a.getDashboard).Methods("GET")

	// Preflight requests are answered by corsMiddleware; they only need a matching route
	a.router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

// Handler returns the root HTTP handler
func (a *API) Handler() http.Handler {
	return a.router
}

func (a *API) newServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  a.config.API.ReadTimeout,
		WriteTimeout: a.config.API.WriteTimeout,
	}
}

// Start starts the API server
func (a *API) Start(addr string) error {
	a.server = a.newServer(addr)
	return a.server.ListenAndServe()
}

// StartTLS starts the API server with TLS
func (a *API) StartTLS(addr, certFile, keyFile string) error {
	a.server = a.newServer(addr)
	return a.server.ListenAndServeTLS(certFile, keyFile)
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}
