// Package http exposes the estimation engine over a REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitemate/adapters/pricing"
	"sitemate/adapters/storage"
	"sitemate/core/boq"
	"sitemate/core/orchestrator"
	"sitemate/core/types"
	"sitemate/core/weather"
	"sitemate/internal/logging"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Config holds HTTP adapter configuration
type Config struct {
	// Address to listen on
	Address string `json:"address"`

	// ReadTimeout for requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// MaxBodySize limits request body size
	MaxBodySize int64 `json:"max_body_size"`

	// AllowedOrigins for CORS; empty allows all
	AllowedOrigins []string `json:"allowed_origins"`

	// RateLimit per client IP (requests per second); zero disables it
	RateLimit float64 `json:"rate_limit"`

	// Burst per client IP
	Burst int `json:"burst"`

	// DefaultLocation applies when a request omits the location
	DefaultLocation types.Location `json:"default_location"`

	// DefaultSoil applies when a request omits the soil
	DefaultSoil types.SoilType `json:"default_soil"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		MaxBodySize:     1 << 20,
		RateLimit:       5,
		Burst:           10,
		DefaultLocation: types.LocationLekki,
		DefaultSoil:     types.SoilFirmSandy,
	}
}

// Estimator runs a free-text estimation request
type Estimator interface {
	Handle(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
}

// Auditor reviews a priced BOQ. An Estimator may also implement it.
type Auditor interface {
	Audit(ctx context.Context, table *types.BOQTable) (string, error)
}

// WeatherSource returns current site weather advice
type WeatherSource interface {
	Current(ctx context.Context, location types.Location) (weather.Advisory, error)
}

// Deps are the components the API is served from
type Deps struct {
	Estimator Estimator
	Resolver  boq.PriceResolver
	Store     storage.Store
	Weather   WeatherSource
	Logger    *zap.Logger

	// Ledger defaults to the store when the store keeps one
	Ledger storage.Ledger
}

// Adapter is the HTTP adapter
type Adapter struct {
	estimator Estimator
	resolver  boq.PriceResolver
	store     storage.Store
	ledger    storage.Ledger
	weather   WeatherSource
	config    *Config
	logger    *zap.Logger
	limiter   *ipRateLimiter
	server    *http.Server

	// Metrics
	requestCount   int64
	errorCount     int64
	totalLatencyMs int64
	mu             sync.RWMutex
}

// New creates a new HTTP adapter. A missing resolver uses the built-in
// rate table and a missing store keeps projects in memory.
func New(deps Deps, config *Config) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	a := &Adapter{
		estimator: deps.Estimator,
		resolver:  deps.Resolver,
		store:     deps.Store,
		ledger:    deps.Ledger,
		weather:   deps.Weather,
		config:    config,
		logger:    logging.OrNop(deps.Logger),
	}
	if a.resolver == nil {
		a.resolver = pricing.NewStaticTable(pricing.DefaultRates())
	}
	if a.store == nil {
		a.store = storage.NewMemoryStore()
	}
	if l, ok := a.store.(storage.Ledger); ok && a.ledger == nil {
		a.ledger = l
	}
	if config.RateLimit > 0 {
		a.limiter = newIPRateLimiter(config.RateLimit, config.Burst)
	}
	return a
}

// Router returns the HTTP handler
func (a *Adapter) Router() *gin.Engine {
	r := gin.New()
	r.Use(a.recoveryMiddleware(), a.requestIDMiddleware(), a.loggingMiddleware())
	r.Use(cors.New(a.corsConfig()))
	if a.config.MaxBodySize > 0 {
		r.Use(a.bodyLimitMiddleware())
	}

	// Health endpoints
	r.GET("/health", a.handleHealth)
	r.GET("/metrics", a.handleMetrics)

	v1 := r.Group("/api/v1")
	if a.limiter != nil {
		v1.Use(a.limiter.middleware())
	}
	v1.POST("/estimate", a.handleEstimate)
	v1.POST("/feasibility", a.handleFeasibility)
	v1.POST("/foundations/strip", a.handleStrip)
	v1.POST("/foundations/pad", a.handlePad)
	v1.POST("/foundations/select", a.handleSelect)
	v1.POST("/boq/convert", a.handleConvert)
	v1.POST("/boq/price", a.handlePrice)
	v1.POST("/scenario", a.handleScenario)
	v1.GET("/weather", a.handleWeather)

	v1.GET("/projects", a.handleListProjects)
	v1.POST("/projects", a.handleSaveProject)
	v1.GET("/projects/:name", a.handleGetProject)
	v1.DELETE("/projects/:name", a.handleDeleteProject)
	v1.GET("/projects/:name/export.xlsx", a.handleExportWorkbook)
	v1.GET("/projects/:name/report.pdf", a.handleExportReport)
	v1.GET("/projects/:name/order", a.handleOrder)
	v1.POST("/projects/:name/audit", a.handleAudit)

	// Site execution
	v1.GET("/projects/:name/expenses", a.handleListExpenses)
	v1.POST("/projects/:name/expenses", a.handleAddExpense)
	v1.GET("/projects/:name/expenses/report.pdf", a.handleExpenseReport)
	v1.GET("/projects/:name/inventory", a.handleInventory)
	v1.POST("/projects/:name/inventory", a.handleMoveStock)
	v1.GET("/projects/:name/inventory/report.pdf", a.handleStockReport)
	v1.GET("/projects/:name/diary", a.handleDiary)
	v1.POST("/projects/:name/diary", a.handleAddDiary)

	// Marketplace
	v1.GET("/suppliers", a.handleSuppliers)
	v1.POST("/suppliers", a.handleRegisterSupplier)
	v1.GET("/suppliers/:company/bids", a.handleSupplierBids)
	v1.GET("/tenders", a.handleTenders)
	v1.GET("/projects/:name/bids", a.handleBids)
	v1.POST("/projects/:name/bids", a.handleSubmitBid)
	v1.PATCH("/bids/:id", a.handleDecideBid)

	return r
}

// Start starts the HTTP server
func (a *Adapter) Start() error {
	a.server = &http.Server{
		Addr:         a.config.Address,
		Handler:      a.Router(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}
	a.logger.Info("http server listening", zap.String("addr", a.config.Address))
	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (a *Adapter) Shutdown(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

func (a *Adapter) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if len(a.config.AllowedOrigins) == 0 || a.config.AllowedOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = a.config.AllowedOrigins
	}
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	return cfg
}
