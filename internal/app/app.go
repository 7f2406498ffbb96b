// Package app assembles the components named by a configuration into a
// running service. The CLI and the server binary share it.
package app

import (
	"io"

	"go.uber.org/zap"

	"sitemate/adapters/completion"
	httpadapter "sitemate/adapters/http"
	"sitemate/adapters/pricing"
	"sitemate/adapters/storage"
	"sitemate/adapters/weather"
	"sitemate/core/orchestrator"
	"sitemate/internal/config"
	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

// App holds the wired components
type App struct {
	Config       *config.Config
	Resolver     *pricing.Metrics
	Store        storage.Store
	Ledger       storage.Ledger
	Orchestrator *orchestrator.Orchestrator
	Weather      *weather.Client
	Logger       *zap.Logger

	// CompletionErr is set when no completion client could be built.
	// Requests that need one fail with a configuration error.
	CompletionErr error
}

// New builds every component from cfg. A missing completion key is not
// fatal: deterministic commands still work without it.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logging.OrNop(logger)

	resolver, err := pricing.New(PricingOptions(cfg, logger.Named("pricing")))
	if err != nil {
		return nil, err
	}

	store, err := storage.StoreFactory(storage.Backend(cfg.Storage.Backend), storage.Options{
		Path: cfg.Storage.Path,
		DSN:  cfg.Storage.DSN,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Resolver: resolver,
		Store:    store,
		Weather:  weather.NewClient("", 0),
		Logger:   logger,
	}
	if l, ok := store.(storage.Ledger); ok {
		a.Ledger = l
	}

	opts := orchestrator.Options{
		Resolver: resolver,
		Timeout:  cfg.Completion.Timeout(),
		Logger:   logger.Named("orchestrator"),
	}
	client, err := completion.New(completion.Config{
		Endpoint:          cfg.Completion.Endpoint,
		Model:             cfg.Completion.Model,
		APIKey:            cfg.Completion.APIKey,
		Temperature:       cfg.Completion.Temperature,
		RequestsPerMinute: cfg.Completion.RequestsPerMinute,
		Logger:            logger.Named("completion"),
	})
	if err != nil {
		a.CompletionErr = err
		logger.Warn("completion service disabled", zap.Error(err))
	} else {
		opts.Completer = client
	}
	a.Orchestrator = orchestrator.New(opts)

	return a, nil
}

// PricingOptions maps the pricing section of cfg onto resolver options
func PricingOptions(cfg *config.Config, logger *zap.Logger) pricing.Options {
	return pricing.Options{
		Mode:      pricing.Mode(cfg.Pricing.Mode),
		RatesPath: cfg.Pricing.RatesPath,
		CacheTTL:  cfg.Pricing.CacheTTL(),
		Remote: pricing.RemoteConfig{
			AppID:             cfg.Pricing.SearchAppID,
			APIKey:            cfg.Pricing.SearchAPIKey,
			Index:             cfg.Pricing.SearchIndex,
			RequestsPerSecond: cfg.Pricing.SearchRequestsPerSecond,
		},
		Logger: logger,
	}
}

// HTTPConfig maps the server and site sections of cfg onto the HTTP adapter
func HTTPConfig(cfg *config.Config) *httpadapter.Config {
	out := httpadapter.DefaultConfig()
	if cfg.Server.Address != "" {
		out.Address = cfg.Server.Address
	}
	out.AllowedOrigins = cfg.Server.AllowedOrigins
	out.RateLimit = cfg.Server.RequestsPerSecond
	out.Burst = cfg.Server.Burst
	if cfg.Site.Location != "" {
		out.DefaultLocation = cfg.Site.Location
	}
	if cfg.Site.Soil != "" {
		out.DefaultSoil = cfg.Site.Soil
	}
	return out
}

// HTTP returns the HTTP adapter serving this app
func (a *App) HTTP() *httpadapter.Adapter {
	return httpadapter.New(httpadapter.Deps{
		Estimator: a.Orchestrator,
		Resolver:  a.Resolver,
		Store:     a.Store,
		Ledger:    a.Ledger,
		Weather:   a.Weather,
		Logger:    a.Logger.Named("http"),
	}, HTTPConfig(a.Config))
}

var _ httpadapter.Auditor = (*orchestrator.Orchestrator)(nil)

// Close releases the store
func (a *App) Close() error {
	if c, ok := a.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return errors.Wrap(errors.TypeInternal, "failed to close store", err)
		}
	}
	return nil
}
