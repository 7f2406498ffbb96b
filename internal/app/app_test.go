package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitemate/adapters/pricing"
	"sitemate/core/orchestrator"
	"sitemate/core/types"
	"sitemate/internal/config"
	"sitemate/internal/errors"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	cfg.Completion.APIKey = ""
	return cfg
}

func TestNewWithoutCompletionKey(t *testing.T) {
	a, err := New(memoryConfig(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if !errors.IsType(a.CompletionErr, errors.TypeConfig) {
		t.Errorf("expected config error for missing key, got %v", a.CompletionErr)
	}

	resp, err := a.Orchestrator.Handle(context.Background(), orchestrator.Request{
		Text:     "Estimate a strip foundation for my bungalow please",
		Location: types.LocationLekki,
		Soil:     types.SoilFirmSandy,
	})
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error from Handle, got %v", err)
	}
	if resp == nil {
		t.Error("expected partial response")
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Backend = "s3"
	if _, err := New(cfg, nil); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestPricingOptions(t *testing.T) {
	cfg := memoryConfig()
	cfg.Pricing.Mode = "hybrid"
	cfg.Pricing.SearchAppID = "APP"
	cfg.Pricing.SearchAPIKey = "key"

	opts := PricingOptions(cfg, nil)
	if opts.Mode != pricing.ModeHybrid {
		t.Errorf("expected hybrid, got %s", opts.Mode)
	}
	if opts.Remote.AppID != "APP" || opts.Remote.Index != "construction_materials" {
		t.Errorf("unexpected remote config %+v", opts.Remote)
	}
	if opts.CacheTTL.Seconds() != 3600 {
		t.Errorf("expected 1h cache, got %s", opts.CacheTTL)
	}
}

func TestHTTPConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Server.Address = ":9090"
	cfg.Server.AllowedOrigins = []string{"https://sitemate.ng"}
	cfg.Site.Location = types.LocationAbuja
	cfg.Site.Soil = types.SoilClay

	out := HTTPConfig(cfg)
	if out.Address != ":9090" || out.RateLimit != 5 || out.Burst != 10 {
		t.Errorf("unexpected server settings %+v", out)
	}
	if out.DefaultLocation != types.LocationAbuja || out.DefaultSoil != types.SoilClay {
		t.Errorf("unexpected site defaults %+v", out)
	}
}

func TestHTTPServesHealth(t *testing.T) {
	a, err := New(memoryConfig(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	a.HTTP().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestNewWiresLedger(t *testing.T) {
	a, err := New(memoryConfig(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Ledger == nil {
		t.Fatal("expected the memory store to serve as the site ledger")
	}
	w := httptest.NewRecorder()
	a.HTTP().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from the supplier directory, got %d", w.Code)
	}
}
