package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"sitemate/core/boq"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

// SourceRemote identifies quotes answered by the search index
const SourceRemote = "remote"

// DefaultIndex is the search index holding material listings
const DefaultIndex = "construction_materials"

// RemoteConfig configures the search-index client
type RemoteConfig struct {
	// AppID is the search application ID
	AppID string

	// APIKey is the search-only API key
	APIKey string

	// Index is the index name
	Index string

	// BaseURL overrides https://{AppID}-dsn.algolia.net
	BaseURL string

	// Timeout bounds one query
	Timeout time.Duration

	// RequestsPerSecond limits outgoing queries; zero means unlimited
	RequestsPerSecond float64

	// Burst is the limiter bucket size
	Burst int
}

// RemoteSearch resolves prices by querying a hosted search index with the
// material name and keeping the top hit
type RemoteSearch struct {
	cfg     RemoteConfig
	client  *http.Client
	limiter *rate.Limiter
	base    string
}

// NewRemoteSearch creates a search client
func NewRemoteSearch(cfg RemoteConfig) (*RemoteSearch, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, errors.Config("remote pricing requires an application ID and API key")
	}
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s-dsn.algolia.net", cfg.AppID)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &RemoteSearch{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		base:    base,
	}, nil
}

type searchRequest struct {
	Query         string `json:"query"`
	HitsPerPage   int    `json:"hitsPerPage"`
	OptionalWords string `json:"optionalWords"`
}

type searchHit struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Supplier string      `json:"supplier"`
}

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

// Resolve implements boq.PriceResolver. A query with no hits returns an empty quote.
func (s *RemoteSearch) Resolve(ctx context.Context, query string, _ types.Location) (boq.Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return boq.Quote{}, errors.Timeout("price search", err)
	}

	body, err := json.Marshal(searchRequest{Query: query, HitsPerPage: 1, OptionalWords: query})
	if err != nil {
		return boq.Quote{}, errors.Internal("failed to encode search request", err)
	}

	endpoint := fmt.Sprintf("%s/1/indexes/%s/query", s.base, url.PathEscape(s.cfg.Index))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return boq.Quote{}, errors.Internal("failed to build search request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Algolia-Application-Id", s.cfg.AppID)
	req.Header.Set("X-Algolia-API-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return boq.Quote{}, errors.Timeout("price search", ctx.Err())
		}
		return boq.Quote{}, errors.Network("price search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return boq.Quote{}, errors.Newf(errors.TypeNetwork, "price search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return boq.Quote{}, errors.Parsing("invalid search response", err)
	}
	if len(out.Hits) == 0 {
		return boq.Quote{}, nil
	}

	hit := out.Hits[0]
	if hit.Price == "" {
		return boq.Quote{Name: hit.Name, Source: SourceRemote}, nil
	}
	price, err := decimal.NewFromString(hit.Price.String())
	if err != nil {
		return boq.Quote{}, errors.Parsing("invalid price in search hit", err).WithContext("material", hit.Name)
	}
	return boq.Quote{
		BasePrice: price,
		Name:      hit.Name,
		Supplier:  hit.Supplier,
		Source:    SourceRemote,
	}, nil
}
