// Package completion provides a chat-completions client for the
// orchestrator. Any OpenAI-compatible endpoint works; the default is Groq.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

const (
	// DefaultEndpoint is the Groq chat-completions URL
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultModel is the model used when none is configured
	DefaultModel = "llama-3.3-70b-versatile"

	// DefaultTemperature keeps answers close to deterministic
	DefaultTemperature = 0.1
)

// Config configures the client
type Config struct {
	Endpoint          string
	Model             string
	APIKey            string
	Temperature       float64
	RequestsPerMinute int
	Logger            *zap.Logger
}

// Client calls a chat-completions endpoint
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a completion client. The caller's context bounds each call;
// the HTTP client itself has no timeout.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Config("completion API key is not set")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.OrNop(cfg.Logger),
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.cfg.Model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends one system and one user message and returns the reply text
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Timeout("completion", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", errors.Internal("failed to encode completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Internal("failed to build completion request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Timeout("completion", ctx.Err())
		}
		return "", errors.Network("completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("completion rejected",
			zap.Int("status", resp.StatusCode),
			logging.Elapsed(start),
		)
		return "", errors.Newf(errors.TypeNetwork, "completion returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Parsing("invalid completion response", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New(errors.TypeParsing, "completion returned no choices")
	}

	c.logger.Debug("completion received", zap.String("model", c.cfg.Model), logging.Elapsed(start))
	return out.Choices[0].Message.Content, nil
}
