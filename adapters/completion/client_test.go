package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sitemate/internal/errors"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad body: %v", err)
			return
		}
		if req.Model != DefaultModel {
			t.Errorf("expected model %s, got %s", DefaultModel, req.Model)
		}
		if req.Temperature != DefaultTemperature {
			t.Errorf("expected temperature %v, got %v", DefaultTemperature, req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "Design a strip footing" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Use a 675mm strip."}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Complete(context.Background(), "You are an engineer.", "Design a strip footing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Use a 675mm strip." {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.Type
	}{
		{"rate limited upstream", http.StatusTooManyRequests, `{"error":"slow down"}`, errors.TypeNetwork},
		{"server error", http.StatusInternalServerError, `oops`, errors.TypeNetwork},
		{"malformed body", http.StatusOK, `{"choices":`, errors.TypeParsing},
		{"no choices", http.StatusOK, `{"choices":[]}`, errors.TypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := New(Config{Endpoint: srv.URL, APIKey: "secret"})
			_, err := c.Complete(context.Background(), "sys", "prompt")
			if !errors.IsType(err, tt.want) {
				t.Errorf("expected %s error, got %v", tt.want, err)
			}
		})
	}
}

func TestCompleteHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := New(Config{Endpoint: srv.URL, APIKey: "secret"})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, "sys", "prompt")
	if !errors.IsType(err, errors.TypeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
