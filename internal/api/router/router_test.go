package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/denisAlshanov/streamgrab/docs"
	"github.com/denisAlshanov/streamgrab/internal/api/handlers"
	"github.com/denisAlshanov/streamgrab/internal/config"
	"github.com/denisAlshanov/streamgrab/internal/models"
	"github.com/denisAlshanov/streamgrab/internal/services/ratelimit"
)

const testAPIKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type countingResolver struct {
	calls int
}

func (r *countingResolver) Resolve(ctx context.Context, url string, mediaType models.MediaType) (*models.MediaResult, error) {
	r.calls++
	return &models.MediaResult{
		ID:               "vid",
		Tags:             []string{},
		Categories:       []string{},
		MediaType:        mediaType,
		StreamURL:        "https://cdn.example/stream",
		AvailableFormats: []models.CandidateStream{},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: "8000"},
		API:       config.APIConfig{APIKey: testAPIKey},
		Extractor: config.ExtractorConfig{Timeout: 30 * time.Second},
		RateLimit: config.RateLimitConfig{
			Enabled:  true,
			Global:   config.Rate{Limit: 100, Period: 24 * time.Hour},
			Download: config.Rate{Limit: 10, Period: time.Minute},
			Info:     config.Rate{Limit: 20, Period: time.Minute},
			Home:     config.Rate{Limit: 10, Period: time.Minute},
		},
		CORS: config.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-API-Key"},
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*Router, *countingResolver) {
	t.Helper()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	resolver := &countingResolver{}
	r := NewRouter(cfg, Dependencies{
		MediaHandler:  handlers.NewMediaHandler(resolver),
		HomeHandler:   handlers.NewHomeHandler(&cfg.RateLimit),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Checker{"rate_limit_store": store.Ping}),
		LimitStore:    store,
	})
	return r, resolver
}

func download(r *Router, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestUnauthorizedRegardlessOfInput(t *testing.T) {
	r, resolver := newTestRouter(t, testConfig())

	bodies := []string{
		"",
		"{}",
		`{"url":"https://youtu.be/x","type":"audio"}`,
		`{"url":"ftp://nope","type":"podcast"}`,
	}
	for _, key := range []string{"", "wrong"} {
		for _, body := range bodies {
			w := download(r, key, body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("key %q body %q: status = %d, want 401", key, body, w.Code)
			}
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/info", nil)
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("/api/info without key: status = %d, want 401", w.Code)
	}

	if resolver.calls != 0 {
		t.Errorf("extraction invoked %d times for unauthorized requests", resolver.calls)
	}
}

func TestDownloadRateLimit(t *testing.T) {
	r, resolver := newTestRouter(t, testConfig())

	for i := 1; i <= 10; i++ {
		if w := download(r, testAPIKey, `{"url":"https://youtu.be/x"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := download(r, testAPIKey, `{"url":"https://youtu.be/x"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("11th request: status = %d, want 429", w.Code)
	}
	if resolver.calls != 10 {
		t.Errorf("extraction invoked %d times, want 10", resolver.calls)
	}

	// limits apply before the key check
	if w := download(r, "", "{}"); w.Code != http.StatusTooManyRequests {
		t.Errorf("unauthenticated request after exhaustion: status = %d, want 429", w.Code)
	}

	// info has its own budget
	req := httptest.NewRequest(http.MethodGet, "/api/info?url=https://youtu.be/x", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("/api/info: status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "stream_url") {
		t.Error("/api/info response contains stream_url")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = false
	r, _ := newTestRouter(t, cfg)

	for i := 0; i < 15; i++ {
		if w := download(r, testAPIKey, `{"url":"https://youtu.be/x"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/live", http.StatusOK},
		{"/swagger/doc.json", http.StatusOK},
		{"/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("X-Request-ID header missing")
			}
		})
	}
}

func TestHomeRateLimit(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		last = httptest.NewRecorder()
		r.Engine().ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("11th home request: status = %d, want 429", last.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["details"] != "10 per minute" {
		t.Errorf("details = %q", body["details"])
	}
}

func TestServerAddress(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())
	srv := r.Server()
	if srv.Addr != "127.0.0.1:8000" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.WriteTimeout <= 30*time.Second {
		t.Errorf("WriteTimeout = %v, want more than the extraction timeout", srv.WriteTimeout)
	}
}

func TestFailingHealthChecksReturnJSON(t *testing.T) {
	cfg := testConfig()
	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	failing := func(ctx context.Context) error { return errors.New("exec: yt-dlp: not found") }
	r := NewRouter(cfg, Dependencies{
		MediaHandler:  handlers.NewMediaHandler(&countingResolver{}),
		HomeHandler:   handlers.NewHomeHandler(&cfg.RateLimit),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Checker{"extractor": failing}),
		LimitStore:    store,
	})

	for _, path := range []string{"/health", "/ready"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", w.Code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not a single JSON object: %v (%s)", err, w.Body.String())
			}
			if _, ok := body["error"]; ok {
				t.Errorf("recovery envelope leaked into the body: %v", body)
			}
		})
	}
}
