package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/strata/internal/common"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCorrelationIDMiddleware_UsesRequestHeader(t *testing.T) {
	var seen string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = common.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen != "abc123" {
		t.Errorf("Expected correlation id abc123 in context, got %q", seen)
	}
	if got := rr.Header().Get("X-Correlation-ID"); got != "abc123" {
		t.Errorf("Expected X-Correlation-ID abc123, got %q", got)
	}
}

func TestCorrelationIDMiddleware_Generates(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(okHandler))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if got := rr.Header().Get("X-Correlation-ID"); len(got) != 8 {
		t.Errorf("Expected generated 8 character id, got %q", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := rateLimitMiddleware(common.ServerConfig{RateLimit: 0.001, Burst: 1}, common.NewSilentLogger())(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "rate_limited")
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	handler := rateLimitMiddleware(common.ServerConfig{}, common.NewSilentLogger())(http.HandlerFunc(okHandler))
	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := common.NewLoggerWithOutput("error", &logs)
	handler := recoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/charts", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logs.String(), "boom")
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/charts", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "DELETE"))
}

func TestLoggingMiddleware_LogsErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := common.NewLoggerWithOutput("info", &logs)
	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/charts/x", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, logs.String(), `"status":404`)
	assert.Contains(t, logs.String(), "/api/charts/x")
}

func TestPathParam(t *testing.T) {
	tests := []struct {
		path, prefix, suffix, want string
	}{
		{"/api/charts/abc/hover", "/api/charts/", "/hover", "abc"},
		{"/api/charts/abc/hover", "/api/charts/", "", "abc"},
		{"/api/charts/abc", "/api/charts/", "", "abc"},
		{"/api/other/abc", "/api/charts/", "", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := PathParam(r, tt.prefix, tt.suffix); got != tt.want {
			t.Errorf("PathParam(%q, %q, %q) = %q, want %q", tt.path, tt.prefix, tt.suffix, got, tt.want)
		}
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?w=12.5&bad=abc&hc=true", nil)

	v, ok := QueryFloat(r, "w")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
	_, ok = QueryFloat(r, "bad")
	assert.False(t, ok)
	_, ok = QueryFloat(r, "missing")
	assert.False(t, ok)
	b, ok := QueryBool(r, "hc")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = QueryBool(r, "missing")
	assert.False(t, ok)
	_, ok = QueryBool(r, "bad")
	assert.False(t, ok)
}
