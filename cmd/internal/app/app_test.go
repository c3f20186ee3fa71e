package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("WAYFARE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("WAYFARE_BCRYPT_COST", "4")

	cfg := LoadConfig()
	cfg.DatabaseURL = "" // in-memory store

	a, err := New(context.Background(), cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewRequiresTokenSecret(t *testing.T) {
	t.Setenv("WAYFARE_JWT_SECRET", "")

	_, err := New(context.Background(), LoadConfig(), slog.New(slog.DiscardHandler))
	if err == nil {
		t.Fatal("New without secret = nil error")
	}
}

func TestNewRejectsUnknownScheme(t *testing.T) {
	t.Setenv("WAYFARE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg := LoadConfig()
	cfg.DatabaseURL = "mysql://nope"

	if _, err := New(context.Background(), cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("New with unknown scheme = nil error")
	}
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t)

	// Drive one request through the middleware so counters exist.
	a.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wayfare_http_requests_total") {
		t.Errorf("scrape output missing request counter:\n%.500s", rec.Body.String())
	}
}

func TestAuthRoutesMounted(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email":"a.b@x.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register through app: status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"username":"ab"`) {
		t.Errorf("body = %s", rec.Body)
	}
}
