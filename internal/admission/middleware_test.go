package admission

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareDeniesBlocked(t *testing.T) {
	store := &fakeStore{blocked: map[string]bool{"203.0.113.9": true}}
	gate := NewGate(store, nil, NewCache(time.Hour, 24*time.Hour))

	var reached bool
	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/public", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != DeniedBody {
		t.Fatalf("body = %q, want %q", body, DeniedBody)
	}
	if reached {
		t.Fatal("blocked request must not reach the inner handler")
	}
}

func TestMiddlewarePassesAllowed(t *testing.T) {
	store := &fakeStore{blocked: map[string]bool{}}
	gate := NewGate(store, nil, NewCache(time.Hour, 24*time.Hour))

	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/public", nil)
	req.RemoteAddr = "203.0.113.10:51234"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(store.records) != 1 {
		t.Fatalf("got %d records, want 1", len(store.records))
	}
}

func TestMiddlewareUsesForwardedFor(t *testing.T) {
	store := &fakeStore{blocked: map[string]bool{"198.51.100.7": true}}
	gate := NewGate(store, nil, NewCache(time.Hour, 24*time.Hour))

	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.2")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for forwarded blocked IP", rec.Code)
	}
}
