package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adaptrack-server/internal/notify"
	"adaptrack-server/internal/server"
	"adaptrack-server/pkg/cache"
	"adaptrack-server/pkg/session"
)

func newTestServer() *server.Server {
	c := cache.NewInMemory()
	sessions := session.NewHMAC([]byte("test-secret"), time.Hour, c)
	return server.New(nil, c, sessions, nil, nil, nil, notify.NewRegistry(), nil)
}

func TestHealth(t *testing.T) {
	r := newTestServer().Router()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestServer().Router()
	for _, path := range []string{"/watchlist", "/readinglist", "/notifications", "/recommendations"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: expected 401, got %d", path, w.Code)
		}
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	r := newTestServer().Router()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestNotificationsWithValidToken(t *testing.T) {
	c := cache.NewInMemory()
	sessions := session.NewHMAC([]byte("test-secret"), time.Hour, c)
	registry := notify.NewRegistry()
	registry.Add(42, "hello", "world")
	s := server.New(nil, c, sessions, nil, nil, nil, registry, nil)

	token, err := sessions.Issue(t.Context(), 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCorrelationIDHeaderSet(t *testing.T) {
	r := newTestServer().Router()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Correlation-Id") == "" {
		t.Fatal("expected X-Correlation-Id header")
	}
}
