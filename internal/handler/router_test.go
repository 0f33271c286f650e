package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zhouzirui/bloomspace/backend/internal/middleware"
	chatService "github.com/zhouzirui/bloomspace/backend/internal/service/chat"
	"github.com/zhouzirui/bloomspace/backend/internal/service/turn"
)

func newTestRouter() http.Handler {
	store := chatService.NewMemoryStore()
	return NewRouter(turn.New(turn.Dependencies{Store: store}), store, nil)
}

func TestHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set(middleware.UserHeader, "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "bloomspace_turns_total") {
		t.Fatalf("turn counter missing from metrics output")
	}
}

func TestAPIRequiresIdentity(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
