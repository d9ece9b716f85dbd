package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/microfix/dashboard/internal/config"
)

func testPolicy() *OriginPolicy {
	return NewOriginPolicy(config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173", "https://dash.example.com/"},
		ParentDomain:   "microfix.dev",
	})
}

func TestOriginPolicy_Allowed(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:5173", true},
		{"https://dash.example.com", true},
		{"https://microfix.dev", true},
		{"https://snake.microfix.dev", true},
		{"https://a.b.microfix.dev", true},
		{"https://evilmicrofix.dev", false},
		{"https://microfix.dev.evil.com", false},
		{"ftp://snake.microfix.dev", false},
		{"http://localhost:3000", false},
		{"", false},
	}

	p := testPolicy()
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := p.Allowed(tt.origin); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	h := CORSMiddleware(testPolicy())(next)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantCalled bool
		wantACAO   string
	}{
		{"no origin passes", http.MethodGet, "", http.StatusOK, true, ""},
		{"allowed origin", http.MethodGet, "https://snake.microfix.dev", http.StatusOK, true, "https://snake.microfix.dev"},
		{"rejected origin", http.MethodPost, "https://evil.com", http.StatusForbidden, false, ""},
		{"rejected preflight", http.MethodOptions, "https://evil.com", http.StatusForbidden, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(tt.method, "/api/links", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantCalled {
				t.Errorf("expected handler called=%v, got %v", tt.wantCalled, called)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
				t.Errorf("expected ACAO %q, got %q", tt.wantACAO, got)
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	})
	h := CORSMiddleware(testPolicy())(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/links/abc", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected ACAO %q", got)
	}
}
