package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitMiddleware(t *testing.T) {
	// 10/min gives a burst of one write per client.
	limiter := NewWriteLimiter(10, 100, time.Minute)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method, ip string) int {
		req := httptest.NewRequest(method, "/api/links", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do(http.MethodPost, "10.0.0.1"); got != http.StatusOK {
		t.Fatalf("first write: expected 200, got %d", got)
	}
	if got := do(http.MethodPost, "10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("second write: expected 429, got %d", got)
	}
	if got := do(http.MethodGet, "10.0.0.1"); got != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", got)
	}
	if got := do(http.MethodDelete, "10.0.0.2"); got != http.StatusOK {
		t.Fatalf("other clients have their own bucket, got %d", got)
	}
}

func TestRateLimitMiddleware_IgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := NewWriteLimiter(1, 100, time.Minute)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	limited := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/links", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("192.0.2.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	if limited != 49 {
		t.Errorf("expected 49 limited writes from one peer, got %d", limited)
	}
}

func TestRateLimitMiddleware_NilLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimitMiddleware(nil)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/links", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for ignored", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "9.9.9.9:1", "9.9.9.9"},
		{"real ip ignored", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", "9.9.9.9"},
		{"remote addr", nil, "4.4.4.4:1234", "4.4.4.4"},
		{"bare ip from RealIP", nil, "5.5.5.5", "5.5.5.5"},
		{"garbage", nil, "nope", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"a", "b", "handler"}
	if len(order) != len(want) {
		t.Fatalf("got %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}
