package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"UUID replacement",
			"/api/links/550e8400-e29b-41d4-a716-446655440000",
			"/api/links/:id",
		},
		{
			"uppercase UUID",
			"/api/links/550E8400-E29B-41D4-A716-446655440000",
			"/api/links/:id",
		},
		{
			"numeric ID replacement",
			"/api/links/12345",
			"/api/links/:id",
		},
		{
			"static assets collapse",
			"/assets/index-4f8a2c.js",
			"/assets/*",
		},
		{
			"no change for named path",
			"/api/setup-db",
			"/api/setup-db",
		},
		{
			"root path unchanged",
			"/",
			"/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePath(tt.path)
			if got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetricsMiddleware_PassesStatusThrough(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/links/1", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}
