package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/cors"

	"github.com/microfix/dashboard/internal/config"
	"github.com/microfix/dashboard/internal/constants"
	"github.com/microfix/dashboard/pkg/httputils"
)

// OriginPolicy decides which browser origins may call the API: an explicit
// allow-list plus the parent domain and any of its subdomains.
type OriginPolicy struct {
	allowed      map[string]struct{}
	parentDomain string
}

func NewOriginPolicy(cfg config.CORSConfig) *OriginPolicy {
	p := &OriginPolicy{
		allowed:      make(map[string]struct{}, len(cfg.AllowedOrigins)),
		parentDomain: strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.ParentDomain)), "."),
	}
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
		if o != "" {
			p.allowed[o] = struct{}{}
		}
	}
	return p
}

func (p *OriginPolicy) Allowed(origin string) bool {
	origin = strings.ToLower(strings.TrimSpace(origin))
	if _, ok := p.allowed[origin]; ok {
		return true
	}
	if p.parentDomain == "" {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	return host == p.parentDomain || strings.HasSuffix(host, "."+p.parentDomain)
}

// CORSMiddleware answers preflights with rs/cors and rejects requests from
// origins outside the policy with 403 before they reach a handler. Requests
// without an Origin header are not from a browser and pass through.
func CORSMiddleware(policy *OriginPolicy) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowOriginFunc: policy.Allowed,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Accept",
			"Origin",
			"X-Requested-With",
			"X-Correlation-Id",
			// OpenTelemetry headers
			"traceparent",
			"tracestate",
			"baggage",
		},
		ExposedHeaders:   []string{"X-Correlation-Id"},
		AllowCredentials: true,
	})

	return func(next http.Handler) http.Handler {
		withCORS := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && !policy.Allowed(origin) {
				corsRejectedTotal.Inc()
				httputils.WriteAPIError(w, r, constants.ErrForbiddenOrigin)
				return
			}
			withCORS.ServeHTTP(w, r)
		})
	}
}
