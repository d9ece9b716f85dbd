package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/infrastructure/logger"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 100 * time.Millisecond
	maxJitterMs       = 100
)

type Client struct {
	client     *http.Client
	cb         *CircuitBreaker
	maxRetries int
	baseDelay  time.Duration
	log        *zap.Logger
}

type Option func(*Client)

// WithRetries overrides how often idempotent requests are retried and the
// base of the exponential backoff between attempts.
func WithRetries(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

func NewClient(timeout time.Duration, maxFailures int, cbInterval time.Duration, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb:         NewCircuitBreaker(maxFailures, cbInterval),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		log:        logger.Named("httpclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Breaker() *CircuitBreaker {
	return c.cb
}

func (c *Client) Get(ctx context.Context, baseURL string, queryParams map[string]string, headers map[string]string) (*http.Response, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range queryParams {
		q.Add(k, v)
	}
	u.RawQuery = q.Encode()

	return c.Do(ctx, http.MethodGet, u.String(), nil, headers)
}

func (c *Client) Post(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, url, body, headers)
}

func (c *Client) Put(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, url, body, headers)
}

func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, url, nil, headers)
}

// Do sends a JSON request. Idempotent methods are retried with backoff on
// network errors and 5xx answers; other methods are sent once. When the
// server keeps answering 5xx the last response is returned for the caller to
// read. Callers must close the body of any returned response.
func (c *Client) Do(ctx context.Context, method, url string, body any, headers map[string]string) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
	}

	reqFactory := func() (*http.Request, error) {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}

	retries := 0
	if isIdempotent(method) {
		retries = c.maxRetries
	}
	return c.attemptRequestWithRetry(ctx, retries, reqFactory)
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func (c *Client) attemptRequestWithRetry(ctx context.Context, maxRetries int, reqFactory func() (*http.Request, error)) (*http.Response, error) {
	if err := c.cb.CheckBeforeRequest(); err != nil {
		c.log.Error("request blocked by circuit breaker", zap.Error(err))
		return nil, err
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	var response *http.Response

	for i := 0; i <= maxRetries; i++ {
		req, err := reqFactory()
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}

		response, err = c.client.Do(req)
		lastErr = err

		if err == nil && response.StatusCode < 500 {
			c.cb.OnSuccess()
			return response, nil
		}

		if i == maxRetries {
			break
		}

		backoff := c.baseDelay * time.Duration(math.Pow(2, float64(i)))
		jitter := time.Duration(r.Intn(maxJitterMs)) * time.Millisecond
		sleepDuration := backoff + jitter

		if response != nil {
			response.Body.Close()
			response = nil
		}

		c.log.Warn("request failed, retrying",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("attempt", i+1),
			zap.Duration("sleep_duration", sleepDuration),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepDuration):
		}
	}

	c.cb.OnFailure()

	if lastErr != nil {
		return nil, fmt.Errorf("all attempts failed, last network error: %w", lastErr)
	}

	c.log.Warn("server kept failing", zap.String("status", response.Status))
	return response, nil
}
