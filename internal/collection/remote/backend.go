package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/collection"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
	"github.com/microfix/dashboard/pkg/httpclient"
)

const linksPath = "/api/links"

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 64 << 10

// Backend talks to the dashboard REST API. Each operation is one request.
type Backend struct {
	baseURL string
	client  *httpclient.Client
	log     *zap.Logger
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxFailures    int
	BreakerTimeout time.Duration
}

func New(cfg Config, opts ...httpclient.Option) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.NewClient(cfg.Timeout, cfg.MaxFailures, cfg.BreakerTimeout, opts...),
		log:     logger.Named("remote"),
	}
}

// errorEnvelope is the body the API sends with every non-2xx answer.
type errorEnvelope struct {
	CorrelationID string `json:"correlationId"`
	Error         string `json:"error"`
	Message       string `json:"message"`
}

func (b *Backend) LoadAll(ctx context.Context) ([]collection.Item, error) {
	resp, err := b.client.Get(ctx, b.baseURL+linksPath, nil, nil)
	if err != nil {
		return nil, b.networkError("list links", err)
	}
	defer resp.Body.Close()

	if err := b.checkStatus(resp); err != nil {
		return nil, err
	}

	var items []collection.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode links: %w: %v", collection.ErrCorrupt, err)
	}
	for i := range items {
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
	}
	return items, nil
}

func (b *Backend) Create(ctx context.Context, c collection.Candidate) (collection.Item, error) {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	resp, err := b.client.Post(ctx, b.baseURL+linksPath, c, nil)
	if err != nil {
		return collection.Item{}, b.networkError("create link", err)
	}
	defer resp.Body.Close()

	return b.decodeItem(resp)
}

func (b *Backend) Replace(ctx context.Context, id string, p collection.Patch) (collection.Item, error) {
	resp, err := b.client.Put(ctx, b.itemURL(id), p, nil)
	if err != nil {
		return collection.Item{}, b.networkError("update link", err)
	}
	defer resp.Body.Close()

	return b.decodeItem(resp)
}

func (b *Backend) Remove(ctx context.Context, id string) error {
	resp, err := b.client.Delete(ctx, b.itemURL(id), nil)
	if err != nil {
		return b.networkError("delete link", err)
	}
	defer resp.Body.Close()

	if err := b.checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (b *Backend) itemURL(id string) string {
	return b.baseURL + linksPath + "/" + url.PathEscape(id)
}

func (b *Backend) decodeItem(resp *http.Response) (collection.Item, error) {
	if err := b.checkStatus(resp); err != nil {
		return collection.Item{}, err
	}

	var it collection.Item
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return collection.Item{}, fmt.Errorf("decode link: %w: %v", collection.ErrCorrupt, err)
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return it, nil
}

// checkStatus turns a non-2xx answer into a *collection.HTTPError, reading
// the API's error envelope when there is one.
func (b *Backend) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	httpErr := &collection.HTTPError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		httpErr.Code = env.Error
		httpErr.Message = env.Message
	}

	b.log.Warn("api answered with an error",
		zap.String("method", resp.Request.Method),
		zap.String("url", resp.Request.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("code", httpErr.Code),
		zap.String("correlation_id", resp.Header.Get("X-Correlation-Id")),
	)
	return httpErr
}

// networkError keeps the cause reachable so callers can still tell a
// cancelled context or an open breaker apart.
func (b *Backend) networkError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, collection.ErrNetwork, err)
}
