package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfix/dashboard/internal/collection"
	"github.com/microfix/dashboard/pkg/httpclient"
)

// fakeAPI serves the links routes from memory.
type fakeAPI struct {
	mu     sync.Mutex
	items  []collection.Item
	nextID int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/links", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.items)
	})
	mux.HandleFunc("POST /api/links", func(w http.ResponseWriter, r *http.Request) {
		var c collection.Candidate
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		it := collection.Item{
			ID: fmt.Sprintf("srv-%d", f.nextID), Title: c.Title, URL: c.URL,
			Description: c.Description, ImageURL: c.ImageURL, Tags: c.Tags, CreatedAt: c.CreatedAt,
		}
		f.items = append([]collection.Item{it}, f.items...)
		writeJSON(w, http.StatusCreated, it)
	})
	mux.HandleFunc("PUT /api/links/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p collection.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.items {
			if f.items[i].ID == r.PathValue("id") {
				f.items[i] = p.Apply(f.items[i])
				writeJSON(w, http.StatusOK, f.items[i])
				return
			}
		}
		writeEnvelope(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	})
	mux.HandleFunc("DELETE /api/links/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		for i := range f.items {
			if f.items[i].ID == id {
				f.items = append(f.items[:i], f.items[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedId": id})
				return
			}
		}
		writeEnvelope(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEnvelope(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("X-Correlation-Id", "corr-1")
	writeJSON(w, status, map[string]any{
		"responseTime":  time.Now().UTC(),
		"correlationId": "corr-1",
		"error":         code,
		"message":       msg,
	})
}

func newTestBackend(t *testing.T, h http.Handler) *Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:        srv.URL + "/",
		Timeout:        2 * time.Second,
		MaxFailures:    5,
		BreakerTimeout: time.Minute,
	}, httpclient.WithRetries(1, time.Millisecond))
}

func TestBackend_StoreRoundTrip(t *testing.T) {
	api := &fakeAPI{}
	s := collection.NewStore(newTestBackend(t, api.handler()))
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx))
	assert.Empty(t, s.List())

	first, err := s.Add(ctx, collection.Candidate{Title: "One", URL: "https://one", Tags: []string{"Game"}})
	require.NoError(t, err)
	second, err := s.Add(ctx, collection.Candidate{Title: "Two", URL: "https://two"})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", first.ID)
	assert.NotZero(t, first.CreatedAt, "client timestamp travels with the request")

	desc := "updated"
	_, err = s.Update(ctx, first.ID, collection.Patch{Description: &desc})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, second.ID))

	reloaded := collection.NewStore(newTestBackend(t, api.handler()))
	require.NoError(t, reloaded.Initialize(ctx))
	assert.Equal(t, s.List(), reloaded.List())
	assert.Equal(t, "updated", reloaded.List()[0].Description)
}

func TestBackend_NotFoundIsHTTPError(t *testing.T) {
	b := newTestBackend(t, (&fakeAPI{}).handler())
	title := "x"

	_, err := b.Replace(context.Background(), "missing", collection.Patch{Title: &title})

	require.ErrorIs(t, err, collection.ErrNotFound)
	var httpErr *collection.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "LINK_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "Link not found", httpErr.Message)
}

func TestBackend_DeleteMissingIsNoopThroughStore(t *testing.T) {
	s := collection.NewStore(newTestBackend(t, (&fakeAPI{}).handler()))

	require.NoError(t, s.Delete(context.Background(), "missing"))
	assert.NoError(t, s.Err())
}

func TestBackend_DeleteOfRowGoneServerSideKeepsLocalState(t *testing.T) {
	api := &fakeAPI{items: []collection.Item{
		{ID: "a", Title: "A", URL: "https://a", Tags: []string{}, CreatedAt: 1},
	}}
	s := collection.NewStore(newTestBackend(t, api.handler()))
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	before := s.List()

	api.mu.Lock()
	api.items = nil
	api.mu.Unlock()

	require.NoError(t, s.Delete(ctx, "a"))
	assert.Equal(t, before, s.List())
	assert.NoError(t, s.Err())
}

func TestBackend_ServerErrorLeavesCollectionEmpty(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	})
	s := collection.NewStore(newTestBackend(t, h))

	err := s.Initialize(context.Background())

	var httpErr *collection.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Empty(t, s.List())
	assert.False(t, s.Loading())
}

func TestBackend_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	b := New(Config{BaseURL: addr, Timeout: time.Second, MaxFailures: 5, BreakerTimeout: time.Minute},
		httpclient.WithRetries(0, time.Millisecond))

	_, err := b.LoadAll(context.Background())
	assert.ErrorIs(t, err, collection.ErrNetwork)
}

func TestBackend_BrokenBodyIsCorrupt(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":`))
	})
	b := newTestBackend(t, h)

	_, err := b.LoadAll(context.Background())
	assert.ErrorIs(t, err, collection.ErrCorrupt)
}

func TestBackend_CreateIsNotRetried(t *testing.T) {
	var calls int
	var mu sync.Mutex
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		writeEnvelope(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", "down")
	})
	b := newTestBackend(t, h)

	_, err := b.Create(context.Background(), collection.Candidate{Title: "x", URL: "https://x"})

	var httpErr *collection.HTTPError
	require.ErrorAs(t, err, &httpErr)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
