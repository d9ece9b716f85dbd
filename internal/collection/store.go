package collection

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/microfix/dashboard/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Store owns the in-memory collection for one session and keeps it in step
// with a Backend. Reads never block on the backend; mutations are applied one
// at a time in call order.
//
// Backend failures are logged, recorded in Err and returned. They never
// change the in-memory collection.
type Store struct {
	backend Backend
	now     func() time.Time

	// writeMu serialises Initialize/Add/Update/Delete.
	writeMu sync.Mutex

	mu      sync.RWMutex
	items   []Item
	loading bool
	lastErr error
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     time.Now,
		loading: true,
	}
}

// Initialize loads the collection from the backend, sorted by CreatedAt
// descending. On failure the collection is left empty.
func (s *Store) Initialize(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.backend.LoadAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		logger.Error("failed to load link collection", zap.Error(err))
		s.items = nil
		s.lastErr = err
		return err
	}

	loaded := make([]Item, 0, len(items))
	for _, it := range items {
		loaded = append(loaded, it.clone())
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].CreatedAt > loaded[j].CreatedAt
	})

	s.items = loaded
	s.lastErr = nil
	logger.Debug("link collection loaded", zap.Int("count", len(loaded)))
	return nil
}

// List returns a copy of the collection in display order.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.clone()
	}
	return out
}

// FilterByTag returns the items carrying tag in their current relative order.
// An empty tag matches everything.
func (s *Store) FilterByTag(tag string) []Item {
	if tag == "" {
		return s.List()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if it.HasTag(tag) {
			out = append(out, it.clone())
		}
	}
	return out
}

// Tags returns every distinct tag in the collection, in first-seen order.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, it := range s.items {
		for _, t := range it.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Loading is true from NewStore until the first Initialize settles.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the failure of the most recent operation, or nil if it
// succeeded.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Add creates a new item and puts it at the front of the collection.
func (s *Store) Add(ctx context.Context, c Candidate) (Item, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	c.Tags = cloneTags(c.Tags)
	c.CreatedAt = s.now().UnixMilli()

	created, err := s.backend.Create(ctx, c)
	if err != nil {
		logger.Error("failed to add link", zap.Error(err), zap.String("url", c.URL))
		s.fail(err)
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Item, 0, len(s.items)+1)
	next = append(next, created.clone())
	for _, it := range s.items {
		if it.ID != created.ID {
			next = append(next, it)
		}
	}
	s.items = next
	s.lastErr = nil
	return created.clone(), nil
}

// Update merges p into the item with the given id. Unknown ids return an
// error matching ErrNotFound and leave the collection unchanged.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Item, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, err := s.backend.Replace(ctx, id, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Warn("link to update not found", zap.String("id", id))
		} else {
			logger.Error("failed to update link", zap.Error(err), zap.String("id", id))
		}
		s.fail(err)
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = updated.clone()
			break
		}
	}
	s.lastErr = nil
	return updated.clone(), nil
}

// Delete removes the item with the given id. Deleting an id the backend does
// not know is a successful no-op that leaves the collection untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.backend.Remove(ctx, id)
	if errors.Is(err, ErrNotFound) {
		logger.Debug("link to delete already gone", zap.String("id", id))
		s.fail(nil)
		return nil
	}
	if err != nil {
		logger.Error("failed to delete link", zap.Error(err), zap.String("id", id))
		s.fail(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			break
		}
	}
	s.lastErr = nil
	return nil
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// fail records err as the outcome of the last operation; nil clears it.
func (s *Store) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
