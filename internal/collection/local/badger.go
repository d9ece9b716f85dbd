package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/collection"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
)

// DefaultKey is the key the whole collection is stored under.
const DefaultKey = "microfix-dashboard-links"

// Backend keeps the collection as one JSON array under a single badger key.
// Every mutation rewrites the whole blob inside one transaction.
type Backend struct {
	db    *badger.DB
	key   []byte
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// Open opens (or creates) the badger database in dataDir.
func Open(dataDir, key string) (*Backend, error) {
	if key == "" {
		key = DefaultKey
	}
	log := logger.Named("local")

	opts := badger.DefaultOptions(dataDir).
		WithLogger(&badgerLogger{logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		log.Error("failed to open badger", zap.String("dir", dataDir), zap.Error(err))
		return nil, fmt.Errorf("open badger at %s: %w", dataDir, err)
	}
	log.Debug("badger opened", zap.String("dir", dataDir), zap.String("key", key))

	return newBackend(db, key), nil
}

func newBackend(db *badger.DB, key string) *Backend {
	return &Backend{
		db:    db,
		key:   []byte(key),
		log:   logger.Named("local"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		b.log.Error("error closing badger", zap.Error(err))
		return err
	}
	return nil
}

// LoadAll returns the stored collection. An absent key is seeded and written
// back; a blob that does not decode is reported as collection.ErrCorrupt and
// left as it is.
func (b *Backend) LoadAll(ctx context.Context) ([]collection.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []collection.Item
	err := b.db.Update(func(txn *badger.Txn) error {
		raw, err := b.read(txn)
		if errors.Is(err, badger.ErrKeyNotFound) {
			items = seedItems()
			b.log.Info("seeding empty collection", zap.Int("count", len(items)))
			return b.write(txn, items)
		}
		if err != nil {
			return err
		}

		items, err = decode(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (b *Backend) Create(ctx context.Context, c collection.Candidate) (collection.Item, error) {
	if err := ctx.Err(); err != nil {
		return collection.Item{}, err
	}

	created := collection.Item{
		ID:          b.newID(),
		Title:       c.Title,
		URL:         c.URL,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Tags:        c.Tags,
		CreatedAt:   c.CreatedAt,
	}
	if created.CreatedAt <= 0 {
		created.CreatedAt = b.now().UnixMilli()
	}
	if created.Tags == nil {
		created.Tags = []string{}
	}

	err := b.mutate(func(items []collection.Item) ([]collection.Item, error) {
		next := make([]collection.Item, 0, len(items)+1)
		next = append(next, created)
		return append(next, items...), nil
	})
	if err != nil {
		return collection.Item{}, err
	}
	return created, nil
}

func (b *Backend) Replace(ctx context.Context, id string, p collection.Patch) (collection.Item, error) {
	if err := ctx.Err(); err != nil {
		return collection.Item{}, err
	}

	var updated collection.Item
	err := b.mutate(func(items []collection.Item) ([]collection.Item, error) {
		for i := range items {
			if items[i].ID == id {
				items[i] = p.Apply(items[i])
				updated = items[i]
				return items, nil
			}
		}
		return nil, fmt.Errorf("replace %s: %w", id, collection.ErrNotFound)
	})
	if err != nil {
		return collection.Item{}, err
	}
	return updated, nil
}

func (b *Backend) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.mutate(func(items []collection.Item) ([]collection.Item, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("remove %s: %w", id, collection.ErrNotFound)
	})
}

// mutate runs fn over the current collection and writes the result back in
// the same transaction. A corrupt blob is moved aside and fn starts from an
// empty collection.
func (b *Backend) mutate(fn func([]collection.Item) ([]collection.Item, error)) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var items []collection.Item

		raw, err := b.read(txn)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			items, err = decode(raw)
			if err != nil {
				if err := b.backupCorrupt(txn, raw); err != nil {
					return err
				}
				items = nil
			}
		}

		next, err := fn(items)
		if err != nil {
			return err
		}
		return b.write(txn, next)
	})
}

func (b *Backend) read(txn *badger.Txn) ([]byte, error) {
	item, err := txn.Get(b.key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (b *Backend) write(txn *badger.Txn, items []collection.Item) error {
	if items == nil {
		items = []collection.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return txn.Set(b.key, raw)
}

func (b *Backend) backupCorrupt(txn *badger.Txn, raw []byte) error {
	backup := string(b.key) + ".corrupt." + strconv.FormatInt(b.now().UnixMilli(), 10)
	b.log.Warn("moving corrupt collection aside", zap.String("backup_key", backup), zap.Int("bytes", len(raw)))
	return txn.Set([]byte(backup), raw)
}

func decode(raw []byte) ([]collection.Item, error) {
	var items []collection.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode collection: %w: %v", collection.ErrCorrupt, err)
	}
	for i := range items {
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
	}
	return items, nil
}

// badgerLogger adapts zap to badger's logger interface.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.log.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warnf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.log.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debugf(f, v...) }
