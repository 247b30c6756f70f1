package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// maxTxnRetries bounds optimistic retries on write conflicts.
const maxTxnRetries = 10

// Config holds settings for the embedded store.
type Config struct {
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Store implements db.Store on an embedded BadgerDB. Each Redis data type
// lives under its own key namespace, see keys.go.
type Store struct {
	db *badger.DB
}

// zapAdapter adapts zap to the badger.Logger interface.
type zapAdapter struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, args ...any)   { a.s.Errorf(msg, args...) }
func (a *zapAdapter) Warningf(msg string, args ...any) { a.s.Warnf(msg, args...) }
func (a *zapAdapter) Infof(msg string, args ...any)    { a.s.Debugf(msg, args...) }
func (a *zapAdapter) Debugf(msg string, args ...any)   { a.s.Debugf(msg, args...) }

// NewStore opens a BadgerDB at cfg.Path, creating the directory if needed.
func NewStore(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &zapAdapter{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// NewMemoryStore opens an in-memory store (tests and throwaway runs).
func NewMemoryStore() (*Store, error) {
	return NewStore(Config{InMemory: true})
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: an opened embedded store is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *Store) update(op string, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxTxnRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}

func (s *Store) view(op string, fn func(txn *badger.Txn) error) error {
	if err := s.db.View(fn); err != nil {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}

// getValue copies the value at key, returning nil, false when missing.
func getValue(txn *badger.Txn, key []byte) ([]byte, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// keysWithPrefix collects every key under prefix.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}
