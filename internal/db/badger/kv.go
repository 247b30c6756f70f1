package badger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	var found bool
	err := s.view(db.OpGet, func(txn *badger.Txn) error {
		var err error
		out, found, err = getValue(txn, kvKey(key))
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, db.ErrKeyNotFound
	}
	return out, nil
}

// Set stores a value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.update(db.OpSet, func(txn *badger.Txn) error {
		return txn.Set(kvKey(key), value)
	})
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return s.update(db.OpSet, func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(kvKey(key), value).WithTTL(ttl))
	})
}

// IncrBy adds val to the integer at key, keeping any expiry.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	return s.update(db.OpIncrBy, func(txn *badger.Txn) error {
		k := kvKey(key)
		var current int64
		var expiresAt uint64

		item, err := txn.Get(k)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			expiresAt = item.ExpiresAt()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			current, err = strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return db.ErrWrongType
			}
		}

		e := badger.NewEntry(k, []byte(strconv.FormatInt(current+val, 10)))
		if expiresAt > 0 {
			e.ExpiresAt = expiresAt
		}
		return txn.SetEntry(e)
	})
}

// Expire sets a TTL on key. With nx, keys that already expire are left alone.
// Missing keys are ignored.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	return s.update(db.OpExpire, func(txn *badger.Txn) error {
		k := kvKey(key)
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if nx && item.ExpiresAt() > 0 {
			return nil
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry(k, raw).WithTTL(ttl))
	})
}
