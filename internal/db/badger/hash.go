package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// HSet merges fields into the hash stored as one JSON object.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return s.update(db.OpHSet, func(txn *badger.Txn) error {
		current, err := readHash(txn, key)
		if err != nil {
			return err
		}
		for k, v := range fields {
			current[k] = v
		}
		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encode hash: %w", err)
		}
		return txn.Set(hashKey(key), data)
	})
}

// HSetIfExists merges fields into an existing hash and reports whether it
// did. The check and the write share one transaction.
func (s *Store) HSetIfExists(_ context.Context, key string, fields map[string]string) (bool, error) {
	var updated bool
	err := s.update(db.OpHSet, func(txn *badger.Txn) error {
		current, err := readHash(txn, key)
		if err != nil {
			return err
		}
		if len(current) == 0 {
			return nil
		}
		updated = true
		if len(fields) == 0 {
			return nil
		}
		for k, v := range fields {
			current[k] = v
		}
		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encode hash: %w", err)
		}
		return txn.Set(hashKey(key), data)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	var out map[string]string
	err := s.view(db.OpHGetAll, func(txn *badger.Txn) error {
		var err error
		out, err = readHash(txn, key)
		return err
	})
	return out, err
}

// HGetAllMulti fetches several hashes in one read transaction.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	err := s.view(db.OpHGetAll, func(txn *badger.Txn) error {
		for i, key := range keys {
			m, err := readHash(txn, key)
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			out[i] = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Del removes key whatever its type.
func (s *Store) Del(_ context.Context, key string) error {
	return s.update(db.OpDel, func(txn *badger.Txn) error {
		for _, k := range [][]byte{hashKey(key), kvKey(key), listKey(key)} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for _, prefix := range [][]byte{zMemberPrefix(key), zScorePrefix(key)} {
			for _, k := range keysWithPrefix(txn, prefix) {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Exists reports whether key holds a value of any type.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	var found bool
	err := s.view(db.OpExists, func(txn *badger.Txn) error {
		for _, k := range [][]byte{hashKey(key), kvKey(key), listKey(key)} {
			_, ok, err := getValue(txn, k)
			if err != nil {
				return err
			}
			if ok {
				found = true
				return nil
			}
		}
		found = len(keysWithPrefix(txn, zMemberPrefix(key))) > 0
		return nil
	})
	return found, err
}

func readHash(txn *badger.Txn, key string) (map[string]string, error) {
	data, ok, err := getValue(txn, hashKey(key))
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if !ok {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode hash: %w", err)
	}
	return m, nil
}
