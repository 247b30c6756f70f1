package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// LPush prepends values one by one, so the last value ends up first.
func (s *Store) LPush(_ context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	return s.update(db.OpLPush, func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		head := slices.Clone(values)
		slices.Reverse(head)
		return writeList(txn, key, append(head, list...))
	})
}

// LRange returns elements between start and stop inclusive.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	var out []string
	err := s.view(db.OpLRange, func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		from, to, ok := rangeBounds(start, stop, int64(len(list)))
		if !ok {
			out = []string{}
			return nil
		}
		out = list[from : to+1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LTrim keeps elements between start and stop inclusive.
func (s *Store) LTrim(_ context.Context, key string, start, stop int64) error {
	return s.update(db.OpLTrim, func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		from, to, ok := rangeBounds(start, stop, int64(len(list)))
		if !ok {
			return txn.Delete(listKey(key))
		}
		return writeList(txn, key, list[from:to+1])
	})
}

func readList(txn *badger.Txn, key string) ([]string, error) {
	data, ok, err := getValue(txn, listKey(key))
	if err != nil || !ok {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return list, nil
}

func writeList(txn *badger.Txn, key string, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}
	return txn.Set(listKey(key), data)
}
