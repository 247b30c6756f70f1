package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// ZAdd adds member with score, replacing the previous score.
func (s *Store) ZAdd(_ context.Context, key string, score float64, member string) error {
	return s.update(db.OpZAdd, func(txn *badger.Txn) error {
		mk := zMemberKey(key, member)
		old, ok, err := getValue(txn, mk)
		if err != nil {
			return err
		}
		if ok {
			if err := txn.Delete(zScoreKey(key, decodeScore(old), member)); err != nil {
				return err
			}
		}
		if err := txn.Set(mk, encodeScore(score)); err != nil {
			return err
		}
		return txn.Set(zScoreKey(key, score, member), nil)
	})
}

// ZRem removes member. Missing members are ignored.
func (s *Store) ZRem(_ context.Context, key, member string) error {
	return s.update(db.OpZRem, func(txn *badger.Txn) error {
		mk := zMemberKey(key, member)
		old, ok, err := getValue(txn, mk)
		if err != nil || !ok {
			return err
		}
		if err := txn.Delete(zScoreKey(key, decodeScore(old), member)); err != nil {
			return err
		}
		return txn.Delete(mk)
	})
}

// ZRevRange returns members by descending score, ties by descending member.
func (s *Store) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	var out []string
	err := s.view(db.OpZRevRange, func(txn *badger.Txn) error {
		n := int64(len(keysWithPrefix(txn, zMemberPrefix(key))))
		from, to, ok := rangeBounds(start, stop, n)
		if !ok {
			return nil
		}

		prefix := zScorePrefix(key)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		out = make([]string, 0, to-from+1)
		var i int64
		for it.Seek(append(append([]byte{}, prefix...), 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if i > to {
				break
			}
			if i >= from {
				out = append(out, memberFromScoreKey(len(prefix), it.Item().Key()))
			}
			i++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ZCard returns the number of members.
func (s *Store) ZCard(_ context.Context, key string) (int64, error) {
	var n int64
	err := s.view(db.OpZCard, func(txn *badger.Txn) error {
		n = int64(len(keysWithPrefix(txn, zMemberPrefix(key))))
		return nil
	})
	return n, err
}
