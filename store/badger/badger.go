// Package badger implements store.Store on top of BadgerDB.
//
// Records live under "run:{category}:{unixnano, 19 digit padded}:{id}" so a
// prefix scan per category is naturally ordered by start time; listing scans
// in reverse for newest first. A secondary "runid:{id}" key points at the
// primary key for lookups by id.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/store"
)

const (
	runPrefix   = "run:"
	indexPrefix = "runid:"
	// maxStamp sorts after every 19 digit padded timestamp.
	maxStamp = "9999999999999999999"
)

// Options configures a Store.
type Options struct {
	Logger logging.Logger
}

// Store is a BadgerDB backed store.Store.
type Store struct {
	db     *badgerdb.DB
	log    logging.Logger
	closer func() error
}

// Interface compliance (compile-time assertion)
var _ store.Store = (*Store)(nil)

// New wraps an open database. The caller keeps ownership of db.
func New(db *badgerdb.DB, optFns ...func(o *Options)) *Store {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{db: db, log: logging.OrNoOp(opts.Logger)}
}

// Open opens (or creates) a database in dir. Close releases it.
func Open(dir string, optFns ...func(o *Options)) (*Store, error) {
	db, err := badgerdb.Open(badgerdb.DefaultOptions(dir).WithLoggingLevel(badgerdb.ERROR))
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", dir, err)
	}
	s := New(db, optFns...)
	s.closer = db.Close
	return s, nil
}

// OpenInMemory opens a volatile database, mostly useful in tests.
func OpenInMemory(optFns ...func(o *Options)) (*Store, error) {
	db, err := badgerdb.Open(badgerdb.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badgerdb.ERROR))
	if err != nil {
		return nil, fmt.Errorf("badger: open in-memory: %w", err)
	}
	s := New(db, optFns...)
	s.closer = db.Close
	return s, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func recordKey(r store.Record) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", runPrefix, r.Category, r.StartedAt.UnixNano(), r.ID))
}

func indexKey(id string) []byte {
	return []byte(indexPrefix + id)
}

// Save implements store.Store. Saving an existing id replaces the old entry.
func (s *Store) Save(ctx context.Context, r store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return errors.New("badger: record id must not be empty")
	}
	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("badger: encode record %s: %w", r.ID, err)
	}
	key := recordKey(r)

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		old, err := txn.Get(indexKey(r.ID))
		switch {
		case err == nil:
			prev, err := old.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := txn.Delete(prev); err != nil {
				return err
			}
		case !errors.Is(err, badgerdb.ErrKeyNotFound):
			return err
		}
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set(indexKey(r.ID), key)
	})
	if err != nil {
		return fmt.Errorf("badger: save record %s: %w", r.ID, err)
	}
	s.log.Debug("Record saved", "id", r.ID, "category", r.Category, "key", string(key))
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	var r store.Record
	err := s.db.View(func(txn *badgerdb.Txn) error {
		idx, err := txn.Get(indexKey(id))
		if err != nil {
			return err
		}
		key, err := idx.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("badger: get record %s: %w", id, err)
	}
	return r, nil
}

// List implements store.Store. With a category the scan runs in reverse over
// that category's prefix and stops at limit; without one every record is
// loaded and sorted.
func (s *Store) List(ctx context.Context, category string, limit int) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if category == "" {
		return s.listAll(limit)
	}

	prefix := []byte(runPrefix + category + ":")
	var out []store.Record
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), maxStamp...)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) == limit {
				s.log.Debug("List limit reached", "category", category, "limit", limit)
				break
			}
			var r store.Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list %s: %w", category, err)
	}
	return out, nil
}

func (s *Store) listAll(limit int) ([]store.Record, error) {
	prefix := []byte(runPrefix)
	var out []store.Record
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r store.Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list: %w", err)
	}
	store.SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
