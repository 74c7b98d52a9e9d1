// Package badgerstore provides a persistent key value store backed by
// badger. Wrap it with store.CacheOnWrite to stage writes before they hit
// disk.
package badgerstore

import (
	"bytes"
	"os"

	"github.com/dgraph-io/badger"

	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/store"
)

// Store implements store.KVStore on a badger database.
type Store struct {
	db *badger.DB
}

var _ store.KVStore = (*Store)(nil)

// Open opens the badger database in the given directory, creating it if
// necessary.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create database directory: %s", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open database: %s", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database. The store must not be used afterwards.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "close database: %s", err)
	}
	return nil
}

// Get returns the value stored under the key, or nil when absent.
func (s *Store) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %s", err)
	}
	return value, nil
}

// Has reports whether the key exists.
func (s *Store) Has(key []byte) (bool, error) {
	value, err := s.Get(key)
	return value != nil, err
}

// Set stores the value under the key.
func (s *Store) Set(key, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	return errors.Wrapf(err, "set")
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *Store) Delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	return errors.Wrapf(err, "delete")
}

// NewBatch returns a batch writing through badger's write batch on
// commit.
func (s *Store) NewBatch() store.Batch {
	return &writeBatch{wb: s.db.NewWriteBatch()}
}

// Iterator iterates [start, end) in ascending key order over a read
// snapshot.
func (s *Store) Iterator(start, end []byte) (store.Iterator, error) {
	return s.newIterator(start, end, false)
}

// ReverseIterator iterates [start, end) in descending key order over a
// read snapshot.
func (s *Store) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return s.newIterator(start, end, true)
}

type writeBatch struct {
	wb  *badger.WriteBatch
	err error
}

var _ store.Batch = (*writeBatch)(nil)

func (b *writeBatch) Set(key, value []byte) error {
	if b.err == nil {
		b.err = b.wb.Set(key, value)
	}
	return errors.Wrapf(b.err, "batch set")
}

func (b *writeBatch) Delete(key []byte) error {
	if b.err == nil {
		b.err = b.wb.Delete(key)
	}
	return errors.Wrapf(b.err, "batch delete")
}

func (b *writeBatch) Write() error {
	if b.err != nil {
		b.wb.Cancel()
		return errors.Wrapf(errors.ErrDatabase, "broken batch: %s", b.err)
	}
	if err := b.wb.Flush(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "flush batch: %s", err)
	}
	return nil
}

// iterator walks a badger read transaction, enforcing the store's
// half-open [start, end) bounds which badger iterators do not know about.
type iterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	start   []byte
	end     []byte
	reverse bool

	valid bool
	key   []byte
	value []byte
}

var _ store.Iterator = (*iterator)(nil)

func (s *Store) newIterator(start, end []byte, reverse bool) (store.Iterator, error) {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	it := txn.NewIterator(opts)

	iter := &iterator{
		txn:     txn,
		it:      it,
		start:   start,
		end:     end,
		reverse: reverse,
	}
	iter.seekFirst()
	if err := iter.load(); err != nil {
		iter.Close()
		return nil, err
	}
	return iter, nil
}

// seekFirst positions the badger cursor at the first in-range entry for
// the iteration direction.
func (i *iterator) seekFirst() {
	if !i.reverse {
		if i.start == nil {
			i.it.Rewind()
		} else {
			i.it.Seek(i.start)
		}
		return
	}
	if i.end == nil {
		i.it.Rewind()
		return
	}
	// A reverse seek lands on the greatest key not above the target. The
	// end bound is exclusive, so an exact hit must be skipped.
	i.it.Seek(i.end)
	if i.it.Valid() && bytes.Equal(i.it.Item().Key(), i.end) {
		i.it.Next()
	}
}

// inRange reports whether the cursor still points inside the bound that
// seeking could not enforce.
func (i *iterator) inRange() bool {
	if !i.it.Valid() {
		return false
	}
	key := i.it.Item().Key()
	if i.reverse {
		return i.start == nil || bytes.Compare(key, i.start) >= 0
	}
	return i.end == nil || bytes.Compare(key, i.end) < 0
}

// load copies the current entry out of the transaction, or marks the
// iterator exhausted.
func (i *iterator) load() error {
	if !i.inRange() {
		i.valid = false
		return nil
	}
	item := i.it.Item()
	i.key = item.KeyCopy(nil)
	value, err := item.ValueCopy(nil)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "read value: %s", err)
	}
	i.value = value
	i.valid = true
	return nil
}

func (i *iterator) Valid() bool {
	return i.valid
}

func (i *iterator) Next() error {
	if !i.valid {
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	i.it.Next()
	return i.load()
}

func (i *iterator) Key() []byte {
	return i.key
}

func (i *iterator) Value() []byte {
	return i.value
}

func (i *iterator) Close() {
	i.it.Close()
	i.txn.Discard()
}
