// Package store defines the key-value storage used by the ledger and
// provides a btree backed cache-wrap implementation that stages all writes
// of an operation so they can be committed or discarded as a unit.
package store

// ReadOnlyKVStore is the subset of the store that cannot modify state.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)

	// Has checks the existence of a key.
	Has(key []byte) (bool, error)

	// Iterator iterates over a domain of keys in ascending order.
	// End is exclusive. Start must be less than end, or the iterator
	// is invalid. A nil bound means unbounded on that side.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator iterates over a domain of keys in descending
	// order. End is exclusive. A nil bound means unbounded.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half of a store.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the complete interface all backing stores implement.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter

	// NewBatch returns a batch that can write to this store later.
	NewBatch() Batch
}

// Batch groups writes that are applied together by Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator walks a range of keys. It is positioned at the first entry on
// creation.
//
//	it, err := db.Iterator(start, end)
//	defer it.Close()
//	for ; it.Valid(); ... {
//		k, v := it.Key(), it.Value()
//		if err := it.Next(); err != nil { ... }
//	}
type Iterator interface {
	// Valid reports whether the current position holds an entry. Once
	// invalid, an iterator stays invalid.
	Valid() bool

	// Next moves to the next entry in iteration order. Panics when the
	// iterator is exhausted.
	Next() error

	// Key returns the key of the current entry.
	Key() []byte

	// Value returns the value of the current entry.
	Value() []byte

	// Close releases the iterator.
	Close()
}

// CacheableKVStore is a KVStore that supports cache wrapping.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a scratch pad of uncommitted writes layered over another
// store. Call Write to apply the staged writes to the underlying store, or
// Discard to drop them. Wraps can be nested.
type KVCacheWrap interface {
	CacheableKVStore

	// Write applies all staged writes to the underlying store.
	Write() error

	// Discard invalidates this wrap and drops all staged writes.
	Discard()
}
