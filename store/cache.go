package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/splitledger/splitledger/errors"
)

// defaultFreeListSize is the size of the free node list shared between
// cache wraps layered on the same store.
const defaultFreeListSize = btree.DefaultFreeListSize

// CacheOnWrite adds a btree based CacheWrap strategy to a KVStore.
func CacheOnWrite(db KVStore) CacheableKVStore {
	return cacheable{db}
}

type cacheable struct {
	KVStore
}

var _ CacheableKVStore = cacheable{}

func (c cacheable) CacheWrap() KVCacheWrap {
	return newCacheWrap(c.KVStore, c.NewBatch(), nil)
}

// MemStore returns a non-persistent store implementation useful for tests.
func MemStore() CacheableKVStore {
	e := emptyStore{}
	return newCacheWrap(e, e.NewBatch(), nil)
}

// CacheWrap layers a btree of uncommitted writes over a read-only store.
// All writes go to both the btree, which serves reads, and the batch,
// which is flushed into the backing store on Write.
type CacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = CacheWrap{}

func newCacheWrap(back ReadOnlyKVStore, batch Batch, free *btree.FreeList) CacheWrap {
	if free == nil {
		free = btree.NewFreeList(defaultFreeListSize)
	}
	return CacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  back,
		batch: batch,
	}
}

// CacheWrap layers another scratch pad on top of this one. The free list is
// shared between the layers.
func (c CacheWrap) CacheWrap() KVCacheWrap {
	return newCacheWrap(c, c.NewBatch(), c.free)
}

// NewBatch returns a batch that eventually may write to this wrap.
func (c CacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(c)
}

// Write flushes all staged writes into the backing store and resets the
// scratch pad.
func (c CacheWrap) Write() error {
	err := c.batch.Write()
	c.Discard()
	return err
}

// Discard drops all staged writes and returns the btree nodes to the free
// list.
func (c CacheWrap) Discard() {
	for c.bt.DeleteMin() != nil {
	}
}

// Set stages a write.
func (c CacheWrap) Set(key, value []byte) error {
	c.bt.ReplaceOrInsert(setItem{treeKey{key}, value})
	return c.batch.Set(key, value)
}

// Delete stages a delete.
func (c CacheWrap) Delete(key []byte) error {
	c.bt.ReplaceOrInsert(deletedItem{treeKey{key}})
	return c.batch.Delete(key)
}

// Get reads from the scratch pad if the key was touched, otherwise from
// the backing store.
func (c CacheWrap) Get(key []byte) ([]byte, error) {
	switch item := c.bt.Get(treeKey{key}).(type) {
	case setItem:
		return item.value, nil
	case deletedItem:
		return nil, nil
	case nil:
		return c.back.Get(key)
	default:
		return nil, errors.Wrapf(errors.ErrDatabase, "unknown btree item: %#v", item)
	}
}

// Has reads from the scratch pad if the key was touched, otherwise from
// the backing store.
func (c CacheWrap) Has(key []byte) (bool, error) {
	switch item := c.bt.Get(treeKey{key}).(type) {
	case setItem:
		return true, nil
	case deletedItem:
		return false, nil
	case nil:
		return c.back.Has(key)
	default:
		return false, errors.Wrapf(errors.ErrDatabase, "unknown btree item: %#v", item)
	}
}

// Iterator merges staged writes with the backing store, ascending.
func (c CacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := c.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	var staged []btree.Item
	collect := func(item btree.Item) bool {
		staged = append(staged, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		c.bt.Ascend(collect)
	case start == nil:
		c.bt.AscendLessThan(treeKey{end}, collect)
	case end == nil:
		c.bt.AscendGreaterOrEqual(treeKey{start}, collect)
	default:
		c.bt.AscendRange(treeKey{start}, treeKey{end}, collect)
	}
	return newMergeIterator(staged, parent, false)
}

// ReverseIterator merges staged writes with the backing store, descending.
func (c CacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := c.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	var staged []btree.Item
	collect := func(item btree.Item) bool {
		staged = append(staged, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		c.bt.Descend(collect)
	case start == nil:
		c.bt.DescendLessOrEqual(boundKey{end}, collect)
	case end == nil:
		c.bt.DescendGreaterThan(boundKey{start}, collect)
	default:
		c.bt.DescendRange(boundKey{end}, boundKey{start}, collect)
	}
	return newMergeIterator(staged, parent, true)
}

// keyer is implemented by every item stored in the btree so that items can
// be ordered.
type keyer interface {
	Key() []byte
}

// treeKey implements keyer and btree.Item. Used both for queries and
// embedded in stored items.
type treeKey struct {
	key []byte
}

var _ keyer = treeKey{}
var _ btree.Item = treeKey{}

func (k treeKey) Key() []byte {
	return k.key
}

// Less returns true iff the second argument is greater than the first.
// Panics if the compared item does not implement keyer.
func (k treeKey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

// boundKey compares as just below an exact key match, so descending scans
// can treat the end bound as exclusive.
type boundKey struct {
	key []byte
}

var _ keyer = boundKey{}
var _ btree.Item = boundKey{}

func (k boundKey) Key() []byte {
	return k.key
}

func (k boundKey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) <= 0
}

type setItem struct {
	treeKey
	value []byte
}

type deletedItem struct {
	treeKey
}
