package store

import (
	"bytes"

	"github.com/google/btree"
)

// source marks where the current entry of a merge iterator comes from.
type source int

const (
	us source = iota
	parent
	both
	none
)

// mergeIterator combines staged btree items with the iterator of the
// backing store, honoring overwrites and deletes.
type mergeIterator struct {
	items   []btree.Item
	idx     int
	parent  Iterator
	reverse bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(staged []btree.Item, parent Iterator, reverse bool) (*mergeIterator, error) {
	it := &mergeIterator{
		items:   staged,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.skipAllDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

func (it *mergeIterator) Valid() bool {
	return it.idx < len(it.items) || it.parentValid()
}

func (it *mergeIterator) Next() error {
	switch it.first() {
	case us:
		it.idx++
	case both:
		it.idx++
		fallthrough
	case parent:
		if err := it.parent.Next(); err != nil {
			return err
		}
	default:
		panic("advanced past the end")
	}
	return it.skipAllDeleted()
}

func (it *mergeIterator) Key() []byte {
	switch it.first() {
	case us, both:
		return it.item().Key()
	case parent:
		return it.parent.Key()
	default:
		panic("advanced past the end")
	}
}

func (it *mergeIterator) Value() []byte {
	switch it.first() {
	case us, both:
		return it.items[it.idx].(setItem).value
	case parent:
		return it.parent.Value()
	default:
		panic("advanced past the end")
	}
}

func (it *mergeIterator) Close() {
	if it.parent != nil {
		it.parent.Close()
	}
	it.items = nil
}

func (it *mergeIterator) item() keyer {
	return it.items[it.idx].(keyer)
}

// skipAllDeleted fast-forwards over any number of staged deletes, together
// with the shadowed parent entries.
func (it *mergeIterator) skipAllDeleted() error {
	for {
		src := it.first()
		if src != us && src != both {
			return nil
		}
		if _, deleted := it.items[it.idx].(deletedItem); !deleted {
			return nil
		}
		it.idx++
		if src == both {
			if err := it.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// first selects the side holding the next entry in iteration order.
func (it *mergeIterator) first() source {
	if !it.parentValid() {
		if it.idx >= len(it.items) {
			return none
		}
		return us
	}
	if it.idx >= len(it.items) {
		return parent
	}

	cmp := bytes.Compare(it.parent.Key(), it.item().Key())
	if it.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}

func (it *mergeIterator) parentValid() bool {
	return it.parent != nil && it.parent.Valid()
}
