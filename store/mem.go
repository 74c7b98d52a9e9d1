package store

import "fmt"

// sliceIterator walks a preloaded slice of entries.
type sliceIterator struct {
	data []entry
	idx  int
}

type entry struct {
	key   []byte
	value []byte
}

var _ Iterator = (*sliceIterator)(nil)

func (s *sliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

func (s *sliceIterator) Next() error {
	s.assertValid()
	s.idx++
	return nil
}

func (s *sliceIterator) assertValid() {
	if s.idx >= len(s.data) {
		panic("passed end of slice")
	}
}

func (s *sliceIterator) Key() []byte {
	s.assertValid()
	return s.data[s.idx].key
}

func (s *sliceIterator) Value() []byte {
	s.assertValid()
	return s.data[s.idx].value
}

func (s *sliceIterator) Close() {
	s.data = nil
}

// emptyStore never holds any data. It is the base layer of MemStore, where
// all content lives in the cache wrap above it.
type emptyStore struct{}

var _ KVStore = emptyStore{}

func (e emptyStore) Get([]byte) ([]byte, error) { return nil, nil }

func (e emptyStore) Has([]byte) (bool, error) { return false, nil }

func (e emptyStore) Set([]byte, []byte) error { return nil }

func (e emptyStore) Delete([]byte) error { return nil }

func (e emptyStore) Iterator(start, end []byte) (Iterator, error) {
	return &sliceIterator{}, nil
}

func (e emptyStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return &sliceIterator{}, nil
}

func (e emptyStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

type opKind int

const (
	setKind opKind = iota + 1
	delKind
)

// op is a single buffered set or delete.
type op struct {
	kind  opKind
	key   []byte
	value []byte // only for set
}

func (o op) apply(out SetDeleter) error {
	switch o.kind {
	case setKind:
		return out.Set(o.key, o.value)
	case delKind:
		return out.Delete(o.key)
	default:
		return fmt.Errorf("unknown op kind: %d", o.kind)
	}
}

// NonAtomicBatch piles up operations and applies them sequentially on
// Write. Use only for stores where batch atomicity is provided by a layer
// above, as the cache wrap does.
type NonAtomicBatch struct {
	out SetDeleter
	ops []op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch to be later written to the
// given store.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, op{kind: setKind, key: key, value: value})
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, op{kind: delKind, key: key})
	return nil
}

// Write applies all buffered operations and resets the batch.
func (b *NonAtomicBatch) Write() error {
	for _, o := range b.ops {
		if err := o.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}
