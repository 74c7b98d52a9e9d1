package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kv(t *testing.T, db ReadOnlyKVStore, key string) []byte {
	t.Helper()
	raw, err := db.Get([]byte(key))
	require.NoError(t, err)
	return raw
}

func set(t *testing.T, db SetDeleter, key, value string) {
	t.Helper()
	require.NoError(t, db.Set([]byte(key), []byte(value)))
}

func TestCacheWrapWriteCommits(t *testing.T) {
	db := MemStore()
	set(t, db, "a", "1")

	cache := db.CacheWrap()
	set(t, cache, "b", "2")

	// Staged write visible in the wrap but not below.
	assert.Equal(t, []byte("2"), kv(t, cache, "b"))
	assert.Nil(t, kv(t, db, "b"))
	// Backing data readable through the wrap.
	assert.Equal(t, []byte("1"), kv(t, cache, "a"))

	require.NoError(t, cache.Write())
	assert.Equal(t, []byte("2"), kv(t, db, "b"))
}

func TestCacheWrapDiscardDropsWrites(t *testing.T) {
	db := MemStore()
	set(t, db, "a", "1")

	cache := db.CacheWrap()
	set(t, cache, "a", "override")
	set(t, cache, "b", "2")
	require.NoError(t, cache.Delete([]byte("a")))

	cache.Discard()

	assert.Equal(t, []byte("1"), kv(t, db, "a"))
	assert.Nil(t, kv(t, db, "b"))
}

func TestCacheWrapDeleteShadowsParent(t *testing.T) {
	db := MemStore()
	set(t, db, "a", "1")

	cache := db.CacheWrap()
	require.NoError(t, cache.Delete([]byte("a")))

	assert.Nil(t, kv(t, cache, "a"))
	has, err := cache.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
	// Still present below until Write.
	assert.Equal(t, []byte("1"), kv(t, db, "a"))

	require.NoError(t, cache.Write())
	assert.Nil(t, kv(t, db, "a"))
}

func TestCacheWrapNested(t *testing.T) {
	db := MemStore()
	outer := db.CacheWrap()
	set(t, outer, "a", "1")

	inner := outer.CacheWrap()
	set(t, inner, "b", "2")

	require.NoError(t, inner.Write())
	assert.Equal(t, []byte("2"), kv(t, outer, "b"))
	assert.Nil(t, kv(t, db, "b"))

	require.NoError(t, outer.Write())
	assert.Equal(t, []byte("1"), kv(t, db, "a"))
	assert.Equal(t, []byte("2"), kv(t, db, "b"))
}

// iterKeys collects all keys in iteration order. Empty bounds are
// unbounded.
func iterKeys(t *testing.T, db ReadOnlyKVStore, reverse bool, start, end string) []string {
	t.Helper()
	var lo, hi []byte
	if start != "" {
		lo = []byte(start)
	}
	if end != "" {
		hi = []byte(end)
	}
	var it Iterator
	var err error
	if reverse {
		it, err = db.ReverseIterator(lo, hi)
	} else {
		it, err = db.Iterator(lo, hi)
	}
	require.NoError(t, err)
	defer it.Close()
	var keys []string
	for it.Valid() {
		keys = append(keys, string(it.Key()))
		require.NoError(t, it.Next())
	}
	return keys
}

func TestCacheWrapIteratorMergesSources(t *testing.T) {
	db := MemStore()
	set(t, db, "a", "1")
	set(t, db, "c", "3")
	set(t, db, "e", "5")

	cache := db.CacheWrap()
	set(t, cache, "b", "2")
	set(t, cache, "c", "override")
	require.NoError(t, cache.Delete([]byte("e")))

	assert.Equal(t, []string{"a", "b", "c"}, iterKeys(t, cache, false, "", ""))
	assert.Equal(t, []string{"c", "b", "a"}, iterKeys(t, cache, true, "", ""))

	// Overwritten value comes from the cache.
	it, err := cache.Iterator([]byte("c"), nil)
	require.NoError(t, err)
	defer it.Close()
	require.True(t, it.Valid())
	assert.Equal(t, []byte("override"), it.Value())
}

func TestCacheWrapIteratorBounds(t *testing.T) {
	db := MemStore()
	cache := db.CacheWrap()
	for _, key := range []string{"a", "b", "c", "d"} {
		set(t, cache, key, key)
	}

	assert.Equal(t, []string{"b", "c"}, iterKeys(t, cache, false, "b", "d"))
	assert.Equal(t, []string{"a", "b"}, iterKeys(t, cache, false, "", "c"))
	assert.Equal(t, []string{"c", "d"}, iterKeys(t, cache, false, "c", ""))

	assert.Equal(t, []string{"c", "b"}, iterKeys(t, cache, true, "b", "d"))
	assert.Equal(t, []string{"d", "c"}, iterKeys(t, cache, true, "c", ""))
	assert.Equal(t, []string{"b", "a"}, iterKeys(t, cache, true, "", "c"))
}
