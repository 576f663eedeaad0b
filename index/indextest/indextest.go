// Package indextest holds the behavioral tests every index.Index
// implementation must pass.
package indextest

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btree-query-bench/bptreemap/index"
)

// Factory returns a new, empty index. The index is closed by the suite.
type Factory func(t *testing.T) index.Index

// Run exercises indexes built by newIndex against the index contract.
func Run(t *testing.T, newIndex Factory) {
	t.Run("InsertGet", func(t *testing.T) { testInsertGet(t, open(t, newIndex)) })
	t.Run("Missing", func(t *testing.T) { testMissing(t, open(t, newIndex)) })
	t.Run("Duplicate", func(t *testing.T) { testDuplicate(t, open(t, newIndex)) })
	t.Run("HalfOpenRange", func(t *testing.T) { testHalfOpenRange(t, open(t, newIndex)) })
	t.Run("EmptyRange", func(t *testing.T) { testEmptyRange(t, open(t, newIndex)) })
	t.Run("NegativeKeys", func(t *testing.T) { testNegativeKeys(t, open(t, newIndex)) })
	t.Run("Random", func(t *testing.T) { testRandom(t, open(t, newIndex)) })
}

func open(t *testing.T, newIndex Factory) index.Index {
	t.Helper()
	idx := newIndex(t)
	t.Cleanup(func() { assert.NoError(t, idx.Close()) })
	return idx
}

func val(k int64) []byte { return []byte(fmt.Sprintf("v%d", k)) }

// Collect drains a range iterator into its keys.
func Collect(t *testing.T, idx index.Index, start, end int64) []int64 {
	t.Helper()
	it, err := idx.Range(start, end)
	require.NoError(t, err)
	var keys []int64
	for it.Next() {
		keys = append(keys, it.Key())
		assert.Equal(t, val(it.Key()), it.Value())
	}
	require.NoError(t, it.Error())
	require.NoError(t, it.Close())
	return keys
}

func insertAll(t *testing.T, idx index.Index, keys ...int64) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, idx.Insert(k, val(k)))
	}
}

func testInsertGet(t *testing.T, idx index.Index) {
	insertAll(t, idx, 50, 10, 30, 20, 40)
	assert.Equal(t, 5, idx.Len())
	for _, k := range []int64{10, 20, 30, 40, 50} {
		v, ok, err := idx.Get(k)
		require.NoError(t, err)
		require.True(t, ok, "key %d", k)
		assert.Equal(t, val(k), v)
	}
}

func testMissing(t *testing.T, idx index.Index) {
	_, ok, err := idx.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)

	insertAll(t, idx, 2, 4)
	for _, k := range []int64{1, 3, 5} {
		_, ok, err := idx.Get(k)
		require.NoError(t, err)
		assert.False(t, ok, "key %d", k)
	}
}

func testDuplicate(t *testing.T, idx index.Index) {
	insertAll(t, idx, 7)
	err := idx.Insert(7, []byte("other"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, index.ErrDuplicateKey))
	assert.Equal(t, 1, idx.Len())

	v, ok, err := idx.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, val(7), v)
}

func testHalfOpenRange(t *testing.T, idx index.Index) {
	insertAll(t, idx, 1, 3, 5, 7, 9, 11, 13)
	assert.Equal(t, []int64{3, 5, 7}, Collect(t, idx, 3, 9))
	assert.Equal(t, []int64{3, 5, 7, 9}, Collect(t, idx, 2, 10))
	assert.Equal(t, []int64{1, 3, 5, 7, 9, 11, 13}, Collect(t, idx, 0, 100))
	assert.Equal(t, []int64{13}, Collect(t, idx, 13, 14))
}

func testEmptyRange(t *testing.T, idx index.Index) {
	assert.Empty(t, Collect(t, idx, 0, 10))
	insertAll(t, idx, 1, 2, 3)
	assert.Empty(t, Collect(t, idx, 2, 2))
	assert.Empty(t, Collect(t, idx, 3, 1))
	assert.Empty(t, Collect(t, idx, 4, 10))
}

func testNegativeKeys(t *testing.T, idx index.Index) {
	insertAll(t, idx, 3, -1, 0, -100, 42)
	assert.Equal(t, []int64{-100, -1, 0, 3}, Collect(t, idx, -200, 42))
	v, ok, err := idx.Get(-100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, val(-100), v)
}

func testRandom(t *testing.T, idx index.Index) {
	rng := rand.New(rand.NewPCG(1, 2))
	var oracle []int64
	seen := make(map[int64]bool)
	for len(oracle) < 2000 {
		k := rng.Int64N(10000) - 5000
		err := idx.Insert(k, val(k))
		if seen[k] {
			require.True(t, errors.Is(err, index.ErrDuplicateKey))
			continue
		}
		require.NoError(t, err)
		seen[k] = true
		oracle = append(oracle, k)
	}
	slices.Sort(oracle)
	assert.Equal(t, len(oracle), idx.Len())
	assert.Equal(t, oracle, Collect(t, idx, -5000, 5000))

	for range 50 {
		lo := rng.Int64N(10000) - 5000
		hi := lo + rng.Int64N(500)
		var want []int64
		for _, k := range oracle {
			if k >= lo && k < hi {
				want = append(want, k)
			}
		}
		assert.Equal(t, want, Collect(t, idx, lo, hi), "range [%d, %d)", lo, hi)
	}
}
