package bptreemap

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[K, V any](m *Map[K, V]) ([]K, []V) {
	var keys []K
	var values []V
	for k, v := range m.All() {
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values
}

func putAll(t *testing.T, m *Map[int, int], keys ...int) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, m.Put(k, k*k))
	}
}

func TestEmptyMap(t *testing.T) {
	m := New[int, string]()

	_, err := m.FirstKey()
	assert.ErrorIs(t, err, ErrEmptyMap)
	_, err = m.LastKey()
	assert.ErrorIs(t, err, ErrEmptyMap)

	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 1, m.Height())

	_, ok := m.Get(42)
	assert.False(t, ok)

	for range m.All() {
		t.Fatal("empty map yielded an entry")
	}
	assert.Equal(t, 0, m.HeadMap(10).Size())
	assert.Equal(t, 0, m.TailMap(10).Size())
	assert.Equal(t, 0, m.SubMap(0, 10).Size())
	require.NoError(t, m.Check())
}

func TestLeafSplitGrowsRoot(t *testing.T) {
	m := New[int, int](WithOrder(5))

	putAll(t, m, 1, 3, 5, 7)
	assert.Equal(t, 1, m.Height())
	assert.Equal(t, "[ . 1 . 3 . 5 . 7 . ]\n", m.String())

	putAll(t, m, 9)
	assert.Equal(t, 2, m.Height())
	assert.Equal(t, "[ . 5 . ]\n\t[ . 1 . 3 . 5 . ]\n\t[ . 7 . 9 . ]\n", m.String())
	require.NoError(t, m.Check())

	root, ok := m.root.(*internal[int, int])
	require.True(t, ok)
	left := root.children[0].(*leaf[int, int])
	right := root.children[1].(*leaf[int, int])
	assert.Equal(t, []int{1, 3, 5}, left.keys)
	assert.Equal(t, []int{7, 9}, right.keys)
	assert.Same(t, right, left.next)
	assert.Nil(t, right.next)
	assert.Same(t, left, m.first)

	// 5 equals the divider and resolves through the left leaf.
	assert.Same(t, left, m.findLeaf(5))
	assert.Same(t, right, m.findLeaf(9))

	v, ok := m.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 25, v)
	v, ok = m.Get(9)
	assert.True(t, ok)
	assert.Equal(t, 81, v)
}

func TestInternalSplitPromotesMiddleKey(t *testing.T) {
	m := New[int, int](WithOrder(3))
	putAll(t, m, 1, 2, 3, 4, 5, 6)
	assert.Equal(t, 2, m.Height())

	putAll(t, m, 7)
	assert.Equal(t, 3, m.Height())
	want := strings.Join([]string{
		"[ . 4 . ]",
		"\t[ . 2 . ]",
		"\t\t[ . 1 . 2 . ]",
		"\t\t[ . 3 . 4 . ]",
		"\t[ . 6 . ]",
		"\t\t[ . 5 . 6 . ]",
		"\t\t[ . 7 . ]",
	}, "\n") + "\n"
	assert.Equal(t, want, m.String())
	require.NoError(t, m.Check())

	keys, _ := collect(m)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, keys)
}

func TestDuplicateKeyRejected(t *testing.T) {
	m := New[int, int](WithOrder(5))
	putAll(t, m, 1, 3, 5, 7, 9)

	err := m.Put(5, -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Contains(t, err.Error(), "5")

	assert.Equal(t, 5, m.Size())
	v, ok := m.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 25, v)
	require.NoError(t, m.Check())
}

func TestRangeQueries(t *testing.T) {
	m := New[int, int](WithOrder(5))
	putAll(t, m, 1, 3, 5, 7, 9, 11, 13)

	tests := []struct {
		name string
		sub  *Map[int, int]
		want []int
	}{
		{"sub 3..9", m.SubMap(3, 9), []int{3, 5, 7}},
		{"tail 7", m.TailMap(7), []int{7, 9, 11, 13}},
		{"head 7", m.HeadMap(7), []int{1, 3, 5}},
		{"sub between keys", m.SubMap(4, 10), []int{5, 7, 9}},
		{"sub empty interval", m.SubMap(9, 9), nil},
		{"sub inverted", m.SubMap(9, 3), nil},
		{"sub past end", m.SubMap(14, 100), nil},
		{"head before first", m.HeadMap(1), nil},
		{"tail past last", m.TailMap(14), nil},
		{"tail includes last", m.TailMap(13), []int{13}},
		{"sub covers all", m.SubMap(0, 100), []int{1, 3, 5, 7, 9, 11, 13}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			keys, values := collect(tc.sub)
			assert.Equal(t, tc.want, keys)
			for i, k := range keys {
				assert.Equal(t, k*k, values[i])
			}
			assert.Equal(t, len(tc.want), tc.sub.Size())
			require.NoError(t, tc.sub.Check())
		})
	}

	var got []int
	for k := range m.Range(3, 9) {
		got = append(got, k)
	}
	assert.Equal(t, []int{3, 5, 7}, got)
}

func TestSubMapIsIndependent(t *testing.T) {
	m := New[int, int](WithOrder(4))
	putAll(t, m, 10, 20, 30, 40, 50)

	sub := m.SubMap(20, 50)
	require.NoError(t, sub.Put(25, 0))
	require.NoError(t, m.Put(35, 0))

	subKeys, _ := collect(sub)
	keys, _ := collect(m)
	assert.Equal(t, []int{20, 25, 30, 40}, subKeys)
	assert.Equal(t, []int{10, 20, 30, 35, 40, 50}, keys)
	assert.Equal(t, m.Order(), sub.Order())
}

func TestFirstAndLastKey(t *testing.T) {
	m := New[int, int](WithOrder(4))
	keys := rand.New(rand.NewPCG(7, 7)).Perm(500)
	for _, k := range keys {
		require.NoError(t, m.Put(k+100, k))
	}
	first, err := m.FirstKey()
	require.NoError(t, err)
	last, err := m.LastKey()
	require.NoError(t, err)
	assert.Equal(t, 100, first)
	assert.Equal(t, 599, last)
}

func TestRoundTrip(t *testing.T) {
	n := 3000
	if testing.Short() {
		n = 300
	}
	for _, order := range []int{3, 4, 5, 8, 32, 128} {
		t.Run(fmt.Sprintf("order=%d", order), func(t *testing.T) {
			m := New[int, int](WithOrder(order))
			rng := rand.New(rand.NewPCG(uint64(order), 42))
			perm := rng.Perm(n)
			for i, p := range perm {
				require.NoError(t, m.Put(2*p+1, p))
				if i%97 == 0 {
					require.NoError(t, m.Check(), "after %d inserts", i+1)
				}
			}
			require.NoError(t, m.Check())
			assert.Equal(t, n, m.Size())

			for p := 0; p < n; p++ {
				v, ok := m.Get(2*p + 1)
				require.True(t, ok, "key %d", 2*p+1)
				require.Equal(t, p, v)
				_, ok = m.Get(2 * p)
				require.False(t, ok, "key %d", 2*p)
			}

			keys, _ := collect(m)
			assert.True(t, slices.IsSorted(keys))
			assert.Len(t, keys, n)
		})
	}
}

func TestSequentialInsertOrders(t *testing.T) {
	for _, name := range []string{"ascending", "descending"} {
		t.Run(name, func(t *testing.T) {
			m := New[int, int](WithOrder(5))
			for i := 0; i < 1000; i++ {
				k := i
				if name == "descending" {
					k = 999 - i
				}
				require.NoError(t, m.Put(k, k))
			}
			require.NoError(t, m.Check())
			assert.Equal(t, 1000, m.Size())
			assert.Greater(t, m.Height(), 3)

			prev := -1
			for k := range m.Keys() {
				require.Equal(t, prev+1, k)
				prev = k
			}
			assert.Equal(t, 999, prev)
		})
	}
}

func TestIterationIsRestartable(t *testing.T) {
	m := New[int, int](WithOrder(4))
	putAll(t, m, 5, 1, 4, 2, 3, 9, 8, 7, 6)

	seq := m.All()
	var first, second []int
	for k := range seq {
		first = append(first, k)
	}
	for k := range seq {
		second = append(second, k)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, first)
	assert.Equal(t, first, second)

	var partial []int
	for k := range seq {
		if k > 3 {
			break
		}
		partial = append(partial, k)
	}
	assert.Equal(t, []int{1, 2, 3}, partial)
}

func TestIterator(t *testing.T) {
	m := New[int, int](WithOrder(3))
	putAll(t, m, 2, 4, 6, 8, 10, 12, 14)

	it := m.Iter(5, 12)
	var keys []int
	for it.Next() {
		keys = append(keys, it.Key())
		assert.Equal(t, it.Key()*it.Key(), it.Value())
	}
	assert.Equal(t, []int{6, 8, 10}, keys)
	assert.False(t, it.Next())

	it = m.Seek(13)
	require.True(t, it.Next())
	assert.Equal(t, 14, it.Key())
	assert.False(t, it.Next())

	assert.False(t, m.Seek(15).Next())
}

type movieKey struct {
	title string
	year  int
}

func compareMovie(a, b movieKey) int {
	if c := strings.Compare(a.title, b.title); c != 0 {
		return c
	}
	return a.year - b.year
}

func TestCompositeKeys(t *testing.T) {
	m := NewFunc[movieKey, string](compareMovie, WithOrder(4))
	movies := []movieKey{
		{"Star_Wars", 1977},
		{"Star_Wars_2", 1980},
		{"Rocky", 1985},
		{"Rambo", 1978},
		{"Training_Day", 2001},
		{"Rocky", 1976},
	}
	for _, k := range movies {
		require.NoError(t, m.Put(k, k.title))
	}
	require.ErrorIs(t, m.Put(movieKey{"Rocky", 1985}, "again"), ErrDuplicateKey)
	require.NoError(t, m.Check())

	keys, _ := collect(m)
	assert.Equal(t, []movieKey{
		{"Rambo", 1978},
		{"Rocky", 1976},
		{"Rocky", 1985},
		{"Star_Wars", 1977},
		{"Star_Wars_2", 1980},
		{"Training_Day", 2001},
	}, keys)

	rocky := m.SubMap(movieKey{"Rocky", 0}, movieKey{"Rocky", 9999})
	assert.Equal(t, 2, rocky.Size())
}

func TestAccessCounter(t *testing.T) {
	m := New[int, int](WithOrder(5))
	putAll(t, m, 1, 3, 5, 7, 9)
	require.Equal(t, 2, m.Height())

	m.ResetAccesses()
	_, _ = m.Get(7)
	assert.Equal(t, 2, m.Accesses())

	_ = m.Put(11, 0)
	assert.Equal(t, 4, m.Accesses())

	m.ResetAccesses()
	assert.Equal(t, 0, m.Accesses())
}

func TestOrderIsClamped(t *testing.T) {
	m := New[int, int](WithOrder(1))
	assert.Equal(t, MinOrder, m.Order())
	putAll(t, m, 3, 1, 2, 5, 4)
	require.NoError(t, m.Check())
	assert.Equal(t, DefaultOrder, New[int, int]().Order())
}

func BenchmarkPut(b *testing.B) {
	keys := rand.New(rand.NewPCG(1, 2)).Perm(b.N)
	m := New[int, int](WithOrder(64))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Put(keys[i], i)
	}
}

func BenchmarkGet(b *testing.B) {
	const n = 1 << 16
	m := New[int, int](WithOrder(64))
	for i := 0; i < n; i++ {
		_ = m.Put(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Get(i % n)
	}
}
