package bptreemap

import (
	"iter"
	"slices"

	"github.com/cockroachdb/errors"
)

// ─── Range Iterator ───────────────────────────────────────────────────────────

// Iterator walks the leaf chain in ascending key order. The zero position is
// before the first entry; call Next to advance.
type Iterator[K, V any] struct {
	cmp     func(a, b K) int
	leaf    *leaf[K, V]
	idx     int
	to      K
	bounded bool
	key     K
	value   V
}

// Iter returns an iterator over the keys k with from <= k < to.
func (m *Map[K, V]) Iter(from, to K) *Iterator[K, V] {
	it := m.Seek(from)
	it.to, it.bounded = to, true
	return it
}

// Seek returns an unbounded iterator starting at the first key >= from.
func (m *Map[K, V]) Seek(from K) *Iterator[K, V] {
	l := m.findLeaf(from)
	idx, _ := slices.BinarySearchFunc(l.keys, from, m.cmp)
	return &Iterator[K, V]{cmp: m.cmp, leaf: l, idx: idx}
}

// head returns an iterator from the leftmost leaf up to, excluding, to.
func (m *Map[K, V]) head(to K) *Iterator[K, V] {
	return &Iterator[K, V]{cmp: m.cmp, leaf: m.first, to: to, bounded: true}
}

// Next advances to the next entry and reports whether there is one.
func (it *Iterator[K, V]) Next() bool {
	for it.leaf != nil {
		if it.idx < len(it.leaf.keys) {
			k := it.leaf.keys[it.idx]
			if it.bounded && it.cmp(k, it.to) >= 0 {
				it.leaf = nil
				return false
			}
			it.key, it.value = k, it.leaf.values[it.idx]
			it.idx++
			return true
		}
		it.leaf = it.leaf.next
		it.idx = 0
	}
	return false
}

// Key returns the key at the current position.
func (it *Iterator[K, V]) Key() K { return it.key }

// Value returns the value at the current position.
func (it *Iterator[K, V]) Value() V { return it.value }

func (it *Iterator[K, V]) seq() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for it.Next() {
			if !yield(it.key, it.value) {
				return
			}
		}
	}
}

// ─── Sequences ────────────────────────────────────────────────────────────────

// All returns every entry in ascending key order. Each range over the result
// starts again from the leftmost leaf.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for l := m.first; l != nil; l = l.next {
			for i := range l.keys {
				if !yield(l.keys[i], l.values[i]) {
					return
				}
			}
		}
	}
}

// Keys returns every key in ascending order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Range returns the entries with from <= key < to in ascending order. The
// descent to from happens when the sequence is ranged over.
func (m *Map[K, V]) Range(from, to K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.Iter(from, to).seq()(yield)
	}
}

// ─── Sub maps ─────────────────────────────────────────────────────────────────

// SubMap returns an independent copy of the entries with from <= key < to.
func (m *Map[K, V]) SubMap(from, to K) *Map[K, V] {
	return m.snapshot(m.Iter(from, to))
}

// HeadMap returns an independent copy of the entries with key < to.
func (m *Map[K, V]) HeadMap(to K) *Map[K, V] {
	return m.snapshot(m.head(to))
}

// TailMap returns an independent copy of the entries with key >= from,
// including the largest key.
func (m *Map[K, V]) TailMap(from K) *Map[K, V] {
	return m.snapshot(m.Seek(from))
}

func (m *Map[K, V]) snapshot(it *Iterator[K, V]) *Map[K, V] {
	sub := NewFunc[K, V](m.cmp, m.snapshotOptions()...)
	for it.Next() {
		if err := sub.Put(it.key, it.value); err != nil {
			panic(errors.NewAssertionErrorWithWrappedErrf(err, "bptreemap: leaf chain out of order"))
		}
	}
	return sub
}
