// Package bptreemap implements an in-memory B+ tree map.
//
// All entries live in leaves. Leaves are linked left to right so ordered
// scans never re-descend the tree. Internal nodes hold divider keys using the
// largest-left convention: divider i is the largest key stored below child i,
// and a key equal to a divider belongs to the divider's left subtree.
//
// Node capacity is governed by the order: an internal node has at most order
// children and every node holds at most order-1 keys. A full node is split
// around MID = ceil(order/2). Leaf splits copy the left half's largest key up
// as the new divider; internal splits move their middle key up.
//
// Keys are never removed. A Map is not safe for concurrent use.
package bptreemap

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"
)

// Map is an ordered map backed by a B+ tree.
type Map[K, V any] struct {
	order    int
	mid      int
	cmp      func(a, b K) int
	root     node[K, V]
	first    *leaf[K, V] // leftmost leaf, start of the leaf chain
	height   int
	accesses int
	logger   *slog.Logger
}

// New returns an empty map ordered by the natural order of K.
func New[K cmp.Ordered, V any](opts ...Option) *Map[K, V] {
	return NewFunc[K, V](cmp.Compare[K], opts...)
}

// NewFunc returns an empty map ordered by compare, which must define a total
// order and return a negative, zero or positive result like cmp.Compare.
// Orders below MinOrder are raised to MinOrder.
func NewFunc[K, V any](compare func(a, b K) int, opts ...Option) *Map[K, V] {
	o := buildOptions(opts)
	if o.order < MinOrder {
		o.order = MinOrder
	}
	root := newLeaf[K, V](o.order)
	return &Map[K, V]{
		order:  o.order,
		mid:    (o.order + 1) / 2,
		cmp:    compare,
		root:   root,
		first:  root,
		height: 1,
		logger: o.logger,
	}
}

// Order returns the maximum number of children per internal node.
func (m *Map[K, V]) Order() int { return m.order }

// Height returns the number of levels, 1 for a tree that is a single leaf.
func (m *Map[K, V]) Height() int { return m.height }

// Accesses returns the number of nodes visited by descents since the last
// ResetAccesses.
func (m *Map[K, V]) Accesses() int { return m.accesses }

// ResetAccesses zeroes the access counter.
func (m *Map[K, V]) ResetAccesses() { m.accesses = 0 }

// ─── Get ──────────────────────────────────────────────────────────────────────

// Get returns the value stored for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	l := m.findLeaf(key)
	idx, found := slices.BinarySearchFunc(l.keys, key, m.cmp)
	if !found {
		var zero V
		return zero, false
	}
	return l.values[idx], true
}

// findLeaf descends to the leaf that owns key: at every level it follows the
// first child whose divider is >= key, or the last child.
func (m *Map[K, V]) findLeaf(key K) *leaf[K, V] {
	curr := m.root
	for {
		m.accesses++
		switch n := curr.(type) {
		case *leaf[K, V]:
			return n
		case *internal[K, V]:
			idx, _ := slices.BinarySearchFunc(n.keys, key, m.cmp)
			curr = n.children[idx]
		default:
			panic(errors.AssertionFailedf("bptreemap: unknown node type %T", curr))
		}
	}
}

// ─── Insert ───────────────────────────────────────────────────────────────────

// Put inserts key with value. If key is already present Put returns an error
// wrapping ErrDuplicateKey and leaves the map unchanged; existing values are
// never replaced.
func (m *Map[K, V]) Put(key K, value V) error {
	divider, right, split, err := m.insertRec(m.root, key, value)
	if err != nil {
		return err
	}
	if !split {
		return nil
	}
	root := newInternal[K, V](m.order)
	root.keys = append(root.keys, divider)
	root.children = append(root.children, m.root, right)
	m.root = root
	m.height++
	m.logger.Debug("bptreemap: root split", "height", m.height, "divider", divider)
	return nil
}

// insertRec returns (divider, rightSibling, didSplit, error). When didSplit is
// true the caller must link rightSibling directly after the node it descended
// into, separated by divider.
func (m *Map[K, V]) insertRec(curr node[K, V], key K, value V) (K, node[K, V], bool, error) {
	m.accesses++
	var zero K
	switch n := curr.(type) {
	case *leaf[K, V]:
		return m.insertLeaf(n, key, value)
	case *internal[K, V]:
		idx, _ := slices.BinarySearchFunc(n.keys, key, m.cmp)
		divider, right, split, err := m.insertRec(n.children[idx], key, value)
		if err != nil || !split {
			return zero, nil, false, err
		}
		return m.insertInternal(n, idx, divider, right)
	default:
		panic(errors.AssertionFailedf("bptreemap: unknown node type %T", curr))
	}
}

func (m *Map[K, V]) insertLeaf(l *leaf[K, V], key K, value V) (K, node[K, V], bool, error) {
	var zero K
	idx, found := slices.BinarySearchFunc(l.keys, key, m.cmp)
	if found {
		m.logger.Debug("bptreemap: duplicate key rejected", "key", key)
		return zero, nil, false, errors.Wrapf(ErrDuplicateKey, "key %v", key)
	}

	switch n := len(l.keys); {
	case n < m.order-1:
		l.keys = slices.Insert(l.keys, idx, key)
		l.values = slices.Insert(l.values, idx, value)
		return zero, nil, false, nil
	case n > m.order-1:
		panic(errors.AssertionFailedf("bptreemap: leaf holds %d keys, order %d", n, m.order))
	}
	return m.splitLeaf(l, idx, key, value)
}

// splitLeaf merges the new entry into a full leaf and splits the order
// entries: the first mid stay in l, the rest move to a new right sibling.
// The divider is a copy of the largest key left in l.
func (m *Map[K, V]) splitLeaf(l *leaf[K, V], idx int, key K, value V) (K, node[K, V], bool, error) {
	keys := make([]K, 0, m.order)
	keys = append(keys, l.keys[:idx]...)
	keys = append(keys, key)
	keys = append(keys, l.keys[idx:]...)

	values := make([]V, 0, m.order)
	values = append(values, l.values[:idx]...)
	values = append(values, value)
	values = append(values, l.values[idx:]...)

	right := newLeaf[K, V](m.order)
	right.keys = append(right.keys, keys[m.mid:]...)
	right.values = append(right.values, values[m.mid:]...)

	l.keys = append(l.keys[:0], keys[:m.mid]...)
	l.values = append(l.values[:0], values[:m.mid]...)
	clear(l.keys[m.mid:cap(l.keys)])
	clear(l.values[m.mid:cap(l.values)])

	// Link: left -> right -> old next
	right.next = l.next
	l.next = right

	return l.lastKey(), right, true, nil
}

func (m *Map[K, V]) insertInternal(n *internal[K, V], idx int, divider K, right node[K, V]) (K, node[K, V], bool, error) {
	var zero K
	switch c := len(n.keys); {
	case c < m.order-1:
		n.keys = slices.Insert(n.keys, idx, divider)
		n.children = slices.Insert(n.children, idx+1, right)
		return zero, nil, false, nil
	case c > m.order-1:
		panic(errors.AssertionFailedf("bptreemap: internal node holds %d keys, order %d", c, m.order))
	}
	return m.splitInternal(n, idx, divider, right)
}

// splitInternal merges the new divider and child into a full internal node
// and splits the order keys and order+1 children. n keeps mid-1 keys and mid
// children, key mid-1 moves up to the parent, the rest go to a new sibling.
func (m *Map[K, V]) splitInternal(n *internal[K, V], idx int, divider K, right node[K, V]) (K, node[K, V], bool, error) {
	keys := make([]K, 0, m.order)
	keys = append(keys, n.keys[:idx]...)
	keys = append(keys, divider)
	keys = append(keys, n.keys[idx:]...)

	children := make([]node[K, V], 0, m.order+1)
	children = append(children, n.children[:idx+1]...)
	children = append(children, right)
	children = append(children, n.children[idx+1:]...)

	promoted := keys[m.mid-1]

	sibling := newInternal[K, V](m.order)
	sibling.keys = append(sibling.keys, keys[m.mid:]...)
	sibling.children = append(sibling.children, children[m.mid:]...)

	n.keys = append(n.keys[:0], keys[:m.mid-1]...)
	n.children = append(n.children[:0], children[:m.mid]...)
	clear(n.keys[m.mid-1 : cap(n.keys)])
	clear(n.children[m.mid:cap(n.children)])

	return promoted, sibling, true, nil
}

// ─── First / Last / Size ──────────────────────────────────────────────────────

// FirstKey returns the smallest key, or ErrEmptyMap.
func (m *Map[K, V]) FirstKey() (K, error) {
	if len(m.first.keys) == 0 {
		var zero K
		return zero, ErrEmptyMap
	}
	return m.first.keys[0], nil
}

// LastKey returns the largest key, or ErrEmptyMap. It follows the last child
// at every level rather than walking the leaf chain.
func (m *Map[K, V]) LastKey() (K, error) {
	curr := m.root
	for {
		switch n := curr.(type) {
		case *leaf[K, V]:
			if len(n.keys) == 0 {
				var zero K
				return zero, ErrEmptyMap
			}
			return n.lastKey(), nil
		case *internal[K, V]:
			curr = n.children[len(n.keys)]
		default:
			panic(errors.AssertionFailedf("bptreemap: unknown node type %T", curr))
		}
	}
}

// Size returns the number of keys. It walks the leaf chain, so it costs one
// step per leaf.
func (m *Map[K, V]) Size() int {
	sum := 0
	for l := m.first; l != nil; l = l.next {
		sum += len(l.keys)
	}
	return sum
}
