package bptreemap

import "github.com/cockroachdb/errors"

// Check verifies the structural invariants of the tree and returns an
// assertion failure describing the first violation found, or nil.
//
// It checks node capacity and fill, divider placement (every divider equals
// the largest key of its left subtree and precedes every key of the subtree
// to its right), uniform leaf depth, and that the leaf chain starting at the
// cached leftmost leaf visits exactly the leaves reachable from the root, in
// order, with strictly ascending keys. Check is meant for tests and
// diagnostics; it costs O(N).
func (m *Map[K, V]) Check() error {
	var leaves []*leaf[K, V]
	if _, _, err := m.checkNode(m.root, 1, true, &leaves); err != nil {
		return err
	}
	if m.first != leaves[0] {
		return errors.AssertionFailedf("bptreemap: cached first leaf is not the leftmost leaf")
	}

	i := 0
	var prev *leaf[K, V]
	for l := m.first; l != nil; l = l.next {
		if i >= len(leaves) || l != leaves[i] {
			return errors.AssertionFailedf("bptreemap: leaf chain diverges from tree at leaf %d", i)
		}
		if prev != nil && m.cmp(prev.lastKey(), l.keys[0]) >= 0 {
			return errors.AssertionFailedf("bptreemap: leaf chain not ascending at leaf %d", i)
		}
		prev = l
		i++
	}
	if i != len(leaves) {
		return errors.AssertionFailedf("bptreemap: leaf chain visits %d of %d leaves", i, len(leaves))
	}
	return nil
}

// checkNode returns the smallest and largest key below n.
func (m *Map[K, V]) checkNode(n node[K, V], depth int, isRoot bool, leaves *[]*leaf[K, V]) (lo, hi K, err error) {
	count := n.numKeys()
	if count > m.order-1 {
		return lo, hi, errors.AssertionFailedf("bptreemap: node at depth %d holds %d keys, max %d", depth, count, m.order-1)
	}
	for i := 1; i < count; i++ {
		if m.cmp(n.keyAt(i-1), n.keyAt(i)) >= 0 {
			return lo, hi, errors.AssertionFailedf("bptreemap: keys not ascending at depth %d position %d", depth, i)
		}
	}

	switch x := n.(type) {
	case *leaf[K, V]:
		if depth != m.height {
			return lo, hi, errors.AssertionFailedf("bptreemap: leaf at depth %d, height %d", depth, m.height)
		}
		if len(x.values) != count {
			return lo, hi, errors.AssertionFailedf("bptreemap: leaf has %d keys and %d values", count, len(x.values))
		}
		if !isRoot && count < m.order-m.mid {
			return lo, hi, errors.AssertionFailedf("bptreemap: leaf holds %d keys, min %d", count, m.order-m.mid)
		}
		*leaves = append(*leaves, x)
		if count == 0 {
			return lo, hi, nil
		}
		return x.keys[0], x.lastKey(), nil

	case *internal[K, V]:
		if count == 0 || (!isRoot && count < m.mid-1) {
			return lo, hi, errors.AssertionFailedf("bptreemap: internal node at depth %d holds %d keys", depth, count)
		}
		if len(x.children) != count+1 {
			return lo, hi, errors.AssertionFailedf("bptreemap: internal node has %d keys and %d children", count, len(x.children))
		}
		for i, child := range x.children {
			clo, chi, err := m.checkNode(child, depth+1, false, leaves)
			if err != nil {
				return lo, hi, err
			}
			if i < count && m.cmp(chi, x.keys[i]) != 0 {
				return lo, hi, errors.AssertionFailedf("bptreemap: divider %d at depth %d is not the largest key of its left subtree", i, depth)
			}
			if i > 0 && m.cmp(clo, x.keys[i-1]) <= 0 {
				return lo, hi, errors.AssertionFailedf("bptreemap: child %d at depth %d holds a key <= divider %d", i, depth, i-1)
			}
			if i == 0 {
				lo = clo
			}
			hi = chi
		}
		return lo, hi, nil

	default:
		return lo, hi, errors.AssertionFailedf("bptreemap: unknown node type %T", n)
	}
}
