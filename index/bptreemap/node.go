package bptreemap

// node is either a *leaf or an *internal. The set is closed: only this
// package implements it.
type node[K, V any] interface {
	numKeys() int
	keyAt(i int) K
}

// leaf holds the data entries. next links to the leaf holding the following
// keys; it orders the chain but never owns the sibling, the parent does.
type leaf[K, V any] struct {
	keys   []K
	values []V
	next   *leaf[K, V]
}

// internal holds divider keys and len(keys)+1 children. keys[i] is the
// largest key in the subtree of children[i].
type internal[K, V any] struct {
	keys     []K
	children []node[K, V]
}

func newLeaf[K, V any](order int) *leaf[K, V] {
	return &leaf[K, V]{
		keys:   make([]K, 0, order-1),
		values: make([]V, 0, order-1),
	}
}

func newInternal[K, V any](order int) *internal[K, V] {
	return &internal[K, V]{
		keys:     make([]K, 0, order-1),
		children: make([]node[K, V], 0, order),
	}
}

func (l *leaf[K, V]) numKeys() int  { return len(l.keys) }
func (l *leaf[K, V]) keyAt(i int) K { return l.keys[i] }

func (n *internal[K, V]) numKeys() int  { return len(n.keys) }
func (n *internal[K, V]) keyAt(i int) K { return n.keys[i] }

// lastKey returns the largest key stored in the leaf.
func (l *leaf[K, V]) lastKey() K {
	return l.keys[len(l.keys)-1]
}
