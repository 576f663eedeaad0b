// Package gbtree wraps github.com/google/btree behind the common Index
// interface. It is the reference in-memory B-Tree: values live in every
// node and there is no leaf chain, so range scans walk the tree.
package gbtree

import (
	"github.com/cockroachdb/errors"
	"github.com/google/btree"

	"github.com/btree-query-bench/bptreemap/index"
)

var _ index.Index = (*BTree)(nil)

type item struct {
	key   int64
	value []byte
}

func less(a, b item) bool { return a.key < b.key }

type BTree struct {
	t *btree.BTreeG[item]
}

// NewBTree returns an empty tree of the given degree; every node other than
// the root holds between degree-1 and 2*degree-1 items.
func NewBTree(degree int) *BTree {
	if degree < 2 {
		degree = 2
	}
	return &BTree{t: btree.NewG(degree, less)}
}

func (bt *BTree) Insert(key int64, value []byte) error {
	if bt.t.Has(item{key: key}) {
		return errors.Wrapf(index.ErrDuplicateKey, "gbtree: insert %d", key)
	}
	bt.t.ReplaceOrInsert(item{key: key, value: value})
	return nil
}

func (bt *BTree) Get(key int64) ([]byte, bool, error) {
	it, ok := bt.t.Get(item{key: key})
	if !ok {
		return nil, false, nil
	}
	return it.value, true, nil
}

// Range collects the matching items up front; the tree offers callbacks, not
// cursors.
func (bt *BTree) Range(start, end int64) (index.Iterator, error) {
	it := &BTreeIterator{idx: -1}
	if start >= end {
		return it, nil
	}
	bt.t.AscendRange(item{key: start}, item{key: end}, func(i item) bool {
		it.data = append(it.data, i)
		return true
	})
	return it, nil
}

func (bt *BTree) Len() int     { return bt.t.Len() }
func (bt *BTree) Close() error { return nil }

type BTreeIterator struct {
	data []item
	idx  int
}

func (it *BTreeIterator) Next() bool    { it.idx++; return it.idx < len(it.data) }
func (it *BTreeIterator) Key() int64    { return it.data[it.idx].key }
func (it *BTreeIterator) Value() []byte { return it.data[it.idx].value }
func (it *BTreeIterator) Error() error  { return nil }
func (it *BTreeIterator) Close() error  { return nil }
