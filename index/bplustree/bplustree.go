// Package bplustree exposes bptreemap through the benchmark index contract.
package bplustree

import (
	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/bptreemap/index"
	"github.com/btree-query-bench/bptreemap/index/bptreemap"
)

var _ index.Index = (*BPlusTree)(nil)

// BPlusTree stores int64 keys and byte-slice values in a bptreemap.Map.
type BPlusTree struct {
	m *bptreemap.Map[int64, []byte]
}

// NewBPlusTree returns an empty tree with the given order (max children per
// internal node).
func NewBPlusTree(order int, opts ...bptreemap.Option) *BPlusTree {
	opts = append([]bptreemap.Option{bptreemap.WithOrder(order)}, opts...)
	return &BPlusTree{m: bptreemap.New[int64, []byte](opts...)}
}

// Map returns the underlying tree for diagnostics such as Check, Height and
// the access counter.
func (bt *BPlusTree) Map() *bptreemap.Map[int64, []byte] { return bt.m }

// --- GET (Point Query) ---

func (bt *BPlusTree) Get(key int64) ([]byte, bool, error) {
	v, ok := bt.m.Get(key)
	return v, ok, nil
}

// --- INSERT ---

func (bt *BPlusTree) Insert(key int64, value []byte) error {
	err := bt.m.Put(key, value)
	if errors.Is(err, bptreemap.ErrDuplicateKey) {
		return errors.Wrapf(index.ErrDuplicateKey, "bplustree: insert %d", key)
	}
	return err
}

// --- RANGE (The Iterator) ---

func (bt *BPlusTree) Range(start, end int64) (index.Iterator, error) {
	return &BPlusIterator{it: bt.m.Iter(start, end)}, nil
}

func (bt *BPlusTree) Len() int     { return bt.m.Size() }
func (bt *BPlusTree) Close() error { return nil }

// BPlusIterator follows the leaf chain from the first key >= start.
type BPlusIterator struct {
	it *bptreemap.Iterator[int64, []byte]
}

func (it *BPlusIterator) Next() bool    { return it.it.Next() }
func (it *BPlusIterator) Key() int64    { return it.it.Key() }
func (it *BPlusIterator) Value() []byte { return it.it.Value() }
func (it *BPlusIterator) Error() error  { return nil }
func (it *BPlusIterator) Close() error  { return nil }
