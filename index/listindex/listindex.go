// Package listindex is the naive baseline: a sorted slice searched with
// binary search. Inserts shift the tail of the slice, so it only scales to
// small inputs, but its behaviour is easy to trust and the tests use it as
// an oracle.
package listindex

import (
	"cmp"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/bptreemap/index"
)

var _ index.Index = (*ListIndex)(nil)

type Data struct {
	Key int64
	Val []byte
}

type ListIndex struct {
	Data []Data
}

func NewListIndex() *ListIndex {
	return &ListIndex{
		Data: make([]Data, 0),
	}
}

func (l *ListIndex) search(key int64) (int, bool) {
	return slices.BinarySearchFunc(l.Data, key, func(d Data, k int64) int {
		return cmp.Compare(d.Key, k)
	})
}

func (l *ListIndex) Insert(key int64, value []byte) error {
	i, found := l.search(key)
	if found {
		return errors.Wrapf(index.ErrDuplicateKey, "listindex: insert %d", key)
	}
	l.Data = slices.Insert(l.Data, i, Data{Key: key, Val: value})
	return nil
}

func (l *ListIndex) Get(key int64) ([]byte, bool, error) {
	i, found := l.search(key)
	if !found {
		return nil, false, nil
	}
	return l.Data[i].Val, true, nil
}

func (l *ListIndex) Range(start, end int64) (index.Iterator, error) {
	i, _ := l.search(start)
	return &ListIterator{
		data: l.Data,
		cur:  i - 1,
		end:  end,
	}, nil
}

func (l *ListIndex) Len() int     { return len(l.Data) }
func (l *ListIndex) Close() error { return nil }

type ListIterator struct {
	data []Data
	cur  int
	end  int64
}

func (it *ListIterator) Next() bool {
	it.cur++
	return it.cur < len(it.data) && it.data[it.cur].Key < it.end
}

func (it *ListIterator) Key() int64    { return it.data[it.cur].Key }
func (it *ListIterator) Value() []byte { return it.data[it.cur].Val }
func (it *ListIterator) Error() error  { return nil }
func (it *ListIterator) Close() error  { return nil }
