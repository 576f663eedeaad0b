package bplustree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btree-query-bench/bptreemap/index"
	"github.com/btree-query-bench/bptreemap/index/indextest"
)

func TestBPlusTree(t *testing.T) {
	for _, order := range []int{3, 5, 16, 64} {
		t.Run(fmt.Sprintf("order=%d", order), func(t *testing.T) {
			indextest.Run(t, func(t *testing.T) index.Index {
				bt := NewBPlusTree(order)
				t.Cleanup(func() { assert.NoError(t, bt.Map().Check()) })
				return bt
			})
		})
	}
}

func TestMapExposesDiagnostics(t *testing.T) {
	bt := NewBPlusTree(4)
	for k := int64(0); k < 50; k++ {
		require.NoError(t, bt.Insert(k, nil))
	}
	m := bt.Map()
	assert.Equal(t, 4, m.Order())
	assert.Greater(t, m.Height(), 1)

	m.ResetAccesses()
	_, ok, err := bt.Get(25)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, m.Height(), m.Accesses())
}
