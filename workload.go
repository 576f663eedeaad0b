package main

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/bptreemap/index"
)

type WorkloadType string

const (
	OLTP      WorkloadType = "OLTP (90/10)"
	OLAP      WorkloadType = "OLAP (10/90)"
	Reporting WorkloadType = "Reporting (Range)"
)

// reportWidth is the key span of one Reporting scan.
const reportWidth = 100

// WorkloadStats counts what a workload run did.
type WorkloadStats struct {
	Gets       int
	Hits       int
	Inserts    int
	Duplicates int
	Scans      int
	Rows       int
}

// ExecuteWorkload runs ops operations of the given mix against idx. Keys are
// drawn uniformly from [0, keySpace). Inserting an existing key is counted as
// a duplicate, not an error.
func ExecuteWorkload(idx index.Index, wType WorkloadType, ops int, keySpace int64, rng *rand.Rand) (WorkloadStats, error) {
	var st WorkloadStats
	for range ops {
		choice := rng.IntN(100)
		key := rng.Int64N(keySpace)

		var err error
		switch wType {
		case OLTP:
			if choice < 90 {
				err = st.get(idx, key)
			} else {
				err = st.insert(idx, key)
			}
		case OLAP:
			if choice < 10 {
				err = st.get(idx, key)
			} else {
				err = st.insert(idx, key)
			}
		case Reporting:
			err = st.scan(idx, key, key+reportWidth)
		default:
			return st, errors.Newf("unknown workload %q", wType)
		}
		if err != nil {
			return st, errors.Wrapf(err, "%s", wType)
		}
	}
	return st, nil
}

func (st *WorkloadStats) get(idx index.Index, key int64) error {
	_, ok, err := idx.Get(key)
	if err != nil {
		return err
	}
	st.Gets++
	if ok {
		st.Hits++
	}
	return nil
}

func (st *WorkloadStats) insert(idx index.Index, key int64) error {
	err := idx.Insert(key, []byte("x"))
	switch {
	case errors.Is(err, index.ErrDuplicateKey):
		st.Duplicates++
		return nil
	case err != nil:
		return err
	}
	st.Inserts++
	return nil
}

func (st *WorkloadStats) scan(idx index.Index, start, end int64) error {
	it, err := idx.Range(start, end)
	if err != nil {
		return err
	}
	for it.Next() {
		st.Rows++
	}
	st.Scans++
	if err := it.Error(); err != nil {
		_ = it.Close()
		return err
	}
	return it.Close()
}
