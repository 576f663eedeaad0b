// Package lsm wraps Pebble (CockroachDB's LSM storage engine) behind the
// common Index interface so it can be benchmarked alongside the B+ tree.
// OpenInMemory backs Pebble with its in-memory filesystem, which keeps the
// comparison with the memory-resident trees fair.
package lsm

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/btree-query-bench/bptreemap/index"
)

var _ index.Index = (*LSM)(nil)

type LSM struct {
	db    *pebble.DB
	count int
}

func options() *pebble.Options {
	return &pebble.Options{
		MemTableSize: 16 << 20,
		// Keep extra memtables so one can be flushed while another is active.
		MemTableStopWritesThreshold: 4,
		// L0 compaction trigger.
		L0CompactionThreshold: 4,
		L0StopWritesThreshold: 12,
	}
}

// Open opens (or creates) a Pebble database at the given directory path.
func Open(dir string) (*LSM, error) {
	db, err := pebble.Open(dir, options())
	if err != nil {
		return nil, errors.Wrap(err, "lsm: open")
	}
	l := &LSM{db: db}
	if l.count, err = l.countKeys(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// OpenInMemory opens an empty Pebble database on an in-memory filesystem.
func OpenInMemory() (*LSM, error) {
	opts := options()
	opts.FS = vfs.NewMem()
	db, err := pebble.Open("", opts)
	if err != nil {
		return nil, errors.Wrap(err, "lsm: open in memory")
	}
	return &LSM{db: db}, nil
}

// Close cleanly shuts down Pebble, flushing any in-memory state.
func (l *LSM) Close() error {
	return l.db.Close()
}

// Insert stores the value for key unless the key already exists.
func (l *LSM) Insert(key int64, value []byte) error {
	k := encodeKey(key)
	_, closer, err := l.db.Get(k)
	switch {
	case err == nil:
		_ = closer.Close()
		return errors.Wrapf(index.ErrDuplicateKey, "lsm: insert %d", key)
	case !errors.Is(err, pebble.ErrNotFound):
		return errors.Wrap(err, "lsm: insert")
	}
	if err := l.db.Set(k, value, pebble.NoSync); err != nil {
		return errors.Wrap(err, "lsm: insert")
	}
	l.count++
	return nil
}

// Get retrieves the value for key.
func (l *LSM) Get(key int64) ([]byte, bool, error) {
	val, closer, err := l.db.Get(encodeKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "lsm: get")
	}
	// val is only valid until closer.Close(), so we copy it.
	result := make([]byte, len(val))
	copy(result, val)
	_ = closer.Close()
	return result, true, nil
}

// Range returns an iterator over all keys in [start, end).
func (l *LSM) Range(start, end int64) (index.Iterator, error) {
	if end < start {
		// Pebble rejects inverted bounds; an empty span yields nothing.
		end = start
	}
	iter, err := l.db.NewIter(&pebble.IterOptions{
		LowerBound: encodeKey(start),
		UpperBound: encodeKey(end),
	})
	if err != nil {
		return nil, errors.Wrap(err, "lsm: range")
	}
	iter.First()
	return &rangeIterator{iter: iter, first: true}, nil
}

// Len returns the number of keys inserted through this handle plus the keys
// found when the database was opened.
func (l *LSM) Len() int { return l.count }

func (l *LSM) countKeys() (int, error) {
	iter, err := l.db.NewIter(nil)
	if err != nil {
		return 0, errors.Wrap(err, "lsm: count")
	}
	n := 0
	for valid := iter.First(); valid; valid = iter.Next() {
		n++
	}
	if err := iter.Close(); err != nil {
		return 0, errors.Wrap(err, "lsm: count")
	}
	return n, nil
}

// ─── Key encoding ─────────────────────────────────────────────────────────────

// encodeKey encodes an int64 as a big-endian 8-byte slice with the sign bit
// flipped, so byte order matches signed integer order.
func encodeKey(k int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k)^(1<<63))
	return b
}

func decodeKey(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

// ─── Range Iterator ───────────────────────────────────────────────────────────

type rangeIterator struct {
	iter  *pebble.Iterator
	first bool
	key   int64
	val   []byte
	err   error
}

func (it *rangeIterator) Next() bool {
	var valid bool
	if it.first {
		// iter.First() was already called in Range(); just check validity.
		it.first = false
		valid = it.iter.Valid()
	} else {
		valid = it.iter.Next()
	}
	if !valid {
		it.err = it.iter.Error()
		return false
	}
	k := it.iter.Key()
	if len(k) != 8 {
		it.err = errors.Newf("lsm: unexpected key length %d", len(k))
		return false
	}
	it.key = decodeKey(k)
	// Pebble reuses the value buffer on Next.
	v := it.iter.Value()
	it.val = make([]byte, len(v))
	copy(it.val, v)
	return true
}

func (it *rangeIterator) Key() int64    { return it.key }
func (it *rangeIterator) Value() []byte { return it.val }
func (it *rangeIterator) Error() error  { return it.err }
func (it *rangeIterator) Close() error  { return it.iter.Close() }
