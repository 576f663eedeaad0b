// Package index defines the contract shared by every ordered index the
// benchmark harness compares.
package index

import "github.com/cockroachdb/errors"

// ErrDuplicateKey is returned by Insert when the key is already stored.
// Implementations never overwrite an existing value.
var ErrDuplicateKey = errors.New("index: duplicate key")

// Index is the common interface for all implementations.
type Index interface {
	// Insert stores value under key, or fails with ErrDuplicateKey.
	Insert(key int64, value []byte) error
	// Get returns the value for key and whether it was found. A missing key
	// is not an error.
	Get(key int64) ([]byte, bool, error)
	// Range iterates the keys k with start <= k < end in ascending order.
	Range(start, end int64) (Iterator, error)
	// Len returns the number of stored keys.
	Len() int
	Close() error
}

// Iterator allows scanning over a range of key-value pairs.
type Iterator interface {
	Next() bool
	Key() int64
	Value() []byte
	Error() error
	Close() error
}
