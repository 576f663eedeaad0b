package bptreemap

import "github.com/cockroachdb/errors"

var (
	// ErrDuplicateKey is returned by Put when the key is already present.
	// The map is left unchanged.
	ErrDuplicateKey = errors.New("bptreemap: duplicate key")

	// ErrEmptyMap is returned by FirstKey and LastKey on a map with no keys.
	ErrEmptyMap = errors.New("bptreemap: empty map")
)

// IsInvariantViolation reports whether err signals a broken structural
// invariant. Such errors indicate a bug in this package, never bad input.
func IsInvariantViolation(err error) bool {
	return errors.IsAssertionFailure(err)
}
