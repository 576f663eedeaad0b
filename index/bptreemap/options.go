package bptreemap

import "log/slog"

// DefaultOrder is the fanout used when no WithOrder option is given.
const DefaultOrder = 5

// MinOrder is the smallest fanout that still leaves both halves of a split
// non-empty.
const MinOrder = 3

type options struct {
	order  int
	logger *slog.Logger
}

// Option configures a Map at construction time.
type Option func(*options)

// WithOrder sets the maximum number of children of an internal node. Nodes
// hold at most order-1 keys.
func WithOrder(order int) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithLogger sets the logger used for structural debug events such as root
// splits. If nil is passed, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{
		order:  DefaultOrder,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// snapshotOptions reproduces the options of m for a derived map.
func (m *Map[K, V]) snapshotOptions() []Option {
	return []Option{WithOrder(m.order), WithLogger(m.logger)}
}
