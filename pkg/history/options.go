package history

import "log/slog"

// DefaultCapacity is the number of values a Store keeps when no capacity
// is configured.
const DefaultCapacity = 10

// Option is a functional option for configuring a Store.
type Option func(*options)

// options holds Store configuration.
type options struct {
	capacity  int
	logger    *slog.Logger
	observers []Observer
}

// WithCapacity sets the maximum number of values kept in the timeline.
// A capacity below one makes New fail with ErrInvalidCapacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger used for debug output.
// If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver registers observers notified after every operation.
func WithObserver(obs ...Observer) Option {
	return func(o *options) {
		for _, ob := range obs {
			if ob != nil {
				o.observers = append(o.observers, ob)
			}
		}
	}
}

// applyOptions applies the given options over the defaults.
func applyOptions(opts []Option) options {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
