package prop

import "time"

// cellConfig holds the optional settings shared by Memoized and Scoped.
type cellConfig struct {
	name     string
	observer Observer
}

// Option mutates cellConfig when constructing a property cell.
type Option func(cellConfig) cellConfig

// WithName labels the cell in observer events. Cells are anonymous by
// default.
func WithName(name string) Option {
	return func(cfg cellConfig) cellConfig {
		cfg.name = name
		return cfg
	}
}

// WithObserver attaches an observer that receives an event per operation.
func WithObserver(o Observer) Option {
	return func(cfg cellConfig) cellConfig {
		cfg.observer = o
		return cfg
	}
}

func applyOptions(opts []Option) cellConfig {
	var cfg cellConfig
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return cfg
}

// emit reports one completed operation to the configured observer.
func (c cellConfig) emit(op Op, err error, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.OnPropOp(op, c.name, err, time.Since(start))
}
