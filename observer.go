package prop

import "time"

// Op identifies a property operation reported to observers.
type Op string

const (
	// OpHit is emitted when Get returns an already computed value.
	OpHit Op = "hit"
	// OpCompute is emitted when Get invokes the factory for an empty cell.
	OpCompute Op = "compute"
	// OpStale is emitted when Get recomputes a value that was produced by
	// another process, after a fork.
	OpStale Op = "stale_recompute"
	// OpForget is emitted when a single cell is cleared explicitly.
	OpForget Op = "forget"
	// OpReset is emitted for each live cell cleared by a global reset.
	OpReset Op = "reset"
)

// Observer receives events for property operations.
// It is called after each operation completes and must be safe for
// concurrent use.
type Observer interface {
	OnPropOp(op Op, name string, err error, dur time.Duration)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(op Op, name string, err error, dur time.Duration)

// OnPropOp implements Observer.
func (f ObserverFunc) OnPropOp(op Op, name string, err error, dur time.Duration) {
	if f == nil {
		return
	}
	f(op, name, err, dur)
}
