package propfake

import (
	"sync"
	"testing"

	"github.com/goforj/prop"
)

// Fake exposes a deterministic, counting property factory plus assertion
// helpers for tests. Plug its Factory into the cell under test; every
// compute is recorded.
type Fake[T any] struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (T, error)
}

// New creates a Fake whose factory always produces value.
func New[T any](value T) *Fake[T] {
	return Script(func(int) (T, error) { return value, nil })
}

// Counter creates a Fake whose factory yields 1, 2, 3, ... per compute.
// Distinct results make cached reads and recomputes easy to tell apart.
func Counter() *Fake[int] {
	return Script(func(call int) (int, error) { return call, nil })
}

// Failing creates a Fake whose factory always returns err.
func Failing[T any](err error) *Fake[T] {
	return Script(func(int) (T, error) {
		var zero T
		return zero, err
	})
}

// Script creates a Fake whose factory defers to fn. The call number
// starts at 1 and counts every compute, including failed ones.
func Script[T any](fn func(call int) (T, error)) *Fake[T] {
	return &Fake[T]{fn: fn}
}

// Factory returns the factory to hand to prop.NewMemoized or
// prop.NewScoped. It is safe for concurrent use.
func (f *Fake[T]) Factory() prop.Factory[T] {
	return func() (T, error) {
		f.mu.Lock()
		f.calls++
		call := f.calls
		f.mu.Unlock()
		return f.fn(call)
	}
}

// Calls reports how many times the factory has computed.
func (f *Fake[T]) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Reset clears the recorded call count.
func (f *Fake[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = 0
}

// AssertComputed verifies the factory ran the expected number of times.
func (f *Fake[T]) AssertComputed(t *testing.T, times int) {
	t.Helper()
	if got := f.Calls(); got != times {
		t.Fatalf("expected factory computed %d times, got %d", times, got)
	}
}

// AssertNotComputed ensures the factory never ran.
func (f *Fake[T]) AssertNotComputed(t *testing.T) {
	t.Helper()
	if got := f.Calls(); got != 0 {
		t.Fatalf("expected factory not computed, got %d calls", got)
	}
}
