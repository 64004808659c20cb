package prop

import (
	"sync"
	"time"
)

// Factory produces a property value. Implementations typically close over
// the host struct the property derives from. Errors are reported through
// Get and never cached, so a failed factory runs again on the next access.
//
// A factory must not touch its own cell or call the global resets; a
// memoized cell holds its lock while computing.
type Factory[T any] func() (T, error)

// Memoized is a lazily computed, cached property. The first Get invokes
// the factory and caches the result; later Gets return the cached value
// until the cell is cleared by Forget or ResetMemoized.
//
// Create cells with NewMemoized. A Memoized must not be copied after
// first use. All methods are safe for concurrent use.
type Memoized[T any] struct {
	cfg        cellConfig
	mu         sync.Mutex
	factory    Factory[T]
	value      T
	done       bool
	registered bool
}

// NewMemoized wraps factory as a lazily computed, cached property. The
// factory is not invoked until the first Get.
// @group Memoized
//
// Example: a derived field computed on demand
//
//	type catalog struct {
//		items []string
//		index *prop.Memoized[map[string]int]
//	}
//	c := &catalog{items: []string{"ore", "ingot"}}
//	c.index = prop.NewMemoized(func() (map[string]int, error) {
//		idx := make(map[string]int, len(c.items))
//		for i, item := range c.items {
//			idx[item] = i
//		}
//		return idx, nil
//	})
//	idx, _ := c.index.Get()
//	fmt.Println(idx["ingot"]) // 1
func NewMemoized[T any](factory Factory[T], opts ...Option) *Memoized[T] {
	return &Memoized[T]{cfg: applyOptions(opts), factory: factory}
}

// Get returns the property value, computing and caching it on first
// access. A factory error is returned without being cached, so a later
// Get retries. Concurrent first access runs the factory once.
// @group Memoized
//
// Example: compute once, then serve from the cell
//
//	calls := 0
//	cell := prop.NewMemoized(func() (int, error) {
//		calls++
//		return calls * 10, nil
//	})
//	v, _ := cell.Get()
//	fmt.Println(v) // 10
//	v, _ = cell.Get()
//	fmt.Println(v) // 10
func (m *Memoized[T]) Get() (T, error) {
	start := time.Now()
	op, value, err := m.get()
	m.cfg.emit(op, err, start)
	return value, err
}

// get is the locked portion of Get. It reports which operation happened
// so Get can emit after releasing the lock.
func (m *Memoized[T]) get() (Op, T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Register on first access, before the factory runs: a cell whose
	// factory has only ever failed still answers to ResetMemoized.
	if !m.registered {
		m.registered = true
		register(memoizedRegistry, m)
	}

	if m.done {
		return OpHit, m.value, nil
	}
	value, err := m.factory()
	if err != nil {
		var zero T
		return OpCompute, zero, err
	}
	m.value = value
	m.done = true
	return OpCompute, value, nil
}

// Peek reports the cached value without computing anything. The second
// return is false while the cell is empty.
// @group Memoized
//
// Example: inspect without triggering the factory
//
//	cell := prop.NewMemoized(func() (string, error) { return "ready", nil })
//	_, ok := cell.Peek()
//	fmt.Println(ok) // false
//	cell.Get()
//	v, ok := cell.Peek()
//	fmt.Println(v, ok) // ready true
func (m *Memoized[T]) Peek() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.done {
		var zero T
		return zero, false
	}
	return m.value, true
}

// Forget clears this cell only. The next Get runs the factory again.
// @group Memoized
//
// Example: drop one cached value
//
//	calls := 0
//	cell := prop.NewMemoized(func() (int, error) {
//		calls++
//		return calls, nil
//	})
//	cell.Get()
//	cell.Forget()
//	v, _ := cell.Get()
//	fmt.Println(v) // 2
func (m *Memoized[T]) Forget() {
	start := time.Now()
	m.mu.Lock()
	m.clear()
	m.mu.Unlock()
	m.cfg.emit(OpForget, nil, start)
}

// clear empties the cell. Callers hold m.mu.
func (m *Memoized[T]) clear() {
	var zero T
	m.value = zero
	m.done = false
}

// resetState implements resettable for ResetMemoized.
func (m *Memoized[T]) resetState() {
	start := time.Now()
	m.mu.Lock()
	m.clear()
	m.mu.Unlock()
	m.cfg.emit(OpReset, nil, start)
}
