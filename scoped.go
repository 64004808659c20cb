package prop

import (
	"os"
	"sync"
	"time"

	"github.com/timandy/routine"
)

// scopedSlot tags a computed value with the process that produced it.
type scopedSlot[T any] struct {
	pid   int
	value T
}

// Scoped is a lazily computed property whose value is private to the
// goroutine and process that computed it. Each goroutine receives its own
// value from its first Get. Values are tagged with the process id: a slot
// written by another process, as seen by a forked child, counts as empty
// and is recomputed.
//
// Create cells with NewScoped; creation registers the cell for
// ResetScoped. All methods are safe for concurrent use and operate on the
// calling goroutine's slot.
type Scoped[T any] struct {
	cfg     cellConfig
	factory Factory[T]

	mu    sync.RWMutex
	slots map[int64]scopedSlot[T]
}

// NewScoped wraps factory as a goroutine-scoped property. The factory is
// not invoked until a goroutine first calls Get, and runs once per
// goroutine.
// @group Scoped
//
// Example: one scratch buffer per worker goroutine
//
//	buf := prop.NewScoped(func() (*bytes.Buffer, error) {
//		return new(bytes.Buffer), nil
//	})
//	var wg sync.WaitGroup
//	for i := 0; i < 4; i++ {
//		wg.Add(1)
//		go func() {
//			defer wg.Done()
//			b, _ := buf.Get() // this goroutine's own buffer
//			b.WriteString("x")
//		}()
//	}
//	wg.Wait()
func NewScoped[T any](factory Factory[T], opts ...Option) *Scoped[T] {
	s := &Scoped[T]{
		cfg:     applyOptions(opts),
		factory: factory,
		slots:   make(map[int64]scopedSlot[T]),
	}
	register(scopedRegistry, s)
	return s
}

// Get returns the calling goroutine's value, computing it when the slot
// is empty or was written by another process. A factory error is returned
// without filling the slot, so a later Get retries. A value computed
// while ResetScoped runs may survive the reset.
// @group Scoped
//
// Example: the same goroutine sees a stable value
//
//	calls := 0
//	cell := prop.NewScoped(func() (int, error) {
//		calls++
//		return calls, nil
//	})
//	a, _ := cell.Get()
//	b, _ := cell.Get()
//	fmt.Println(a, b) // 1 1
func (s *Scoped[T]) Get() (T, error) {
	start := time.Now()
	goid := routine.Goid()

	s.mu.RLock()
	slot, ok := s.slots[goid]
	s.mu.RUnlock()

	if ok && slot.pid == os.Getpid() {
		s.cfg.emit(OpHit, nil, start)
		return slot.value, nil
	}

	op := OpCompute
	if ok {
		op = OpStale
	}
	value, err := s.factory()
	if err != nil {
		s.cfg.emit(op, err, start)
		var zero T
		return zero, err
	}

	s.mu.Lock()
	s.slots[goid] = scopedSlot[T]{pid: os.Getpid(), value: value}
	s.mu.Unlock()

	s.cfg.emit(op, nil, start)
	return value, nil
}

// Peek reports the calling goroutine's value without computing anything.
// The second return is false while the slot is empty or holds a value
// written by another process.
// @group Scoped
//
// Example: inspect without triggering the factory
//
//	cell := prop.NewScoped(func() (string, error) { return "ready", nil })
//	_, ok := cell.Peek()
//	fmt.Println(ok) // false
//	cell.Get()
//	v, ok := cell.Peek()
//	fmt.Println(v, ok) // ready true
func (s *Scoped[T]) Peek() (T, bool) {
	s.mu.RLock()
	slot, ok := s.slots[routine.Goid()]
	s.mu.RUnlock()
	if !ok || slot.pid != os.Getpid() {
		var zero T
		return zero, false
	}
	return slot.value, true
}

// Forget clears the calling goroutine's slot only. Other goroutines keep
// their values; the next Get on this goroutine recomputes.
// @group Scoped
//
// Example: drop one goroutine's value
//
//	calls := 0
//	cell := prop.NewScoped(func() (int, error) {
//		calls++
//		return calls, nil
//	})
//	cell.Get()
//	cell.Forget()
//	v, _ := cell.Get()
//	fmt.Println(v) // 2
func (s *Scoped[T]) Forget() {
	start := time.Now()
	s.mu.Lock()
	delete(s.slots, routine.Goid())
	s.mu.Unlock()
	s.cfg.emit(OpForget, nil, start)
}

// resetState implements resettable for ResetScoped. The whole slot table
// is replaced, so every goroutine recomputes on its next access.
func (s *Scoped[T]) resetState() {
	start := time.Now()
	s.mu.Lock()
	s.slots = make(map[int64]scopedSlot[T])
	s.mu.Unlock()
	s.cfg.emit(OpReset, nil, start)
}
