package prop

import (
	"runtime"
	"sync"
	"weak"
)

// resettable is the registry's view of a property cell.
type resettable interface {
	resetState()
}

// registry tracks live cells without keeping them alive. Each entry
// resolves its cell through a weak pointer; entries for collected cells
// are removed by a GC cleanup and pruned opportunistically during reset.
type registry struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]func() resettable
}

var (
	memoizedRegistry = newRegistry()
	scopedRegistry   = newRegistry()
)

func newRegistry() *registry {
	return &registry{entries: make(map[uint64]func() resettable)}
}

// register adds cell to r for the lifetime of the object. The entry
// holds only a weak pointer, so registration never delays collection;
// when the cell is collected its entry is deleted by the runtime.
func register[T any, P interface {
	*T
	resettable
}](r *registry, cell P) {
	wp := weak.Make((*T)(cell))
	id := r.add(func() resettable {
		if p := wp.Value(); p != nil {
			return P(p)
		}
		return nil
	})
	runtime.AddCleanup((*T)(cell), r.remove, id)
}

func (r *registry) add(lookup func() resettable) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.entries[r.nextID] = lookup
	return r.nextID
}

func (r *registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// resetAll clears every live cell. Entries are snapshotted first and the
// cells reset without the registry lock held: Get paths lock their cell
// and then register, so resetting under the registry lock could invert
// that order.
func (r *registry) resetAll() {
	r.mu.Lock()
	ids := make([]uint64, 0, len(r.entries))
	lookups := make([]func() resettable, 0, len(r.entries))
	for id, lookup := range r.entries {
		ids = append(ids, id)
		lookups = append(lookups, lookup)
	}
	r.mu.Unlock()

	var dead []uint64
	for i, lookup := range lookups {
		cell := lookup()
		if cell == nil {
			dead = append(dead, ids[i])
			continue
		}
		cell.resetState()
	}
	if len(dead) == 0 {
		return
	}
	r.mu.Lock()
	for _, id := range dead {
		delete(r.entries, id)
	}
	r.mu.Unlock()
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ResetMemoized clears every live Memoized cell in the process, across
// all value types. The next Get on each cell recomputes.
// @group Reset
//
// Example: invalidate memoized state between test cases
//
//	calls := 0
//	cell := prop.NewMemoized(func() (int, error) {
//		calls++
//		return calls, nil
//	})
//	v, _ := cell.Get()
//	fmt.Println(v) // 1
//	prop.ResetMemoized()
//	v, _ = cell.Get()
//	fmt.Println(v) // 2
func ResetMemoized() {
	memoizedRegistry.resetAll()
}

// ResetScoped clears every live Scoped cell in the process, across all
// value types and all goroutines. Goroutines that held a value recompute
// on their next Get.
// @group Reset
//
// Example: drop per-goroutine state after a worker pool drains
//
//	conn := prop.NewScoped(openConn)
//	// ... workers call conn.Get() ...
//	prop.ResetScoped()
func ResetScoped() {
	scopedRegistry.resetAll()
}
