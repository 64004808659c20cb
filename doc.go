// Package prop provides lazily computed struct properties: a memoized
// value with process-wide invalidation, and a goroutine-scoped value for
// state that must not cross goroutines or survive into a forked process.
//
// A property cell wraps a factory and defers it until first use. Declare
// the cell next to the data it derives from and point the factory at the
// host:
//
//	type report struct {
//		rows  []row
//		total *prop.Memoized[int]
//	}
//
//	func newReport(rows []row) *report {
//		r := &report{rows: rows}
//		r.total = prop.NewMemoized(func() (int, error) {
//			n := 0
//			for _, rw := range r.rows {
//				n += rw.amount
//			}
//			return n, nil
//		})
//		return r
//	}
//
// [Memoized] computes once and serves the cached value to every caller.
// [Scoped] computes once per goroutine and retires values written by
// another process, so a forked child never reuses its parent's state.
//
// Factory errors are returned from Get and never cached; a failed compute
// runs again on the next access.
//
// Every live cell is tracked through a weak reference. [ResetMemoized]
// and [ResetScoped] clear all of them at once, which keeps cached state
// from leaking between test cases. The registry never keeps a cell alive:
// cells become garbage as usual when their host does.
//
// Cells take options at construction: [WithName] labels a cell and
// [WithObserver] streams per-operation events to user code.
package prop
