// Package proptest provides a reusable contract suite for lazy property
// cells.
//
// Wrapper types that embed or decorate a cell can verify they preserve
// lazy-compute semantics without rewriting the checks:
//
//	func TestTracedCellContract(t *testing.T) {
//		proptest.Reset(t)
//		proptest.RunPropertyContract(t, func(factory func() (int, error)) proptest.Property[int] {
//			return newTracedCell(prop.NewMemoized(factory))
//		}, proptest.Options{})
//	}
//
// Reset is also useful on its own: call it at the top of any test whose
// assertions would be disturbed by property state cached in earlier
// cases.
package proptest
