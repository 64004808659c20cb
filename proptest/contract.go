package proptest

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/goforj/prop"
)

// Options configures the shared property contract checks.
type Options struct {
	// Goroutines is the fan-out used by the concurrency check. Defaults to 8.
	Goroutines int
	// SkipErrorRetry disables the "errors are not cached" assertion for
	// wrappers that memoize failures.
	SkipErrorRetry bool
}

// Property is the minimal surface required by RunPropertyContract.
// Both prop.Memoized and prop.Scoped satisfy it.
type Property[T any] interface {
	Get() (T, error)
}

// RunPropertyContract runs a kind-agnostic lazy property suite against
// cells built by mk. The suite builds a fresh cell per check, so mk is
// invoked several times; the factory it hands over counts computes.
func RunPropertyContract(t *testing.T, mk func(factory func() (int, error)) Property[int], opts Options) {
	t.Helper()

	goroutines := opts.Goroutines
	if goroutines <= 0 {
		goroutines = 8
	}

	// Construction is lazy.
	var calls atomic.Int64
	cell := mk(func() (int, error) {
		return int(calls.Add(1)), nil
	})
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected factory untouched before first get, saw %d calls", n)
	}

	// First get computes; later gets serve the same value.
	first, err := cell.Get()
	if err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first computed value 1, got %d", first)
	}
	second, err := cell.Get()
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected cached value %d, got %d", first, second)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single compute, got %d", n)
	}

	// Errors pass through and are not cached.
	if !opts.SkipErrorRetry {
		boom := errors.New("boom")
		var attempts atomic.Int64
		flaky := mk(func() (int, error) {
			if attempts.Add(1) == 1 {
				return 0, boom
			}
			return 42, nil
		})
		if _, err := flaky.Get(); !errors.Is(err, boom) {
			t.Fatalf("expected factory error, got %v", err)
		}
		v, err := flaky.Get()
		if err != nil || v != 42 {
			t.Fatalf("expected retry after failure: v=%d err=%v", v, err)
		}
	}

	// Concurrent gets each see a stable value.
	shared := mk(func() (int, error) {
		return int(calls.Add(1)), nil
	})
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			a, err := shared.Get()
			if err != nil {
				return err
			}
			b, err := shared.Get()
			if err != nil {
				return err
			}
			if a != b {
				return fmt.Errorf("value changed within one goroutine: %d then %d", a, b)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent get: %v", err)
	}
}

// Reset clears all memoized and scoped property state now and again when
// the test finishes, so cached values cannot leak across test cases.
func Reset(t *testing.T) {
	t.Helper()
	prop.ResetMemoized()
	prop.ResetScoped()
	t.Cleanup(func() {
		prop.ResetMemoized()
		prop.ResetScoped()
	})
}
