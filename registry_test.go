package prop

import (
	"errors"
	"runtime"
	"testing"
	"time"
	"weak"
)

func TestResetMemoizedClearsEveryLiveCell(t *testing.T) {
	counter := 0
	numbers := NewMemoized(func() (int, error) {
		counter++
		return counter, nil
	})
	labels := NewMemoized(func() (string, error) { return "ready", nil })

	if v, _ := numbers.Get(); v != 1 {
		t.Fatalf("unexpected first value %d", v)
	}
	if _, err := labels.Get(); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	ResetMemoized()

	if _, ok := numbers.Peek(); ok {
		t.Fatalf("expected int cell cleared by reset")
	}
	if _, ok := labels.Peek(); ok {
		t.Fatalf("expected string cell cleared by reset")
	}
	if v, _ := numbers.Get(); v != 2 {
		t.Fatalf("expected recompute after reset, got %d", v)
	}
}

func TestResetScopedClearsEveryLiveCell(t *testing.T) {
	counter := 0
	numbers := NewScoped(func() (int, error) {
		counter++
		return counter, nil
	})
	labels := NewScoped(func() (string, error) { return "ready", nil })

	numbers.Get()
	labels.Get()

	ResetScoped()

	if _, ok := numbers.Peek(); ok {
		t.Fatalf("expected int cell cleared by reset")
	}
	if _, ok := labels.Peek(); ok {
		t.Fatalf("expected string cell cleared by reset")
	}
	if v, _ := numbers.Get(); v != 2 {
		t.Fatalf("expected recompute after reset, got %d", v)
	}
}

func TestResetsAreIndependentPerKind(t *testing.T) {
	mCalls, sCalls := 0, 0
	m := NewMemoized(func() (int, error) {
		mCalls++
		return mCalls, nil
	})
	s := NewScoped(func() (int, error) {
		sCalls++
		return sCalls, nil
	})
	m.Get()
	s.Get()

	ResetScoped()
	if v, _ := m.Get(); v != 1 {
		t.Fatalf("expected memoized cell untouched by scoped reset, got %d", v)
	}
	if v, _ := s.Get(); v != 2 {
		t.Fatalf("expected scoped cell cleared, got %d", v)
	}

	ResetMemoized()
	if v, _ := m.Get(); v != 2 {
		t.Fatalf("expected memoized cell cleared, got %d", v)
	}
	if v, _ := s.Get(); v != 2 {
		t.Fatalf("expected scoped cell untouched by memoized reset, got %d", v)
	}
}

func TestCellWithOnlyFailedComputesIsStillRegistered(t *testing.T) {
	boom := errors.New("boom")
	obs := &spyObserver{}
	cell := NewMemoized(func() (int, error) { return 0, boom }, WithObserver(obs))

	if _, err := cell.Get(); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	ResetMemoized()

	if n := obs.count(OpReset); n != 1 {
		t.Fatalf("expected the failed cell to receive the reset, got %d reset events", n)
	}
}

func TestScopedCellIsRegisteredBeforeFirstGet(t *testing.T) {
	obs := &spyObserver{}
	cell := NewScoped(func() (int, error) { return 1, nil }, WithObserver(obs))

	ResetScoped()

	if n := obs.count(OpReset); n != 1 {
		t.Fatalf("expected a reset event before any get, got %d", n)
	}
	runtime.KeepAlive(cell)
}

func TestRegistryPrunesEntriesWhoseCellIsGone(t *testing.T) {
	r := newRegistry()
	var wp weak.Pointer[Memoized[int]]
	func() {
		cell := &Memoized[int]{factory: func() (int, error) { return 1, nil }}
		register(r, cell)
		wp = weak.Make(cell)
	}()

	if n := r.size(); n != 1 {
		t.Fatalf("expected one registered entry, got %d", n)
	}

	deadline := time.Now().Add(5 * time.Second)
	for wp.Value() != nil && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	if wp.Value() != nil {
		t.Fatalf("expected unreachable cell to be collected")
	}

	r.resetAll()
	if n := r.size(); n != 0 {
		t.Fatalf("expected empty registry after prune, got %d entries", n)
	}
}

func TestMemoizedRegistrationDoesNotKeepCellAlive(t *testing.T) {
	var wp weak.Pointer[Memoized[int]]
	func() {
		cell := NewMemoized(func() (int, error) { return 1, nil })
		if _, err := cell.Get(); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		wp = weak.Make(cell)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for wp.Value() != nil && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	if wp.Value() != nil {
		t.Fatalf("expected registered cell to be collected once unreachable")
	}
	ResetMemoized() // sweeping dead entries must not panic
}

func TestScopedRegistrationDoesNotKeepCellAlive(t *testing.T) {
	var wp weak.Pointer[Scoped[int]]
	func() {
		cell := NewScoped(func() (int, error) { return 1, nil })
		if _, err := cell.Get(); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		wp = weak.Make(cell)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for wp.Value() != nil && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	if wp.Value() != nil {
		t.Fatalf("expected registered cell to be collected once unreachable")
	}
	ResetScoped() // sweeping dead entries must not panic
}
