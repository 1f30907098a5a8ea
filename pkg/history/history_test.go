package history

import (
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"

	herrors "github.com/vango-dev/vango-history/internal/errors"
)

func mustNew[V any](t *testing.T, initial V, opts ...Option) *Store[V] {
	t.Helper()
	s, err := New(initial, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// checkInvariants verifies the structural invariants that must hold after
// every operation.
func checkInvariants[V any](t *testing.T, s *Store[V]) {
	t.Helper()
	if n := s.Len(); n < 1 || n > s.Capacity() {
		t.Fatalf("timeline length %d outside [1, %d]", n, s.Capacity())
	}
	if p := s.Pointer(); p < 0 || p >= s.Len() {
		t.Fatalf("pointer %d outside [0, %d)", p, s.Len())
	}
}

func assertState(t *testing.T, s *Store[int], timeline []int, pointer int) {
	t.Helper()
	if got := s.Timeline(); !slices.Equal(got, timeline) {
		t.Errorf("timeline = %v, want %v", got, timeline)
	}
	if s.Pointer() != pointer {
		t.Errorf("pointer = %d, want %d", s.Pointer(), pointer)
	}
	if s.Value() != timeline[pointer] {
		t.Errorf("value = %d, want %d", s.Value(), timeline[pointer])
	}
}

func TestNewDefaults(t *testing.T) {
	s := mustNew(t, "a")

	if s.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", s.Capacity(), DefaultCapacity)
	}
	if s.Value() != "a" || s.Pointer() != 0 || s.Len() != 1 {
		t.Errorf("unexpected initial state: value=%q pointer=%d len=%d", s.Value(), s.Pointer(), s.Len())
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("fresh store should not be able to undo or redo")
	}
}

func TestNewInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		s, err := New(1, WithCapacity(capacity))
		if s != nil {
			t.Errorf("capacity %d: expected nil store", capacity)
		}
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("capacity %d: error = %v, want ErrInvalidCapacity", capacity, err)
		}
		var he *herrors.Error
		if !errors.As(err, &he) || he.Code != "H001" {
			t.Errorf("capacity %d: expected H001 error, got %v", capacity, err)
		}
	}
}

func TestNewFunc(t *testing.T) {
	calls := 0
	s, err := NewFunc(func() (int, error) {
		calls++
		return 7, nil
	}, WithCapacity(3))
	if err != nil {
		t.Fatalf("NewFunc() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	assertState(t, s, []int{7}, 0)

	s.Set(8)
	s.Undo()
	if calls != 1 {
		t.Errorf("factory re-invoked after construction: %d calls", calls)
	}
}

func TestNewFuncFactoryError(t *testing.T) {
	boom := errors.New("boom")
	s, err := NewFunc(func() (string, error) { return "", boom })
	if s != nil {
		t.Error("expected nil store on factory failure")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}

func TestNewFuncInvalidCapacitySkipsFactory(t *testing.T) {
	called := false
	_, err := NewFunc(func() (int, error) {
		called = true
		return 0, nil
	}, WithCapacity(0))
	if !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("error = %v, want ErrInvalidCapacity", err)
	}
	if called {
		t.Error("factory should not run when capacity is invalid")
	}
}

func TestSetAppendsAndMovesPointer(t *testing.T) {
	s := mustNew(t, 0)

	if !s.Set(1) {
		t.Fatal("Set(1) = false, want true")
	}
	if !s.Set(2) {
		t.Fatal("Set(2) = false, want true")
	}
	assertState(t, s, []int{0, 1, 2}, 2)
	if !s.CanUndo() || s.CanRedo() {
		t.Error("expected CanUndo && !CanRedo after writes")
	}
}

func TestUpdateAppliesTransform(t *testing.T) {
	s := mustNew(t, 1)

	if !s.Update(func(n int) int { return n * 10 }) {
		t.Fatal("Update() = false, want true")
	}
	assertState(t, s, []int{1, 10}, 1)

	s.Undo()
	if !s.Update(func(n int) int { return n + 1 }) {
		t.Fatal("Update() after undo = false, want true")
	}
	assertState(t, s, []int{1, 2}, 1)
}

func TestEqualWriteIsNoop(t *testing.T) {
	s := mustNew(t, 0)
	s.Set(1)
	s.Set(2)
	s.Undo()

	before := s.Timeline()
	pointer := s.Pointer()

	if s.Set(s.Value()) {
		t.Error("Set(current) = true, want false")
	}
	if s.Update(func(n int) int { return n }) {
		t.Error("Update(identity) = true, want false")
	}
	if !slices.Equal(s.Timeline(), before) || s.Pointer() != pointer {
		t.Errorf("no-op write changed state: %v@%d -> %v@%d", before, pointer, s.Timeline(), s.Pointer())
	}
	// The redo branch survives a no-op write.
	if !s.CanRedo() {
		t.Error("no-op write discarded the redo branch")
	}
}

func TestBranchDiscard(t *testing.T) {
	s := mustNew(t, 0)
	s.Set(1)
	s.Set(2)
	s.Set(3)
	assertState(t, s, []int{0, 1, 2, 3}, 3)

	s.Undo()
	s.Undo()
	assertState(t, s, []int{0, 1, 2, 3}, 1)

	if !s.Set(9) {
		t.Fatal("Set(9) = false, want true")
	}
	assertState(t, s, []int{0, 1, 9}, 2)
	if s.Redo() {
		t.Error("Redo() after branch discard = true, want false")
	}
}

func TestEviction(t *testing.T) {
	s := mustNew(t, 0, WithCapacity(3))

	s.Set(1)
	assertState(t, s, []int{0, 1}, 1)
	s.Set(2)
	assertState(t, s, []int{0, 1, 2}, 2)
	s.Set(3)
	assertState(t, s, []int{1, 2, 3}, 2)

	if !s.Undo() {
		t.Fatal("Undo() = false")
	}
	assertState(t, s, []int{1, 2, 3}, 1)
	if !s.Redo() {
		t.Fatal("Redo() = false")
	}
	assertState(t, s, []int{1, 2, 3}, 2)
}

func TestCapacityOne(t *testing.T) {
	s := mustNew(t, "a", WithCapacity(1))

	if !s.Set("b") {
		t.Fatal("Set(b) = false")
	}
	if got := s.Timeline(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("timeline = %v, want [b]", got)
	}
	if s.Undo() || s.Redo() {
		t.Error("navigation should be impossible with capacity 1")
	}
	checkInvariants(t, s)
}

func TestBoundaryNavigationIsIdempotent(t *testing.T) {
	s := mustNew(t, 0)
	s.Set(1)
	s.Set(2)

	for i := 0; i < 5; i++ {
		if s.Redo() {
			t.Fatalf("Redo() at tail #%d = true", i)
		}
	}
	assertState(t, s, []int{0, 1, 2}, 2)

	s.Goto(0)
	for i := 0; i < 5; i++ {
		if s.Undo() {
			t.Fatalf("Undo() at head #%d = true", i)
		}
	}
	assertState(t, s, []int{0, 1, 2}, 0)
}

func TestGoto(t *testing.T) {
	s := mustNew(t, 0)
	s.Set(1)
	s.Set(2)
	s.Set(3)

	tests := []struct {
		name    string
		index   int
		want    bool
		pointer int
	}{
		{"first", 0, true, 0},
		{"last (inclusive upper bound)", 3, true, 3},
		{"middle", 2, true, 2},
		{"negative", -1, false, 2},
		{"past end", 4, false, 2},
		{"far past end", 1 << 30, false, 2},
		{"very negative", -1 << 30, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Timeline()
			if got := s.Goto(tt.index); got != tt.want {
				t.Errorf("Goto(%d) = %v, want %v", tt.index, got, tt.want)
			}
			if s.Pointer() != tt.pointer {
				t.Errorf("pointer = %d, want %d", s.Pointer(), tt.pointer)
			}
			if !slices.Equal(s.Timeline(), before) {
				t.Errorf("Goto changed the timeline: %v -> %v", before, s.Timeline())
			}
		})
	}
}

func TestReset(t *testing.T) {
	s := mustNew(t, 0)
	s.Set(1)
	s.Set(2)
	s.Undo()

	if !s.Reset(5) {
		t.Fatal("Reset(5) = false")
	}
	assertState(t, s, []int{5}, 0)

	if s.Reset(5) {
		t.Error("Reset to the existing single value = true, want false")
	}

	s.Set(6)
	if !s.Reset(6) {
		t.Error("Reset(6) with longer timeline = false, want true")
	}
	assertState(t, s, []int{6}, 0)
}

func TestTimelineIsCopy(t *testing.T) {
	s := mustNew(t, 0)
	s.Set(1)

	tl := s.Timeline()
	tl[0] = 100
	tl[1] = 100

	assertState(t, s, []int{0, 1}, 1)
}

func TestOpaqueEquality(t *testing.T) {
	type point struct{ X, Y int }

	t.Run("pointers compare by identity", func(t *testing.T) {
		a := &point{1, 2}
		b := &point{1, 2}
		s := mustNew(t, a)
		if s.Set(a) {
			t.Error("Set(same pointer) = true, want false")
		}
		if !s.Set(b) {
			t.Error("Set(distinct pointer with equal contents) = false, want true")
		}
	})

	t.Run("slices are never equal", func(t *testing.T) {
		v := []int{1, 2}
		s := mustNew(t, v)
		if !s.Set(v) {
			t.Error("Set(same slice) = false, want true")
		}
		if s.Len() != 2 {
			t.Errorf("Len() = %d, want 2", s.Len())
		}
	})

	t.Run("maps are never equal", func(t *testing.T) {
		s := mustNew(t, map[string]int{})
		if !s.Set(map[string]int{}) {
			t.Error("Set(map) = false, want true")
		}
	})

	t.Run("primitive values", func(t *testing.T) {
		s := mustNew[any](t, "x")
		if s.Set("x") {
			t.Error("Set(equal string) = true")
		}
		if !s.Set(1) {
			t.Error("Set(different dynamic type) = false")
		}
		if !s.Set([]int{1}) {
			t.Error("Set(slice in interface) = false")
		}
		if !s.Set(nil) {
			t.Error("Set(nil) = false")
		}
		if s.Set(nil) {
			t.Error("Set(nil) twice = true")
		}
	})

	t.Run("custom equality", func(t *testing.T) {
		s := mustNew(t, []int{1, 2}).WithEquals(slices.Equal[[]int])
		if s.Set([]int{1, 2}) {
			t.Error("Set(equal slice) with slices.Equal = true, want false")
		}
		if !s.Set([]int{1, 3}) {
			t.Error("Set(different slice) = false")
		}
	})

	t.Run("custom equality on named type", func(t *testing.T) {
		type label string
		s := mustNew(t, label("a")).WithEquals(func(a, b label) bool {
			return strings.EqualFold(string(a), string(b))
		})
		if s.Set("A") {
			t.Error("Set(\"A\") with case-insensitive equality = true, want false")
		}
		if !s.Set("b") {
			t.Error("Set(\"b\") = false")
		}
	})

	t.Run("nil equality restores default", func(t *testing.T) {
		s := mustNew(t, 1).WithEquals(func(a, b int) bool { return true })
		if s.Set(2) {
			t.Error("Set(2) with always-equal = true")
		}
		s.WithEquals(nil)
		if !s.Set(2) {
			t.Error("Set(2) after WithEquals(nil) = false")
		}
		if s.Set(2) {
			t.Error("Set(2) twice after WithEquals(nil) = true")
		}
	})
}

func TestEqual(t *testing.T) {
	type withSlice struct{ S []int }
	x := 1

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"same pointer", &x, &x, true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"struct with slice", withSlice{}, withSlice{}, false},
		{"func", func() {}, func() {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestObserver(t *testing.T) {
	var events []Event
	s := mustNew(t, 0, WithCapacity(2), WithObserver(ObserverFunc(func(e Event) {
		events = append(events, e)
	})))

	s.Set(1)
	s.Set(2)
	s.Set(2)
	s.Undo()
	s.Undo()
	s.Redo()
	s.Goto(5)
	s.Goto(0)
	s.Reset(9)

	want := []Event{
		{Op: OpSet, Changed: true, Pointer: 1, Len: 2},
		{Op: OpSet, Changed: true, Evicted: 1, Pointer: 1, Len: 2},
		{Op: OpSet, Changed: false, Pointer: 1, Len: 2},
		{Op: OpUndo, Changed: true, Pointer: 0, Len: 2},
		{Op: OpUndo, Changed: false, Pointer: 0, Len: 2},
		{Op: OpRedo, Changed: true, Pointer: 1, Len: 2},
		{Op: OpGoto, Changed: false, Pointer: 1, Len: 2},
		{Op: OpGoto, Changed: true, Pointer: 0, Len: 2},
		{Op: OpReset, Changed: true, Pointer: 0, Len: 1},
	}
	if !slices.Equal(events, want) {
		t.Errorf("events =\n%v\nwant\n%v", events, want)
	}
}

func TestObserverSeesConsistentState(t *testing.T) {
	var s *Store[int]
	s = mustNew(t, 0, WithCapacity(3), WithObserver(ObserverFunc(func(e Event) {
		if s.Pointer() != e.Pointer || s.Len() != e.Len {
			t.Errorf("observer saw pointer=%d len=%d, event says %d/%d", s.Pointer(), s.Len(), e.Pointer, e.Len)
		}
		checkInvariants(t, s)
	})))

	for i := 1; i <= 6; i++ {
		s.Set(i)
	}
	s.Undo()
	s.Goto(0)
}

func TestOpString(t *testing.T) {
	tests := map[Op]string{
		OpSet:    "set",
		OpUpdate: "update",
		OpUndo:   "undo",
		OpRedo:   "redo",
		OpGoto:   "goto",
		OpReset:  "reset",
		Op(0):    "unknown",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}

// TestRandomOperations drives a store with random operations and checks the
// invariants against a naive model after every step.
func TestRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, capacity := range []int{1, 2, 3, 5, 10} {
		s := mustNew(t, 0, WithCapacity(capacity))
		model := []int{0}
		pointer := 0

		for step := 0; step < 2000; step++ {
			switch rng.Intn(4) {
			case 0:
				v := rng.Intn(5)
				changed := s.Set(v)
				if v == model[pointer] {
					if changed {
						t.Fatalf("cap %d step %d: equal write reported change", capacity, step)
					}
					break
				}
				model = append(model[:pointer+1:pointer+1], v)
				if len(model) > capacity {
					model = model[len(model)-capacity:]
				}
				pointer = len(model) - 1
				if !changed {
					t.Fatalf("cap %d step %d: write reported no change", capacity, step)
				}
				if s.Pointer() != s.Len()-1 {
					t.Fatalf("cap %d step %d: pointer %d not at tail %d", capacity, step, s.Pointer(), s.Len()-1)
				}
			case 1:
				if s.Undo() != (pointer > 0) {
					t.Fatalf("cap %d step %d: Undo result mismatch", capacity, step)
				}
				if pointer > 0 {
					pointer--
				}
			case 2:
				if s.Redo() != (pointer < len(model)-1) {
					t.Fatalf("cap %d step %d: Redo result mismatch", capacity, step)
				}
				if pointer < len(model)-1 {
					pointer++
				}
			case 3:
				idx := rng.Intn(capacity+4) - 2
				ok := idx >= 0 && idx < len(model)
				if s.Goto(idx) != ok {
					t.Fatalf("cap %d step %d: Goto(%d) result mismatch", capacity, step, idx)
				}
				if ok {
					pointer = idx
				}
			}

			checkInvariants(t, s)
			if !slices.Equal(s.Timeline(), model) || s.Pointer() != pointer {
				t.Fatalf("cap %d step %d: state %v@%d, model %v@%d",
					capacity, step, s.Timeline(), s.Pointer(), model, pointer)
			}
			if s.Value() != model[pointer] {
				t.Fatalf("cap %d step %d: value %d, model %d", capacity, step, s.Value(), model[pointer])
			}
		}
	}
}
