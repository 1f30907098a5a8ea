package history

import (
	"context"
	"log/slog"
)

// Store is a capacity-bounded undo/redo container for values of type V.
//
// The timeline always holds between 1 and Capacity() values, and the
// current value is always timeline[pointer]. The zero Store is not usable;
// construct one with New or NewFunc.
type Store[V any] struct {
	timeline []V
	pointer  int
	capacity int

	equal     func(V, V) bool
	logger    *slog.Logger
	observers []Observer
}

// New creates a store whose timeline starts as [initial].
func New[V any](initial V, opts ...Option) (*Store[V], error) {
	o := applyOptions(opts)
	if o.capacity < 1 {
		return nil, invalidCapacity(o.capacity)
	}

	s := &Store[V]{
		timeline:  make([]V, 1, min(o.capacity, DefaultCapacity)),
		capacity:  o.capacity,
		equal:     Equal[V],
		logger:    o.logger,
		observers: o.observers,
	}
	s.timeline[0] = initial
	return s, nil
}

// NewFunc creates a store seeded by calling factory exactly once.
// Capacity is validated before the factory runs. If the factory fails,
// its error is returned wrapped and no store is produced.
func NewFunc[V any](factory func() (V, error), opts ...Option) (*Store[V], error) {
	o := applyOptions(opts)
	if o.capacity < 1 {
		return nil, invalidCapacity(o.capacity)
	}

	initial, err := factory()
	if err != nil {
		return nil, factoryFailed(err)
	}
	return New(initial, opts...)
}

// WithEquals returns the store configured with a custom equality function
// used to detect no-op writes. A nil fn restores the default opaque equality.
//
// Example:
//
//	h, _ := history.New([]int{1})
//	h.WithEquals(slices.Equal[[]int])
func (s *Store[V]) WithEquals(fn func(V, V) bool) *Store[V] {
	if fn == nil {
		fn = Equal[V]
	}
	s.equal = fn
	return s
}

// Value returns the value the pointer is on.
func (s *Store[V]) Value() V {
	return s.timeline[s.pointer]
}

// Timeline returns a copy of the stored values, oldest first.
func (s *Store[V]) Timeline() []V {
	out := make([]V, len(s.timeline))
	copy(out, s.timeline)
	return out
}

// Pointer returns the index of the current value in the timeline.
func (s *Store[V]) Pointer() int {
	return s.pointer
}

// Capacity returns the maximum timeline length.
func (s *Store[V]) Capacity() int {
	return s.capacity
}

// Len returns the current timeline length.
func (s *Store[V]) Len() int {
	return len(s.timeline)
}

// CanUndo reports whether Undo would move the pointer.
func (s *Store[V]) CanUndo() bool {
	return s.pointer > 0
}

// CanRedo reports whether Redo would move the pointer.
func (s *Store[V]) CanRedo() bool {
	return s.pointer < len(s.timeline)-1
}

// Set writes v as the newest value.
//
// If v equals the current value nothing happens and Set returns false.
// Otherwise every value after the pointer is discarded, v is appended, the
// oldest values are evicted until the timeline fits the capacity, and the
// pointer moves to v.
func (s *Store[V]) Set(v V) bool {
	return s.write(OpSet, v)
}

// Update writes fn(Value()) with the same semantics as Set.
func (s *Store[V]) Update(fn func(V) V) bool {
	return s.write(OpUpdate, fn(s.Value()))
}

func (s *Store[V]) write(op Op, v V) bool {
	if s.equal(s.timeline[s.pointer], v) {
		s.notify(Event{Op: op, Pointer: s.pointer, Len: len(s.timeline)})
		return false
	}

	// Drop the redo branch. Clearing the tail lets dropped values be collected.
	clear(s.timeline[s.pointer+1:])
	s.timeline = append(s.timeline[:s.pointer+1], v)

	evicted := 0
	if excess := len(s.timeline) - s.capacity; excess > 0 {
		clear(s.timeline[:excess])
		s.timeline = s.timeline[excess:]
		evicted = excess
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "history evicted oldest values",
			slog.Int("evicted", evicted),
			slog.Int("capacity", s.capacity))
	}

	s.pointer = len(s.timeline) - 1
	s.notify(Event{Op: op, Changed: true, Evicted: evicted, Pointer: s.pointer, Len: len(s.timeline)})
	return true
}

// Undo moves the pointer one value back. It returns false at the oldest value.
func (s *Store[V]) Undo() bool {
	if !s.CanUndo() {
		return s.reject(OpUndo, s.pointer-1)
	}
	return s.move(OpUndo, s.pointer-1)
}

// Redo moves the pointer one value forward. It returns false at the newest value.
func (s *Store[V]) Redo() bool {
	if !s.CanRedo() {
		return s.reject(OpRedo, s.pointer+1)
	}
	return s.move(OpRedo, s.pointer+1)
}

// Goto moves the pointer to index. Any index outside [0, Len()) is
// rejected with false and leaves the store unchanged.
func (s *Store[V]) Goto(index int) bool {
	if index < 0 || index >= len(s.timeline) {
		return s.reject(OpGoto, index)
	}
	return s.move(OpGoto, index)
}

// Reset replaces the whole timeline with [v]. It returns false if the
// timeline already was exactly [v].
func (s *Store[V]) Reset(v V) bool {
	if len(s.timeline) == 1 && s.equal(s.timeline[0], v) {
		s.notify(Event{Op: OpReset, Pointer: 0, Len: 1})
		return false
	}

	clear(s.timeline)
	s.timeline = append(s.timeline[:0], v)
	s.pointer = 0
	s.notify(Event{Op: OpReset, Changed: true, Pointer: 0, Len: 1})
	return true
}

// move sets the pointer to a validated index. Going to the current index
// is accepted but reports no change.
func (s *Store[V]) move(op Op, index int) bool {
	changed := index != s.pointer
	s.pointer = index
	s.notify(Event{Op: op, Changed: changed, Pointer: s.pointer, Len: len(s.timeline)})
	return true
}

func (s *Store[V]) reject(op Op, index int) bool {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "history navigation rejected",
		slog.String("op", op.String()),
		slog.Int("index", index),
		slog.Int("pointer", s.pointer),
		slog.Int("len", len(s.timeline)))
	s.notify(Event{Op: op, Pointer: s.pointer, Len: len(s.timeline)})
	return false
}

func (s *Store[V]) notify(e Event) {
	for _, o := range s.observers {
		o.Observe(e)
	}
}
