package history

// Op identifies a store operation.
type Op uint8

const (
	OpSet Op = iota + 1
	OpUpdate
	OpUndo
	OpRedo
	OpGoto
	OpReset
)

// String returns the lower-case operation name.
func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	case OpUndo:
		return "undo"
	case OpRedo:
		return "redo"
	case OpGoto:
		return "goto"
	case OpReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event describes the outcome of one operation.
type Event struct {
	// Op is the operation that ran.
	Op Op

	// Changed reports whether the timeline or pointer moved.
	Changed bool

	// Evicted is the number of values dropped from the front of the
	// timeline to stay within capacity. Only writes evict.
	Evicted int

	// Pointer and Len describe the state after the operation.
	Pointer int
	Len     int
}

// Observer receives an Event after every store operation.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}
