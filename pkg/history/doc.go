// Package history provides a bounded undo/redo value container.
//
// A Store holds an ordered timeline of past values, a pointer to the value
// currently in view and a fixed capacity. Writing after an undo discards
// the redo branch; writing past capacity evicts the oldest values first.
//
//	h, err := history.New("draft", history.WithCapacity(50))
//	if err != nil {
//	    return err
//	}
//
//	h.Set("draft v2")    // true
//	h.Undo()             // true, Value() == "draft"
//	h.Redo()             // true, Value() == "draft v2"
//	h.Goto(0)            // true, Value() == "draft"
//	h.Set("draft")       // false, equal to the current value
//
// # Equality
//
// A write equal to the current value is a no-op. Equality is opaque: Go ==
// on the dynamic values when both are comparable, so pointers compare by
// identity and composite values such as slices and maps are never equal.
// Use Store.WithEquals to plug in a different comparison.
//
// # Notifications
//
// Every mutator returns whether the state changed. Observers registered
// with WithObserver receive an Event after each operation, once the store
// is back in a consistent state.
//
// # Concurrency
//
// A Store has a single owner and does no locking. Callers that share a
// store between goroutines must serialize access themselves.
package history
