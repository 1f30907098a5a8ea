// Package errors provides structured, actionable error messages for vango-history.
//
// Each error has a unique code (e.g., "H001") that maps to a short message,
// a detailed explanation and a documentation URL. Errors can carry a
// suggestion and wrap an underlying cause, so errors.Is and errors.As keep
// working on sentinel errors such as history.ErrInvalidCapacity.
//
// # Error Categories
//
//   - history: store construction errors (invalid capacity, factory failure)
//   - config: history.json loading and validation
//   - server: HTTP surface errors (unknown history)
//   - validation: malformed requests
//
// # Usage
//
//	err := errors.New("H001").
//	    WithDetail("capacity was 0").
//	    WithSuggestion("Use history.WithCapacity(1) or larger")
//
//	fmt.Println(err.Format())
package errors
