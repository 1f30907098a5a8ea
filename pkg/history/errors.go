package history

import (
	"errors"
	"strconv"

	herrors "github.com/vango-dev/vango-history/internal/errors"
)

// ErrInvalidCapacity is returned by New and NewFunc when the configured
// capacity is less than one.
var ErrInvalidCapacity = errors.New("history: invalid capacity")

func invalidCapacity(capacity int) error {
	return herrors.New("H001").
		WithDetail("Capacity " + strconv.Itoa(capacity) + " cannot hold the initial value.").
		WithSuggestion("Use history.WithCapacity(1) or larger, or omit it for the default of 10").
		Wrap(ErrInvalidCapacity)
}

func factoryFailed(err error) error {
	return herrors.New("H002").Wrap(err)
}
