package pricing

import "errors"

var (
	// ErrInvalidDimension reports a non-positive artwork size or a negative mat border.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidCatalogEntry reports malformed box, sheet or purchase option data.
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
	// ErrInvalidQuantity reports an order quantity below one.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidFootage reports a non-positive footage request.
	ErrInvalidFootage = errors.New("invalid footage")
	// ErrNoOptionsAvailable reports an optimizer call without purchase options.
	ErrNoOptionsAvailable = errors.New("no purchase options available")
	// ErrUndefined reports a ratio whose denominator is zero.
	ErrUndefined = errors.New("undefined ratio")
)
