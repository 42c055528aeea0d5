package cart

import "errors"

var (
	// ErrInvalidArgument rejects a mutation before any network call is
	// made: zero variant id, non-positive quantity, empty line id.
	ErrInvalidArgument = errors.New("cart: invalid argument")

	// ErrMissingMerchandise marks a cart line whose backing variant was
	// deleted upstream. A resumed cart containing one is discarded.
	ErrMissingMerchandise = errors.New("cart: line has no merchandise reference")

	// ErrVariantNotInCatalog marks a reconciliation lookup that found no
	// display record for a variant.
	ErrVariantNotInCatalog = errors.New("cart: variant not in catalog")
)
