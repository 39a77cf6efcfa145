package coefficient

import "errors"

var (
	// ErrMalformedTable indicates that fewer than two valid (energy, value)
	// rows remained after parsing.
	ErrMalformedTable = errors.New("coefficient: malformed table")

	// ErrUnknownUnit indicates an energy or coefficient unit tag that is not recognised.
	ErrUnknownUnit = errors.New("coefficient: unknown unit")

	// ErrInvalidColumns indicates negative or coinciding column indices.
	ErrInvalidColumns = errors.New("coefficient: invalid columns")
)
