package layout

import "errors"

// Domain errors for the layout package.
var (
	// ErrNodeNotFound is returned when an alias is not in the layout.
	ErrNodeNotFound = errors.New("layout: node not found")

	// ErrInvalidLayout is returned when the layout file fails validation.
	ErrInvalidLayout = errors.New("layout: invalid")
)
