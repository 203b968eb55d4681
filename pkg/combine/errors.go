package combine

import "errors"

// Sentinel errors returned by the combination entry points. Both are
// programmer-error-class failures: validation happens eagerly before any
// numeric work and no partial results are ever produced. Callers match
// them with errors.Is; the wrapped message carries the observed shapes.
var (
	// ErrShapeMismatch is returned by WeightedCombine when the
	// sensitivity map's shape does not equal (spatial..., coil) as
	// derived from the image volume.
	ErrShapeMismatch = errors.New("combine: sensitivity map shape mismatch")

	// ErrDimension is returned when a volume has no discoverable
	// coil/echo axes, an empty coil or echo axis, or a data array
	// inconsistent with its declared shape.
	ErrDimension = errors.New("combine: invalid volume dimensions")
)
