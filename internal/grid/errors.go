package grid

import "errors"

var (
	// ErrInvalidShape indicates an extent too small to hold an interior cell.
	ErrInvalidShape = errors.New("grid: invalid shape (every extent must be >= 3)")

	// ErrShapeMismatch indicates two fields that must share a shape do not.
	ErrShapeMismatch = errors.New("grid: shape mismatch between fields")

	// ErrInvalidField indicates a field holding NaN or Inf.
	ErrInvalidField = errors.New("grid: invalid field (NaN or Inf detected)")

	// ErrInvalidGeometry indicates a non-positive extent or spacing.
	ErrInvalidGeometry = errors.New("grid: invalid geometry (extents and spacings must be positive)")
)
