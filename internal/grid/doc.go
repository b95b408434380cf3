// Package grid provides the storage primitives for finite-difference fields.
//
// A [Field] is a dense, flat array addressed by computed offsets with x
// varying fastest. Two fields of one [Shape] are held in a [DoubleBuffer]
// whose roles are swapped by flipping an index, never by copying:
//
//	buf := grid.NewDoubleBuffer(shape)
//	stencil.Diffuse(buf.Current(), buf.Next(), ci, p, stencil.Interior(shape))
//	buf.Swap()
//
// [Geometry] carries the immutable extents and spacings of the grid and the
// derived inverse spacings the kernel consumes.
//
// Indexing outside a field panics. Shape and configuration problems are
// reported through the sentinel errors in errors.go.
package grid
