// Package compute dispatches stencil kernels onto execution backends.
//
// A backend partitions a grid into launch blocks and runs them in parallel:
//
//   - serial: every block on the calling goroutine
//   - cpu: goroutines spawned per launch, one contiguous chunk each
//   - pool: persistent workers reused across launches
//
// The launch geometry is derived from the grid shape and a work-group size:
//
//	backend := compute.GetBackend()
//	geom, err := backend.Launch(shape)
//	compute.Run(backend, geom, region, func(i, j, k int) { ... })
//
// When a work-group size is given explicitly, every grid extent must be a
// multiple of it; otherwise [ErrIndivisibleShape] is returned before any
// work starts.
package compute
