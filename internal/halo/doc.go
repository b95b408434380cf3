// Package halo keeps the one-cell border of a field consistent with its
// boundary condition or with the subgrids next to it.
//
// The solver sees only the [Exchanger] interface, so a single-process grid
// and a decomposed grid share the same stencil code:
//
//   - [Local] applies a per-dimension [Boundary] to one field.
//   - [GlobalGrid] splits a global grid into ranks whose local grids overlap
//     their neighbours by two cells. Each [Rank] sends the planes next to its
//     border to the neighbouring ranks and receives their planes into its
//     halo.
//
// Exchange must run after the stencil has finished writing the field and
// before the next stencil pass reads it. Skipping it raises no error; the
// border simply goes stale and the error spreads inward.
package halo
