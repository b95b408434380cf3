// Package stencil implements the explicit heat-diffusion update.
//
// One step maps the current field T to the next field T2 on every interior
// cell:
//
//	T2 = T + dt*Ci*(d2x(T)*invdx^2 + d2y(T)*invdy^2 [+ d2z(T)*invdz^2])
//
// where d2 is the centred second difference. Border cells of T2 are never
// written; they belong to the halo exchange.
//
// The update can be restricted to a [Region] so a step may be split into
// boundary slabs and an inner box (see [Split]) without changing the result.
package stencil
