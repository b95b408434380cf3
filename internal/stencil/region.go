package stencil

import "github.com/san-kum/heatlab/internal/grid"

// Region is a half-open box of cell indices.
type Region struct {
	Lo, Hi [3]int
}

func (r Region) Empty() bool {
	return r.Hi[0] <= r.Lo[0] || r.Hi[1] <= r.Lo[1] || r.Hi[2] <= r.Lo[2]
}

func (r Region) Cells() int {
	if r.Empty() {
		return 0
	}
	return (r.Hi[0] - r.Lo[0]) * (r.Hi[1] - r.Lo[1]) * (r.Hi[2] - r.Lo[2])
}

func (r Region) Contains(i, j, k int) bool {
	return i >= r.Lo[0] && i < r.Hi[0] &&
		j >= r.Lo[1] && j < r.Hi[1] &&
		k >= r.Lo[2] && k < r.Hi[2]
}

// Interior is every cell except the one-cell border.
func Interior(shape grid.Shape) Region {
	lo, hi := shape.InteriorBounds()
	return Region{Lo: lo, Hi: hi}
}

// Split partitions the interior into the slabs lying within width[d] cells
// of the border along each dimension and the inner box that remains. The
// slabs and the inner box are pairwise disjoint and together cover
// Interior(shape). A zero width produces no slab for that dimension.
func Split(shape grid.Shape, width [3]int) (boundary []Region, inner Region) {
	in := Interior(shape)
	if shape.Dims() == 2 {
		width[2] = 0
	}
	rest := in
	for d := 0; d < 3; d++ {
		w := width[d]
		if w <= 0 {
			continue
		}
		lo := Region{Lo: rest.Lo, Hi: rest.Hi}
		lo.Hi[d] = min(rest.Lo[d]+w, rest.Hi[d])
		hi := Region{Lo: rest.Lo, Hi: rest.Hi}
		hi.Lo[d] = max(rest.Hi[d]-w, lo.Hi[d])
		if !lo.Empty() {
			boundary = append(boundary, lo)
		}
		if !hi.Empty() {
			boundary = append(boundary, hi)
		}
		rest.Lo[d], rest.Hi[d] = lo.Hi[d], hi.Lo[d]
	}
	return boundary, rest
}
