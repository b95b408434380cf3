package compute

import (
	"fmt"

	"github.com/san-kum/heatlab/internal/grid"
	"github.com/san-kum/heatlab/internal/stencil"
)

// WorkGroup is the number of cells handled by one launch block along each
// dimension. A zero value selects the default for the grid.
type WorkGroup struct {
	X, Y, Z int
}

func (w WorkGroup) IsZero() bool { return w == WorkGroup{} }

var (
	defaultGroup2D = [3]int{32, 8, 1}
	defaultGroup3D = [3]int{32, 4, 4}
)

// LaunchGeometry is a block partition of a grid.
type LaunchGeometry struct {
	Threads [3]int
	Blocks  [3]int
}

func (g LaunchGeometry) NumBlocks() int { return g.Blocks[0] * g.Blocks[1] * g.Blocks[2] }

func (g LaunchGeometry) String() string {
	return fmt.Sprintf("threads=%v blocks=%v", g.Threads, g.Blocks)
}

// DeriveLaunch computes the launch geometry of shape for work group wg.
// Default work groups are clamped to the grid and may leave a partial last
// block; explicit ones must tile every extent exactly.
func DeriveLaunch(shape grid.Shape, wg WorkGroup) (LaunchGeometry, error) {
	if err := shape.Validate(); err != nil {
		return LaunchGeometry{}, err
	}
	n := shape.Array()
	var geom LaunchGeometry

	if wg.IsZero() {
		threads := defaultGroup3D
		if shape.Dims() == 2 {
			threads = defaultGroup2D
		}
		for d := 0; d < 3; d++ {
			t := min(threads[d], n[d])
			geom.Threads[d] = t
			geom.Blocks[d] = (n[d] + t - 1) / t
		}
		return geom, nil
	}

	threads := [3]int{wg.X, wg.Y, wg.Z}
	if shape.Dims() == 2 && threads[2] == 0 {
		threads[2] = 1
	}
	for d := 0; d < 3; d++ {
		t := threads[d]
		if t <= 0 || n[d]%t != 0 {
			return LaunchGeometry{}, fmt.Errorf("%w: extent %d along dim %d, work group %d", ErrIndivisibleShape, n[d], d, t)
		}
		geom.Threads[d] = t
		geom.Blocks[d] = n[d] / t
	}
	return geom, nil
}

// Run dispatches cell once for every cell of region. Each block visits its
// cells and skips those outside region, so blocks may overhang the grid.
func Run(b Backend, geom LaunchGeometry, region stencil.Region, cell func(i, j, k int)) {
	if region.Empty() {
		return
	}
	t := geom.Threads
	var lo, cnt [3]int
	for d := 0; d < 3; d++ {
		lo[d] = region.Lo[d] / t[d]
		cnt[d] = (region.Hi[d]+t[d]-1)/t[d] - lo[d]
	}
	total := cnt[0] * cnt[1] * cnt[2]

	b.ParallelFor(total, func(start, end int) {
		for blk := start; blk < end; blk++ {
			bx := lo[0] + blk%cnt[0]
			by := lo[1] + (blk/cnt[0])%cnt[1]
			bz := lo[2] + blk/(cnt[0]*cnt[1])
			for tk := 0; tk < t[2]; tk++ {
				k := bz*t[2] + tk
				for tj := 0; tj < t[1]; tj++ {
					j := by*t[1] + tj
					for ti := 0; ti < t[0]; ti++ {
						i := bx*t[0] + ti
						if region.Contains(i, j, k) {
							cell(i, j, k)
						}
					}
				}
			}
		}
	})
}
