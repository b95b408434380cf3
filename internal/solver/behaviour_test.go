package solver_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/grid"
	"github.com/san-kum/heatlab/internal/halo"
	"github.com/san-kum/heatlab/internal/metrics"
	"github.com/san-kum/heatlab/internal/solver"
)

// gaussian is a blob centred at c (fractions of the extent) on a unit
// spacing grid.
func gaussian(shape grid.Shape, c [3]float64, width float64) *grid.Field {
	f := grid.NewField(shape)
	n := shape.Array()
	for k := 0; k < shape.Nz; k++ {
		for j := 0; j < shape.Ny; j++ {
			for i := 0; i < shape.Nx; i++ {
				dx := float64(i) - c[0]*float64(n[0]-1)
				dy := float64(j) - c[1]*float64(n[1]-1)
				dz := 0.0
				if shape.Dims() == 3 {
					dz = float64(k) - c[2]*float64(n[2]-1)
				}
				f.Set(i, j, k, 2*math.Exp(-(dx*dx+dy*dy+dz*dz)/(width*width)))
			}
		}
	}
	return f
}

func varyingCi(shape grid.Shape) *grid.Field {
	f := grid.NewField(shape)
	for k := 0; k < shape.Nz; k++ {
		for j := 0; j < shape.Ny; j++ {
			for i := 0; i < shape.Nx; i++ {
				f.Set(i, j, k, 1/(1+0.5*math.Sin(float64(i+2*j+3*k))))
			}
		}
	}
	return f
}

func unit(shape grid.Shape) grid.Geometry {
	geom, err := grid.WithSpacing(shape, 1, 1, 1)
	Expect(err).NotTo(HaveOccurred())
	return geom
}

func run(initial, ci *grid.Field, iterations int, opts ...solver.Option) *diffusion.Result {
	geom := unit(initial.Shape())
	s, err := solver.New(initial, ci, geom, geom.StableDt(ci.Max()), opts...)
	Expect(err).NotTo(HaveOccurred())
	res, err := s.Run(context.Background(), iterations)
	Expect(err).NotTo(HaveOccurred())
	return res
}

var _ = Describe("Solver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("round trip", func() {
		It("returns the same field from a zero-iteration run after N iterations", func() {
			shape := grid.Shape3D(10, 9, 8)
			geom := unit(shape)
			ci := varyingCi(shape)
			s, err := solver.New(gaussian(shape, [3]float64{0.5, 0.5, 0.5}, 2), ci, geom, geom.StableDt(ci.Max()),
				solver.WithExchanger(halo.NewLocal(shape, halo.Uniform(halo.Closed))))
			Expect(err).NotTo(HaveOccurred())

			first, err := s.Run(ctx, 30)
			Expect(err).NotTo(HaveOccurred())
			second, err := s.Run(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Final.Equal(first.Final)).To(BeTrue())
			Expect(second.Diagnostics).To(HaveLen(1))
			Expect(second.Diagnostics[0].Iteration).To(Equal(30))
		})
	})

	Describe("overlap", func() {
		DescribeTable("gives bit-identical results to the plain step",
			func(shape grid.Shape, policy halo.Policy, width [3]int) {
				init := gaussian(shape, [3]float64{0.1, 0.8, 0.5}, 3)
				ci := varyingCi(shape)
				ex := halo.NewLocal(shape, policy)

				plain := run(init, ci, 25, solver.WithExchanger(ex))
				overlapped := run(init, ci, 25, solver.WithExchanger(ex), solver.WithOverlap(width))

				Expect(overlapped.Final.Equal(plain.Final)).To(BeTrue())
			},
			Entry("2-D periodic, width 1", grid.Shape2D(16, 12), halo.Uniform(halo.Periodic), [3]int{1, 1, 0}),
			Entry("2-D mixed, width 2", grid.Shape2D(20, 9), halo.Policy{halo.Periodic, halo.Closed, halo.Fixed}, [3]int{2, 2, 0}),
			Entry("3-D closed, wide slabs", grid.Shape3D(12, 10, 9), halo.Uniform(halo.Closed), [3]int{4, 2, 3}),
			Entry("3-D periodic, slabs cover the grid", grid.Shape3D(6, 6, 6), halo.Uniform(halo.Periodic), [3]int{8, 8, 8}),
		)
	})

	Describe("conservation", func() {
		It("keeps the heat of a closed box with constant Ci", func() {
			shape := grid.Shape2D(24, 20)
			ci := grid.NewField(shape)
			ci.Fill(1)
			drift := metrics.NewHeatDrift()
			gain := metrics.NewHeatGain()

			res := run(gaussian(shape, [3]float64{0.3, 0.6, 0}, 3), ci, 200,
				solver.WithExchanger(halo.NewLocal(shape, halo.Uniform(halo.Closed))),
				solver.WithMetric(drift), solver.WithMetric(gain), solver.WithSampleEvery(10))

			Expect(res.Metrics["heat_drift"]).To(BeNumerically("<", 1e-12))
			Expect(res.Metrics["heat_gain"]).To(BeNumerically("<=", 1e-12))
			Expect(res.Diagnostics).To(HaveLen(21))
		})

		It("never gains heat with fixed cold borders", func() {
			shape := grid.Shape3D(12, 12, 12)
			init := gaussian(shape, [3]float64{0.5, 0.5, 0.5}, 2)
			for d := 0; d < 3; d++ {
				n := shape.Extent(d)
				buf := make([]float64, shape.PlaneLen(d))
				Expect(init.UnpackPlane(d, 0, buf)).To(Succeed())
				Expect(init.UnpackPlane(d, n-1, buf)).To(Succeed())
			}
			ci := grid.NewField(shape)
			ci.Fill(1)

			res := run(init, ci, 100, solver.WithMetric(metrics.NewHeatGain()), solver.WithSampleEvery(1))

			Expect(res.Metrics["heat_gain"]).To(BeZero())
			first, last := res.Diagnostics[0], res.Diagnostics[len(res.Diagnostics)-1]
			Expect(last.Heat).To(BeNumerically("<", first.Heat))
			Expect(last.Max).To(BeNumerically("<", first.Max))
		})
	})

	Describe("decomposition", func() {
		DescribeTable("matches the single-grid run on the same global problem",
			func(local grid.Shape, dims [3]int, policy halo.Policy, overlap bool) {
				g, err := halo.InitGlobalGrid(local, dims, policy)
				Expect(err).NotTo(HaveOccurred())
				defer g.Finalize()

				shape := g.GlobalShape()
				geom := unit(shape)
				init := gaussian(shape, [3]float64{0.2, 0.7, 0.4}, 3)
				ci := varyingCi(shape)
				dt := geom.StableDt(ci.Max())

				var opts []solver.Option
				if overlap {
					opts = append(opts, solver.WithOverlap([3]int{1, 1, 1}))
				}

				single, err := solver.New(init, ci, geom, dt, append(opts, solver.WithExchanger(halo.NewLocal(shape, policy)))...)
				Expect(err).NotTo(HaveOccurred())
				want, err := single.Run(ctx, 20)
				Expect(err).NotTo(HaveOccurred())

				got, err := solver.RunDistributed(ctx, g, init, ci, geom, dt, 20, opts...)
				Expect(err).NotTo(HaveOccurred())

				Expect(got.Final.Shape()).To(Equal(shape))
				Expect(got.Final.Equal(want.Final)).To(BeTrue())
				Expect(got.Iterations).To(Equal(20))

				lastGot, _ := got.LastSample()
				lastWant, _ := want.LastSample()
				Expect(lastGot.Cells).To(Equal(lastWant.Cells))
				Expect(lastGot.Heat).To(BeNumerically("~", lastWant.Heat, 1e-9))
				Expect(lastGot.Max).To(Equal(lastWant.Max))
			},
			Entry("2 ranks along periodic x", grid.Shape2D(8, 10), [3]int{2, 1, 1}, halo.Policy{halo.Periodic, halo.Fixed, halo.Fixed}, false),
			Entry("2x2 closed", grid.Shape2D(7, 9), [3]int{2, 2, 1}, halo.Uniform(halo.Closed), false),
			Entry("2x2 periodic with overlap", grid.Shape2D(9, 9), [3]int{2, 2, 1}, halo.Uniform(halo.Periodic), true),
			Entry("3-D 2x1x2 mixed", grid.Shape3D(6, 8, 6), [3]int{2, 1, 2}, halo.Policy{halo.Closed, halo.Periodic, halo.Periodic}, false),
			Entry("3-D 1x3x1 periodic with overlap", grid.Shape3D(6, 5, 6), [3]int{1, 3, 1}, halo.Uniform(halo.Periodic), true),
		)

		It("reports reduced diagnostics through rank 0's metrics", func() {
			g, err := halo.InitGlobalGrid(grid.Shape2D(10, 10), [3]int{2, 2, 1}, halo.Uniform(halo.Closed))
			Expect(err).NotTo(HaveOccurred())
			defer g.Finalize()

			shape := g.GlobalShape()
			geom := unit(shape)
			ci := grid.NewField(shape)
			ci.Fill(1)

			res, err := solver.RunDistributed(ctx, g, gaussian(shape, [3]float64{0.5, 0.5, 0}, 3), ci, geom,
				geom.StableDt(1), 50, solver.WithMetric(metrics.NewHeatDrift()), solver.WithSampleEvery(5))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Diagnostics).To(HaveLen(11))
			Expect(res.Diagnostics[0].Cells).To(Equal(16 * 16))
			Expect(res.Metrics["heat_drift"]).To(BeNumerically("<", 1e-12))
		})

		It("stops every rank when the context is cancelled", func() {
			g, err := halo.InitGlobalGrid(grid.Shape2D(6, 6), [3]int{2, 1, 1}, halo.Uniform(halo.Periodic))
			Expect(err).NotTo(HaveOccurred())
			defer g.Finalize()

			shape := g.GlobalShape()
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err = solver.RunDistributed(cctx, g, grid.NewField(shape), grid.NewField(shape), unit(shape), 0.1, 10)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("refuses to reuse a grid after a failed run", func() {
			g, err := halo.InitGlobalGrid(grid.Shape2D(6, 6), [3]int{2, 1, 1}, halo.Uniform(halo.Periodic))
			Expect(err).NotTo(HaveOccurred())
			defer g.Finalize()

			shape := g.GlobalShape()
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err = solver.RunDistributed(cctx, g, grid.NewField(shape), grid.NewField(shape), unit(shape), 0.1, 10)
			Expect(err).To(HaveOccurred())

			_, err = solver.RunDistributed(ctx, g, grid.NewField(shape), grid.NewField(shape), unit(shape), 0.1, 10)
			Expect(err).To(MatchError(halo.ErrFinalized))
			_, err = g.Rank(0).AllReduce(ctx, 1, halo.Sum)
			Expect(err).To(MatchError(halo.ErrFinalized))
		})
	})

	Describe("skipping the exchange", func() {
		It("silently produces different numbers", func() {
			shape := grid.Shape2D(14, 10)
			policy := halo.Policy{halo.Periodic, halo.Periodic, halo.Fixed}
			init := gaussian(shape, [3]float64{0.05, 0.5, 0}, 2)
			ci := grid.NewField(shape)
			ci.Fill(1)

			good := run(init, ci, 30, solver.WithExchanger(halo.NewLocal(shape, policy)))
			stale := run(init, ci, 30, solver.WithExchanger(halo.NewLocal(shape, policy)), solver.WithSkipExchange())

			Expect(stale.Final.EqualApprox(good.Final, 1e-6)).To(BeFalse())
			Expect(stale.Final.At(0, 5, 0)).To(Equal(init.At(0, 5, 0)))
			Expect(stale.Final.At(0, 5, 0)).NotTo(Equal(stale.Final.At(shape.Nx-2, 5, 0)))
		})
	})
})
