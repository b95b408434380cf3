// Package diffusion defines the types shared by the heat diffusion solver
// and its collaborators.
//
//   - [Sample]: global diagnostics of the temperature field at one iteration
//   - [Metric]: a scalar accumulated over the samples of a run
//   - [Observer]: receives every sample as it is taken
//   - [Result]: what a run returns
//
// # Example
//
//	s, _ := solver.New(initial, ci, geom, dt,
//		solver.WithExchanger(halo.NewLocal(shape, halo.Uniform(halo.Periodic))),
//		solver.WithMetric(metrics.NewHeatDrift()))
//	res, _ := s.Run(ctx, 1000)
//	fmt.Println(res.Metrics["heat_drift"])
//
// Solver instances are NOT thread-safe. Distributed runs drive one solver
// per rank, each on its own goroutine.
package diffusion
