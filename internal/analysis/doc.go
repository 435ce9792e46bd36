// Package analysis characterizes solved trajectories.
//
// Everything here consumes either a dense solution or its uniform samples;
// nothing integrates on its own beyond re-running the solver:
//
//   - [LargestLyapunov]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum]: one-sided spectrum of a sampled component
//   - [MinReturnDistance]: closest self-approach past a lag, a periodicity probe
//   - [BoundsOf]: componentwise attractor extent
//   - [Sweep]: parallel parameter sweep collecting post-transient peaks
//   - [Poincare]: section crossings located on the dense solution
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LargestLyapunov(sys, y0, 5, 1, 50, integrators.Options{})
//	if err == nil && lambda > 0 {
//	    // System is chaotic
//	}
package analysis
