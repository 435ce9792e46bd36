package analysis

import (
	"fmt"
	"math"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

// lyapSep is the separation the perturbed trajectory is reset to after each
// renormalization window.
const lyapSep = 1e-8

// LargestLyapunov estimates the largest Lyapunov exponent by integrating two
// nearby trajectories and renormalizing their separation after every window.
// A positive value indicates chaos. The system settles for transient time
// units first so the estimate reflects the attractor rather than the approach
// to it.
func LargestLyapunov(sys dynamo.System, y0 dynamo.State, transient, window float64, windows int, opts integrators.Options) (float64, error) {
	if window <= 0 || windows <= 0 || transient < 0 {
		return 0, fmt.Errorf("%w: window=%g windows=%d transient=%g", dynamo.ErrInvalidParams, window, windows, transient)
	}

	ref := y0.Clone()
	if transient > 0 {
		sol, err := integrators.Solve(sys, ref, 0, transient, opts)
		if err != nil {
			return 0, err
		}
		if ref, err = sol.At(sol.End()); err != nil {
			return 0, err
		}
	}

	pert := ref.Clone()
	pert[0] += lyapSep

	sum := 0.0
	for k := 0; k < windows; k++ {
		// The fields here are autonomous, so every window can restart the
		// clock at zero.
		solRef, err := integrators.Solve(sys, ref, 0, window, opts)
		if err != nil {
			return 0, err
		}
		solPert, err := integrators.Solve(sys, pert, 0, window, opts)
		if err != nil {
			return 0, err
		}
		a, err := solRef.At(window)
		if err != nil {
			return 0, err
		}
		b, err := solPert.At(window)
		if err != nil {
			return 0, err
		}

		sep := a.Dist(b)
		if sep > 0 {
			sum += math.Log(sep / lyapSep)
			for i := range b {
				b[i] = a[i] + (b[i]-a[i])*lyapSep/sep
			}
		} else {
			// Trajectories collapsed onto each other; kick again.
			b = a.Clone()
			b[0] += lyapSep
		}
		ref, pert = a, b
	}

	return sum / (float64(windows) * window), nil
}
