package integrators

import (
	"fmt"
	"math"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// Dormand-Prince 5(4) coefficients.
var (
	a2, a3, a4, a5 = 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0

	b21                = 1.0 / 5.0
	b31, b32           = 3.0 / 40.0, 9.0 / 40.0
	b41, b42, b43      = 44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0
	b51, b52, b53, b54 = 19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0

	b61, b62, b63, b64, b65 = 9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0

	// 5th-order solution weights (the b7 row of the tableau).
	c1, c3, c4, c5, c6 = 35.0 / 384.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0

	// Difference between the 5th- and embedded 4th-order weights.
	dc1, dc3, dc4, dc5, dc6, dc7 = 71.0 / 57600.0, -71.0 / 16695.0, 71.0 / 1920.0, -17253.0 / 339200.0, 22.0 / 525.0, -1.0 / 40.0

	// Coefficients of the quartic interpolant (Hairer & Wanner, CONTD5).
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// Defaults and step-controller bounds.
const (
	DefaultRTol = 1e-3
	DefaultATol = 1e-6

	safety   = 0.9
	minScale = 0.2
	maxScale = 5.0
)

// Options tunes the adaptive loop. The zero value selects the documented
// defaults, so callers normally pass Options{}.
type Options struct {
	// RTol and ATol are the relative and absolute error tolerances.
	// Zero selects DefaultRTol and DefaultATol.
	RTol float64
	ATol float64

	// InitialStep is the first trial step size. Zero asks the solver to
	// estimate one from the local derivative scale.
	InitialStep float64

	// MaxStep caps the step size. Zero means no cap beyond the span.
	MaxStep float64

	// MaxSteps bounds the number of step attempts, accepted or rejected,
	// so a caller can put a hard limit on run time. Zero disables the
	// guard.
	MaxSteps int
}

// Stats reports what the adaptive loop did during a solve.
type Stats struct {
	Steps    int     // accepted steps
	Rejected int     // rejected step attempts
	Evals    int     // vector field evaluations
	LastStep float64 // size of the last accepted step
}

// Solve integrates sys from y0 over [t0, tmax] with the adaptive
// Dormand-Prince 5(4) method and returns the dense trajectory. A non-finite
// result mid-run, an underflowing step size or an exhausted step budget
// abort the run with a SolveError carrying the last valid point. The
// degenerate span t0 == tmax yields a single-point solution without
// evaluating the vector field.
func Solve(sys dynamo.System, y0 dynamo.State, t0, tmax float64, opts Options) (*Solution, error) {
	n := sys.Dim()
	if len(y0) != n || n == 0 {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d", dynamo.ErrInvalidParams, len(y0), n)
	}
	if !y0.IsValid() {
		return nil, fmt.Errorf("%w: non-finite initial state", dynamo.ErrInvalidParams)
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(tmax) || math.IsInf(tmax, 0) {
		return nil, fmt.Errorf("%w: non-finite time span [%g, %g]", dynamo.ErrInvalidParams, t0, tmax)
	}
	if t0 > tmax {
		return nil, fmt.Errorf("%w: time span [%g, %g] runs backwards", dynamo.ErrInvalidParams, t0, tmax)
	}

	rtol, atol := opts.RTol, opts.ATol
	if rtol == 0 {
		rtol = DefaultRTol
	}
	if atol == 0 {
		atol = DefaultATol
	}
	if rtol < 0 || atol < 0 || math.IsNaN(rtol) || math.IsNaN(atol) {
		return nil, fmt.Errorf("%w: tolerances rtol=%g atol=%g", dynamo.ErrInvalidParams, rtol, atol)
	}
	if opts.InitialStep < 0 || opts.MaxStep < 0 || opts.MaxSteps < 0 {
		return nil, fmt.Errorf("%w: negative step option", dynamo.ErrInvalidParams)
	}

	sol := &Solution{t0: t0, tf: tmax, y0: y0.Clone()}
	if t0 == tmax {
		return sol, nil
	}

	span := tmax - t0
	hmax := span
	if opts.MaxStep > 0 && opts.MaxStep < hmax {
		hmax = opts.MaxStep
	}
	// Steps are not allowed to shrink below a small multiple of the span's
	// epsilon; reaching the floor means the tolerance cannot be met.
	hFloor := 16 * ulp * span

	t := t0
	y := y0.Clone()
	f := sys.Derive(y, t)
	sol.stats.Evals++
	if !f.IsValid() {
		// The very first evaluation failing points at the problem setup,
		// not at the integration.
		return nil, fmt.Errorf("%w: non-finite derivative at t0=%g", dynamo.ErrInvalidParams, t0)
	}

	h := opts.InitialStep
	if h == 0 {
		h = initialStep(sys, y, t, f, atol, rtol, &sol.stats)
	}
	if h > hmax {
		h = hmax
	}

	k := make([]dynamo.State, 8) // k[1..7], k[0] unused
	for i := 1; i <= 7; i++ {
		k[i] = make(dynamo.State, n)
	}
	ytmp := make(dynamo.State, n)
	ynew := make(dynamo.State, n)

	rejected := false
	attempts := 0
	for t < tmax {
		if opts.MaxSteps > 0 && attempts >= opts.MaxSteps {
			return nil, solveFail(t, y, dynamo.ErrMaxSteps)
		}
		attempts++

		last := t+h >= tmax
		if last {
			h = tmax - t
		}
		if !last && (h < hFloor || t+h == t) {
			return nil, solveFail(t, y, dynamo.ErrStepTooSmall)
		}

		copy(k[1], f)

		for i := 0; i < n; i++ {
			ytmp[i] = y[i] + h*b21*k[1][i]
		}
		if err := stage(sys, ytmp, t+a2*h, k[2], sol, t, y); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			ytmp[i] = y[i] + h*(b31*k[1][i]+b32*k[2][i])
		}
		if err := stage(sys, ytmp, t+a3*h, k[3], sol, t, y); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			ytmp[i] = y[i] + h*(b41*k[1][i]+b42*k[2][i]+b43*k[3][i])
		}
		if err := stage(sys, ytmp, t+a4*h, k[4], sol, t, y); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			ytmp[i] = y[i] + h*(b51*k[1][i]+b52*k[2][i]+b53*k[3][i]+b54*k[4][i])
		}
		if err := stage(sys, ytmp, t+a5*h, k[5], sol, t, y); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			ytmp[i] = y[i] + h*(b61*k[1][i]+b62*k[2][i]+b63*k[3][i]+b64*k[4][i]+b65*k[5][i])
		}
		if err := stage(sys, ytmp, t+h, k[6], sol, t, y); err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			ynew[i] = y[i] + h*(c1*k[1][i]+c3*k[3][i]+c4*k[4][i]+c5*k[5][i]+c6*k[6][i])
		}
		// FSAL: the derivative at the new point doubles as the error
		// estimator's seventh stage and as k1 of the next step.
		if err := stage(sys, ynew, t+h, k[7], sol, t, y); err != nil {
			return nil, err
		}

		errNorm := 0.0
		for i := 0; i < n; i++ {
			e := h * (dc1*k[1][i] + dc3*k[3][i] + dc4*k[4][i] + dc5*k[5][i] + dc6*k[6][i] + dc7*k[7][i])
			sc := atol + rtol*math.Max(math.Abs(y[i]), math.Abs(ynew[i]))
			errNorm += (e / sc) * (e / sc)
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if errNorm > 1 {
			sol.stats.Rejected++
			rejected = true
			h *= clampScale(safety * math.Pow(errNorm, -0.2))
			continue
		}

		sol.segs = append(sol.segs, newSegment(t, h, y, ynew, k))
		sol.stats.Steps++
		sol.stats.LastStep = h
		if last {
			t = tmax
		} else {
			t += h
		}
		copy(y, ynew)
		copy(f, k[7])

		factor := maxScale
		if errNorm > 0 {
			factor = clampScale(safety * math.Pow(errNorm, -0.2))
		}
		if rejected && factor > 1 {
			// No growth immediately after a rejection.
			factor = 1
		}
		rejected = false
		h *= factor
		if h > hmax {
			h = hmax
		}
	}

	return sol, nil
}

// ulp is the distance from 1.0 to the next float64.
var ulp = math.Nextafter(1, 2) - 1

func clampScale(s float64) float64 {
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

// stage evaluates the vector field into dst and aborts the solve when the
// result leaves the finite range.
func stage(sys dynamo.System, ys dynamo.State, ts float64, dst dynamo.State, sol *Solution, t float64, y dynamo.State) error {
	d := sys.Derive(ys, ts)
	sol.stats.Evals++
	if !d.IsValid() {
		return solveFail(t, y, dynamo.ErrInvalidState)
	}
	copy(dst, d)
	return nil
}

func solveFail(t float64, y dynamo.State, err error) error {
	return &dynamo.SolveError{Time: t, State: y.Clone(), Err: err}
}

// initialStep estimates a first trial step from the derivative scale at t0,
// following Hairer, Norsett & Wanner (II.4): a cheap Euler probe bounds the
// second derivative, and the step is sized so the first attempt is unlikely
// to be rejected.
func initialStep(sys dynamo.System, y dynamo.State, t float64, f dynamo.State, atol, rtol float64, stats *Stats) float64 {
	n := len(y)
	var n0, n1 float64
	for i := 0; i < n; i++ {
		sc := atol + rtol*math.Abs(y[i])
		n0 += (y[i] / sc) * (y[i] / sc)
		n1 += (f[i] / sc) * (f[i] / sc)
	}
	n0 = math.Sqrt(n0 / float64(n))
	n1 = math.Sqrt(n1 / float64(n))

	h0 := 1e-6
	if n0 >= 1e-5 && n1 >= 1e-5 {
		h0 = 0.01 * n0 / n1
	}

	probe := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		probe[i] = y[i] + h0*f[i]
	}
	f1 := sys.Derive(probe, t+h0)
	stats.Evals++

	h1 := math.Max(1e-6, h0*1e-3)
	if f1.IsValid() {
		var n2 float64
		for i := 0; i < n; i++ {
			sc := atol + rtol*math.Abs(y[i])
			n2 += ((f1[i] - f[i]) / sc) * ((f1[i] - f[i]) / sc)
		}
		n2 = math.Sqrt(n2/float64(n)) / h0
		if dm := math.Max(n1, n2); dm > 1e-15 {
			h1 = math.Pow(0.01/dm, 0.2)
		}
	}
	return math.Min(100*h0, h1)
}
