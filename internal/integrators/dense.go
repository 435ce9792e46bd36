package integrators

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// segment is the continuous extension of one accepted step, stored as the
// five Horner coefficients of the quartic interpolant over [start, start+h].
type segment struct {
	start, h float64
	coef     [5]dynamo.State
}

func newSegment(t, h float64, y, ynew dynamo.State, k []dynamo.State) segment {
	n := len(y)
	seg := segment{start: t, h: h}
	for j := range seg.coef {
		seg.coef[j] = make(dynamo.State, n)
	}
	for i := 0; i < n; i++ {
		ydiff := ynew[i] - y[i]
		bspl := h*k[1][i] - ydiff
		seg.coef[0][i] = y[i]
		seg.coef[1][i] = ydiff
		seg.coef[2][i] = bspl
		seg.coef[3][i] = ydiff - h*k[7][i] - bspl
		seg.coef[4][i] = h * (d1*k[1][i] + d3*k[3][i] + d4*k[4][i] + d5*k[5][i] + d6*k[6][i] + d7*k[7][i])
	}
	return seg
}

// eval interpolates the state at t, which must lie inside the segment.
func (s *segment) eval(t float64) dynamo.State {
	theta := (t - s.start) / s.h
	theta1 := 1 - theta
	out := make(dynamo.State, len(s.coef[0]))
	for i := range out {
		out[i] = s.coef[0][i] + theta*(s.coef[1][i]+theta1*(s.coef[2][i]+theta*(s.coef[3][i]+theta1*s.coef[4][i])))
	}
	return out
}

// Solution is a dense trajectory over [Start, End]. The accepted steps tile
// the span without gaps, and any time inside it can be interpolated at the
// integrator's own order without further vector field evaluations.
type Solution struct {
	t0, tf float64
	y0     dynamo.State
	segs   []segment
	stats  Stats
}

// Start returns the first time covered by the solution.
func (s *Solution) Start() float64 { return s.t0 }

// End returns the last time covered by the solution.
func (s *Solution) End() float64 { return s.tf }

// Stats returns the integration counters.
func (s *Solution) Stats() Stats { return s.stats }

// Times returns the accepted step boundaries from Start to End inclusive.
// A degenerate solution has a single boundary.
func (s *Solution) Times() []float64 {
	ts := make([]float64, len(s.segs)+1)
	ts[0] = s.t0
	for i := range s.segs {
		ts[i+1] = s.segs[i].start + s.segs[i].h
	}
	ts[len(ts)-1] = s.tf
	return ts
}

// At interpolates the state at time t. Times outside [Start, End] return
// ErrOutOfRange.
func (s *Solution) At(t float64) (dynamo.State, error) {
	if t < s.t0 || t > s.tf {
		return nil, fmt.Errorf("%w: t=%g outside [%g, %g]", dynamo.ErrOutOfRange, t, s.t0, s.tf)
	}
	if len(s.segs) == 0 {
		return s.y0.Clone(), nil
	}
	// Locate the last segment starting at or before t. Times on a step
	// boundary land at the start of the later segment, where the
	// interpolant matches the earlier one's endpoint exactly.
	i := sort.Search(len(s.segs), func(j int) bool { return s.segs[j].start > t }) - 1
	if i < 0 {
		i = 0
	}
	return s.segs[i].eval(t), nil
}

// Sample interpolates the state at every time in grid, which must be
// non-decreasing and contained in [Start, End].
func (s *Solution) Sample(grid []float64) ([]dynamo.State, error) {
	out := make([]dynamo.State, len(grid))
	for i, t := range grid {
		if i > 0 && t < grid[i-1] {
			return nil, fmt.Errorf("%w: sample grid decreases at index %d", dynamo.ErrInvalidParams, i)
		}
		y, err := s.At(t)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// SampleUniform interpolates the trajectory on n evenly spaced times from
// Start to End inclusive and returns the grid alongside the states. n must
// be positive; n == 1 samples the start point only. A degenerate solution
// collapses to its single stored point regardless of n.
func (s *Solution) SampleUniform(n int) ([]float64, []dynamo.State, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: sample count %d", dynamo.ErrInvalidParams, n)
	}
	if len(s.segs) == 0 {
		return []float64{s.t0}, []dynamo.State{s.y0.Clone()}, nil
	}
	if n == 1 {
		y, err := s.At(s.t0)
		if err != nil {
			return nil, nil, err
		}
		return []float64{s.t0}, []dynamo.State{y}, nil
	}
	grid := floats.Span(make([]float64, n), s.t0, s.tf)
	states, err := s.Sample(grid)
	if err != nil {
		return nil, nil, err
	}
	return grid, states, nil
}
