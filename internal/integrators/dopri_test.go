package integrators_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
	"github.com/gicrisf/org-lorenz-attractor/internal/physics"
)

// expo grows exponentially and turns non-finite once the state passes a
// threshold, standing in for a model that leaves its physical regime.
type expo struct{ limit float64 }

func (e expo) Dim() int { return 1 }

func (e expo) Derive(s dynamo.State, t float64) dynamo.State {
	if s[0] > e.limit {
		return dynamo.State{math.NaN()}
	}
	return dynamo.State{s[0]}
}

// kicked has a discontinuous derivative no step size can resolve to the
// requested tolerance.
type kicked struct{}

func (kicked) Dim() int { return 1 }

func (kicked) Derive(s dynamo.State, t float64) dynamo.State {
	if t < 5 {
		return dynamo.State{0}
	}
	return dynamo.State{1e12}
}

var _ = Describe("Solve", func() {
	var lz *physics.Lorenz

	BeforeEach(func() {
		lz = physics.NewLorenz()
	})

	It("tiles the span with strictly increasing accepted steps", func() {
		sol, err := integrators.Solve(lz, lz.DefaultState(), 0, 5, integrators.Options{})
		Expect(err).NotTo(HaveOccurred())

		ts := sol.Times()
		Expect(ts[0]).To(Equal(0.0))
		Expect(ts[len(ts)-1]).To(Equal(5.0))
		for i := 1; i < len(ts); i++ {
			Expect(ts[i]).To(BeNumerically(">", ts[i-1]))
		}
		Expect(sol.Stats().Steps).To(Equal(len(ts) - 1))
		Expect(sol.Stats().LastStep).To(BeNumerically(">", 0))
	})

	It("terminates across tolerance and parameter ranges", func() {
		for _, rho := range []float64{13.9, 24.0, 28.0, 45.0, 99.96} {
			for _, rtol := range []float64{1e-3, 1e-6, 1e-9} {
				Expect(lz.SetParam("rho", rho)).To(Succeed())
				sol, err := integrators.Solve(lz, lz.DefaultState(), 0, 2, integrators.Options{RTol: rtol, ATol: rtol * 1e-3})
				Expect(err).NotTo(HaveOccurred())
				Expect(sol.End()).To(Equal(2.0))
			}
		}
	})

	It("reproduces the same trajectory bit for bit", func() {
		a, err := integrators.Solve(lz, lz.DefaultState(), 0, 20, integrators.Options{})
		Expect(err).NotTo(HaveOccurred())
		b, err := integrators.Solve(physics.NewLorenz(), lz.DefaultState(), 0, 20, integrators.Options{})
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Stats()).To(Equal(b.Stats()))
		Expect(a.Times()).To(Equal(b.Times()))

		_, sa, err := a.SampleUniform(500)
		Expect(err).NotTo(HaveOccurred())
		_, sb, err := b.SampleUniform(500)
		Expect(err).NotTo(HaveOccurred())
		Expect(sa).To(Equal(sb))
	})

	It("tracks a tight-tolerance reference within the requested accuracy", func() {
		ref, err := integrators.Solve(lz, lz.DefaultState(), 0, 1, integrators.Options{RTol: 1e-10, ATol: 1e-12})
		Expect(err).NotTo(HaveOccurred())
		sol, err := integrators.Solve(lz, lz.DefaultState(), 0, 1, integrators.Options{RTol: 1e-6, ATol: 1e-9})
		Expect(err).NotTo(HaveOccurred())

		for _, t := range []float64{0.1, 0.25, 0.5, 0.75, 1.0} {
			want, err := ref.At(t)
			Expect(err).NotTo(HaveOccurred())
			got, err := sol.At(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Dist(want)).To(BeNumerically("<", 1e-2))
		}
	})

	It("interpolates continuously across step boundaries", func() {
		sol, err := integrators.Solve(lz, lz.DefaultState(), 0, 5, integrators.Options{})
		Expect(err).NotTo(HaveOccurred())

		ts := sol.Times()
		Expect(len(ts)).To(BeNumerically(">", 2))
		tb := ts[len(ts)/2]
		at, err := sol.At(tb)
		Expect(err).NotTo(HaveOccurred())
		before, err := sol.At(tb - 1e-9)
		Expect(err).NotTo(HaveOccurred())
		after, err := sol.At(tb + 1e-9)
		Expect(err).NotTo(HaveOccurred())
		Expect(at.Dist(before)).To(BeNumerically("<", 1e-6))
		Expect(at.Dist(after)).To(BeNumerically("<", 1e-6))
	})

	It("honors the step size cap", func() {
		sol, err := integrators.Solve(lz, lz.DefaultState(), 0, 2, integrators.Options{MaxStep: 0.01})
		Expect(err).NotTo(HaveOccurred())

		ts := sol.Times()
		for i := 1; i < len(ts); i++ {
			Expect(ts[i] - ts[i-1]).To(BeNumerically("<=", 0.01+1e-12))
		}
	})

	It("spends more steps when the tolerance tightens", func() {
		loose, err := integrators.Solve(lz, lz.DefaultState(), 0, 10, integrators.Options{RTol: 1e-3})
		Expect(err).NotTo(HaveOccurred())
		tight, err := integrators.Solve(lz, lz.DefaultState(), 0, 10, integrators.Options{RTol: 1e-8, ATol: 1e-10})
		Expect(err).NotTo(HaveOccurred())
		Expect(tight.Stats().Steps).To(BeNumerically(">", loose.Stats().Steps))
	})

	It("accounts for every vector field evaluation", func() {
		sol, err := integrators.Solve(lz, lz.DefaultState(), 0, 5, integrators.Options{InitialStep: 1e-3})
		Expect(err).NotTo(HaveOccurred())

		st := sol.Stats()
		Expect(st.Evals).To(Equal(1 + 6*(st.Steps+st.Rejected)))
	})

	It("integrates the other bundled models", func() {
		ro := physics.NewRossler()
		sol, err := integrators.Solve(ro, ro.DefaultState(), 0, 10, integrators.Options{})
		Expect(err).NotTo(HaveOccurred())
		_, states, err := sol.SampleUniform(100)
		Expect(err).NotTo(HaveOccurred())
		for _, s := range states {
			Expect(s.IsValid()).To(BeTrue())
		}
	})

	Describe("degenerate spans", func() {
		It("returns a single-point solution without touching the field", func() {
			sol, err := integrators.Solve(lz, lz.DefaultState(), 3, 3, integrators.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Stats().Evals).To(BeZero())

			y, err := sol.At(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(y).To(Equal(lz.DefaultState()))

			_, err = sol.At(3.0000001)
			Expect(err).To(MatchError(dynamo.ErrOutOfRange))

			ts, states, err := sol.SampleUniform(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(ts).To(Equal([]float64{3}))
			Expect(states).To(HaveLen(1))
		})
	})

	Describe("invalid inputs", func() {
		It("rejects a backwards span", func() {
			_, err := integrators.Solve(lz, lz.DefaultState(), 1, 0, integrators.Options{})
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects a non-finite initial state", func() {
			_, err := integrators.Solve(lz, dynamo.State{0, math.NaN(), 1}, 0, 1, integrators.Options{})
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects a dimension mismatch", func() {
			_, err := integrators.Solve(lz, dynamo.State{0, 1}, 0, 1, integrators.Options{})
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects non-finite spans and negative options", func() {
			_, err := integrators.Solve(lz, lz.DefaultState(), 0, math.Inf(1), integrators.Options{})
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))

			_, err = integrators.Solve(lz, lz.DefaultState(), 0, 1, integrators.Options{RTol: -1})
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})
	})

	Describe("failure reporting", func() {
		It("exposes the last valid point when the field turns non-finite", func() {
			_, err := integrators.Solve(expo{limit: 1e3}, dynamo.State{1}, 0, 10, integrators.Options{})
			Expect(err).To(MatchError(dynamo.ErrInvalidState))

			var se *dynamo.SolveError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.State.IsValid()).To(BeTrue())
			// Blowup past 1e3 happens near t = ln(1e3); the last good
			// point sits at most a few steps before it.
			Expect(se.Time).To(BeNumerically("<", math.Log(1e3)+0.01))
			Expect(se.Time).To(BeNumerically(">", 3.0))
		})

		It("stops at the step floor on an unresolvable discontinuity", func() {
			_, err := integrators.Solve(kicked{}, dynamo.State{0}, 0, 10, integrators.Options{})
			Expect(err).To(MatchError(dynamo.ErrStepTooSmall))

			var se *dynamo.SolveError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Time).To(BeNumerically("~", 5, 0.1))
		})

		It("honors the step budget", func() {
			_, err := integrators.Solve(lz, lz.DefaultState(), 0, 100, integrators.Options{MaxSteps: 5})
			Expect(err).To(MatchError(dynamo.ErrMaxSteps))
		})
	})
})

var _ = Describe("Solution sampling", func() {
	var sol *integrators.Solution

	BeforeEach(func() {
		lz := physics.NewLorenz()
		var err error
		sol, err = integrators.Solve(lz, lz.DefaultState(), 0, 100, integrators.Options{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("covers the span with an inclusive uniform grid", func() {
		ts, states, err := sol.SampleUniform(10000)
		Expect(err).NotTo(HaveOccurred())
		Expect(ts).To(HaveLen(10000))
		Expect(states).To(HaveLen(10000))
		Expect(ts[0]).To(Equal(0.0))
		Expect(ts[len(ts)-1]).To(Equal(100.0))

		dt := 100.0 / 9999
		for i := 1; i < len(ts); i++ {
			Expect(ts[i] - ts[i-1]).To(BeNumerically("~", dt, 1e-9))
		}
	})

	It("stays on the attractor for the classic run", func() {
		_, states, err := sol.SampleUniform(10000)
		Expect(err).NotTo(HaveOccurred())
		Expect(states[0]).To(Equal(dynamo.State{0, 1, 1.05}))
		for i, s := range states {
			Expect(s.IsValid()).To(BeTrue())
			Expect(s.Norm()).To(BeNumerically("<", 200), "sample %d", i)
			if i > 0 {
				Expect(s).NotTo(Equal(states[i-1]))
			}
		}
	})

	It("never revisits a state on the classic run", func() {
		_, states, err := sol.SampleUniform(2500)
		Expect(err).NotTo(HaveOccurred())
		d, err := analysis.MinReturnDistance(states, 25)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeNumerically(">", 1e-3))
	})

	It("resamples the same solution identically", func() {
		ts1, s1, err := sol.SampleUniform(2000)
		Expect(err).NotTo(HaveOccurred())
		ts2, s2, err := sol.SampleUniform(2000)
		Expect(err).NotTo(HaveOccurred())
		Expect(ts1).To(Equal(ts2))
		Expect(s1).To(Equal(s2))
	})

	It("samples the start point when a single sample is requested", func() {
		ts, states, err := sol.SampleUniform(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(ts).To(Equal([]float64{0}))
		Expect(states[0]).To(Equal(physics.NewLorenz().DefaultState()))
	})

	It("rejects non-positive sample counts", func() {
		_, _, err := sol.SampleUniform(0)
		Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		_, _, err = sol.SampleUniform(-3)
		Expect(err).To(MatchError(dynamo.ErrInvalidParams))
	})

	It("evaluates caller grids and rejects bad ones", func() {
		states, err := sol.Sample([]float64{0, 1, 1, 2.5, 100})
		Expect(err).NotTo(HaveOccurred())
		Expect(states).To(HaveLen(5))
		Expect(states[1]).To(Equal(states[2]))

		_, err = sol.Sample([]float64{0, 2, 1})
		Expect(err).To(MatchError(dynamo.ErrInvalidParams))

		_, err = sol.Sample([]float64{0, 101})
		Expect(err).To(MatchError(dynamo.ErrOutOfRange))
	})
})
