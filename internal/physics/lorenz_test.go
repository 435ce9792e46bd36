package physics

import (
	"math"
	"testing"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

func TestLorenzDerivative(t *testing.T) {
	l := NewLorenz()

	dx := l.Derive(dynamo.State{0.0, 1.0, 1.05}, 0)

	if math.Abs(dx[0]-10.0) > 1e-12 {
		t.Errorf("du/dt = %v, want 10", dx[0])
	}
	if math.Abs(dx[1]-(-1.0)) > 1e-12 {
		t.Errorf("dv/dt = %v, want -1", dx[1])
	}
	if math.Abs(dx[2]-(-1.05*8.0/3.0)) > 1e-12 {
		t.Errorf("dw/dt = %v, want %v", dx[2], -1.05*8.0/3.0)
	}
}

func TestLorenzEquilibria(t *testing.T) {
	l := NewLorenz()

	// Origin is a fixed point for all coefficients.
	dx := l.Derive(dynamo.State{0, 0, 0}, 0)
	if dx.Norm() > 1e-12 {
		t.Errorf("expected zero derivative at origin, got %v", dx)
	}

	// C+ = (sqrt(beta*(rho-1)), sqrt(beta*(rho-1)), rho-1).
	c := math.Sqrt(8.0 / 3.0 * 27.0)
	dx = l.Derive(dynamo.State{c, c, 27.0}, 0)
	if dx.Norm() > 1e-9 {
		t.Errorf("expected zero derivative at C+, got %v", dx)
	}
}

func TestLorenzParams(t *testing.T) {
	l := NewLorenz()

	p := l.Params()
	if p["sigma"] != 10.0 || p["rho"] != 28.0 {
		t.Errorf("unexpected default params: %v", p)
	}

	if err := l.SetParam("rho", 14.0); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if l.Params()["rho"] != 14.0 {
		t.Error("SetParam did not stick")
	}

	if err := l.SetParam("gamma", 1.0); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestModelFactory(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if m.Dim() != 3 {
			t.Errorf("%s: Dim() = %d, want 3", name, m.Dim())
		}
		if len(m.DefaultState()) != m.Dim() {
			t.Errorf("%s: default state has wrong dimension", name)
		}
	}

	if _, err := New("pendulum"); err == nil {
		t.Error("expected error for unknown model")
	}
}
