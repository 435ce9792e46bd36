package physics

import (
	"math"
	"testing"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

func TestRosslerDerivative(t *testing.T) {
	r := NewRossler()

	dx := r.Derive(dynamo.State{1.0, 1.0, 1.0}, 0)

	if math.Abs(dx[0]-(-2.0)) > 1e-12 {
		t.Errorf("du/dt = %v, want -2", dx[0])
	}
	if math.Abs(dx[1]-1.2) > 1e-12 {
		t.Errorf("dv/dt = %v, want 1.2", dx[1])
	}
	if math.Abs(dx[2]-(-4.5)) > 1e-12 {
		t.Errorf("dw/dt = %v, want -4.5", dx[2])
	}
}

func TestRosslerParams(t *testing.T) {
	r := NewRossler()

	if err := r.SetParam("c", 4.0); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if r.Params()["c"] != 4.0 {
		t.Error("SetParam did not stick")
	}
	if err := r.SetParam("sigma", 1.0); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
