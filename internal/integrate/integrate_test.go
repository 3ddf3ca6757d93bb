package integrate

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/shearlab/dustbox/internal/forces"
	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// uniformGrid fills a dx-spaced mesh with gas at rest.
func uniformGrid(n1, n2, n3 int, dx, dt float64) *grid.Grid {
	g := grid.New(n1, n2, n3, dx, dx, dx)
	g.Dt = dt
	for i := range g.Rho.Elements {
		g.Rho.Elements[i] = 1
		g.Cs.Elements[i] = 1
	}
	return g
}

// centre shifts the coordinate origin to the middle of the box, the
// layout a shearing patch uses.
func centre(g *grid.Grid) {
	g.X1Min = -0.5 * float64(g.N1) * g.Dx1
	g.X2Min = -0.5 * float64(g.N2) * g.Dx2
	g.X3Min = -0.5 * float64(g.N3) * g.Dx3
	g.X1LPar, g.X1UPar = g.X1Min, -g.X1Min
	g.X2LPar, g.X2UPar = g.X2Min, -g.X2Min
	g.X3LPar, g.X3UPar = g.X3Min, -g.X3Min
}

func fixedSpecies(tstop float64) []grain.Species {
	return []grain.Species{{Mass: 1e-3, Law: grain.LawFixed, TStop: tstop}}
}

func dragFreeSpecies() []grain.Species {
	return fixedSpecies(math.Inf(1))
}

func single(par *grain.Array, g grain.Grain) {
	g.Pos = grain.StatusLive
	par.Add(g)
}

func TestExplicitDragDecay(t *testing.T) {
	g := uniformGrid(8, 1, 1, 1, 0.01)
	par := &grain.Array{Species: fixedSpecies(1)}
	single(par, grain.Grain{X1: 4.5, V1: 1})
	s := NewStepper(g, forces.Params{}, par.Species, Explicit, false, quietLog())

	x1Prev := 4.5
	for i := 0; i < 100; i++ {
		if err := s.Advance(par); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		gr := &par.Grains[0]
		if gr.X1 <= x1Prev {
			t.Fatalf("step %d: x1 not monotonically increasing (%g -> %g)", i, x1Prev, gr.X1)
		}
		x1Prev = gr.X1
	}

	gr := &par.Grains[0]
	want := math.Exp(-1)
	if math.Abs(gr.V1-want) > 5e-3 {
		t.Errorf("v1 after 100 steps = %.6f, want %.6f", gr.V1, want)
	}
	// total drift is t_s*v0*(1-1/e) = 0.632
	if gr.X1 >= 5.2 {
		t.Errorf("x1 drifted too far: %g", gr.X1)
	}
}

func TestOneStepDecayAccuracy(t *testing.T) {
	// against the analytic v0*exp(-dt/ts) for one step at dt/ts = 0.05
	want := math.Exp(-0.05)
	for _, tc := range []struct {
		name   string
		scheme Scheme
	}{
		{"explicit", Explicit},
		{"semi-implicit", SemiImplicit},
		{"fully-implicit", FullyImplicit},
	} {
		g := uniformGrid(8, 1, 1, 1, 0.05)
		par := &grain.Array{Species: fixedSpecies(1)}
		single(par, grain.Grain{X1: 4.5, V1: 1})
		s := NewStepper(g, forces.Params{}, par.Species, tc.scheme, false, quietLog())

		if err := s.Advance(par); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := par.Grains[0].V1; math.Abs(got-want) > 1e-4 {
			t.Errorf("%s: one-step v1=%.8f, want %.8f", tc.name, got, want)
		}
	}
}

func TestStiffDragFullyImplicit(t *testing.T) {
	g := uniformGrid(8, 1, 1, 1, 0.1)
	par := &grain.Array{Species: fixedSpecies(1e-4)}
	single(par, grain.Grain{X1: 4.5, V1: 1})
	s := NewStepper(g, forces.Params{}, par.Species, FullyImplicit, false, quietLog())

	if err := s.Advance(par); err != nil {
		t.Fatal(err)
	}
	gr := &par.Grains[0]
	if math.IsNaN(gr.V1) || math.IsInf(gr.V1, 0) {
		t.Fatalf("stiff step produced %g", gr.V1)
	}
	if math.Abs(gr.V1) > 1e-3 {
		t.Errorf("stiff grain did not relax to the gas: v1=%g", gr.V1)
	}
}

func TestStiffDragSemiImplicitBounded(t *testing.T) {
	// the midpoint inversion is A-stable, not L-stable: one stiff step
	// may ring, but it can never grow
	g := uniformGrid(8, 1, 1, 1, 0.1)
	par := &grain.Array{Species: fixedSpecies(1e-4)}
	single(par, grain.Grain{X1: 4.5, V1: 1})
	s := NewStepper(g, forces.Params{}, par.Species, SemiImplicit, false, quietLog())

	for i := 0; i < 10; i++ {
		if err := s.Advance(par); err != nil {
			t.Fatal(err)
		}
		v1 := par.Grains[0].V1
		if math.IsNaN(v1) || math.IsInf(v1, 0) {
			t.Fatalf("step %d: v1=%g", i, v1)
		}
		if math.Abs(v1) > 1 {
			t.Fatalf("step %d: stiff drag amplified the velocity: %g", i, v1)
		}
	}
}

func TestCollapsedAxesFrozen(t *testing.T) {
	for _, tc := range []struct {
		name   string
		scheme Scheme
	}{
		{"explicit", Explicit},
		{"semi-implicit", SemiImplicit},
		{"fully-implicit", FullyImplicit},
	} {
		g := uniformGrid(8, 1, 1, 1, 0.01)
		par := &grain.Array{Species: fixedSpecies(1)}
		single(par, grain.Grain{X1: 4.5, X2: 0.25, X3: -0.75, V1: 1, V2: 0.3, V3: -0.2})
		s := NewStepper(g, forces.Params{}, par.Species, tc.scheme, false, quietLog())

		for i := 0; i < 5; i++ {
			if err := s.Advance(par); err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
		}
		gr := &par.Grains[0]
		if gr.X2 != 0.25 || gr.X3 != -0.75 {
			t.Errorf("%s: collapsed positions moved: x2=%g x3=%g", tc.name, gr.X2, gr.X3)
		}
		if gr.V2 != 0.3 || gr.V3 != -0.2 {
			t.Errorf("%s: collapsed velocities changed: v2=%g v3=%g", tc.name, gr.V2, gr.V3)
		}
	}
}

func TestBoundaryCrossingTagged(t *testing.T) {
	g := uniformGrid(8, 8, 1, 1, 0.01)
	par := &grain.Array{Species: fixedSpecies(1)}
	x0 := g.X1UPar - 1e-3
	single(par, grain.Grain{X1: x0, X2: 4.5, V1: 10 * (g.X1UPar - x0) / g.Dt})
	s := NewStepper(g, forces.Params{}, par.Species, Explicit, false, quietLog())

	if err := s.Advance(par); err != nil {
		t.Fatal(err)
	}
	gr := &par.Grains[0]
	if gr.Pos != grain.StatusCrossed {
		t.Errorf("expected pos=%d after crossing, got %d", grain.StatusCrossed, gr.Pos)
	}
	if gr.X1 < g.X1UPar {
		t.Errorf("grain tagged but still inside: x1=%g upar=%g", gr.X1, g.X1UPar)
	}
}

func TestFargoAzimuthalExemption(t *testing.T) {
	frame := forces.Params{Omega: 1, ShearingBox: true, Fargo: true, ThreeD: true}

	g := uniformGrid(8, 8, 8, 1, 0.01)
	par := &grain.Array{Species: dragFreeSpecies()}
	single(par, grain.Grain{X1: 4.5, X2: 7.95, X3: 4.5, V2: 20})
	s := NewStepper(g, frame, par.Species, SemiImplicit, false, quietLog())

	if err := s.Advance(par); err != nil {
		t.Fatal(err)
	}
	gr := &par.Grains[0]
	if gr.X2 < g.X2UPar {
		t.Fatalf("test setup: grain did not cross azimuthally, x2=%g", gr.X2)
	}
	if gr.Pos == grain.StatusCrossed {
		t.Error("azimuthal crossing must not be tagged in FARGO mode")
	}
	if gr.Shift == 0 {
		t.Error("FARGO step should record an orbital shift")
	}
}

func TestNonFargoAzimuthalCrossingTagged(t *testing.T) {
	frame := forces.Params{Omega: 1, ShearingBox: true, ThreeD: true}

	g := uniformGrid(8, 8, 8, 1, 0.01)
	par := &grain.Array{Species: dragFreeSpecies()}
	single(par, grain.Grain{X1: 4.5, X2: 7.95, X3: 4.5, V2: 20})
	s := NewStepper(g, frame, par.Species, SemiImplicit, false, quietLog())

	if err := s.Advance(par); err != nil {
		t.Fatal(err)
	}
	gr := &par.Grains[0]
	if gr.Pos != grain.StatusCrossed {
		t.Errorf("azimuthal crossing without FARGO must be tagged, pos=%d", gr.Pos)
	}
}

func TestGhostsPurgedBeforeIntegration(t *testing.T) {
	g := uniformGrid(8, 1, 1, 1, 0.01)
	par := &grain.Array{Species: fixedSpecies(1)}
	single(par, grain.Grain{X1: 4.5, V1: 1})
	par.Add(grain.Grain{X1: 2.5, Pos: grain.StatusGhost})
	s := NewStepper(g, forces.Params{}, par.Species, SemiImplicit, false, quietLog())

	if err := s.Advance(par); err != nil {
		t.Fatal(err)
	}
	if par.N() != 1 {
		t.Errorf("ghost survived the step: n=%d", par.N())
	}
	if par.Species[0].Num != 1 {
		t.Errorf("species counter %d after purge", par.Species[0].Num)
	}
}

func TestParseScheme(t *testing.T) {
	for in, want := range map[string]Scheme{
		"explicit": Explicit,
		"semi":     SemiImplicit,
		"full":     FullyImplicit,
		"implicit": FullyImplicit,
	} {
		got, err := ParseScheme(in)
		if err != nil || got != want {
			t.Errorf("ParseScheme(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseScheme("rk4"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
