package metrics

import (
	"math"
	"testing"

	"github.com/shearlab/dustbox/internal/forces"
	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

func testArray() *grain.Array {
	a := &grain.Array{Species: []grain.Species{{Mass: 2}, {Mass: 0.5}}}
	a.Add(grain.Grain{V1: 1, V2: -2, Pos: grain.StatusLive})
	a.Add(grain.Grain{V1: 4, V3: 2, Property: 1, Pos: grain.StatusLive})
	return a
}

func TestMomentum(t *testing.T) {
	g := grid.New(4, 4, 4, 1, 1, 1)
	m := NewMomentum()
	m.Observe(g, testArray())

	// p = (2*1 + 0.5*4, 2*-2, 0.5*2) = (4, -4, 1)
	want := math.Sqrt(16 + 16 + 1)
	if math.Abs(m.Value()-want) > 1e-14 {
		t.Errorf("momentum %g, want %g", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear")
	}
}

func TestMomentumIgnoresGhosts(t *testing.T) {
	g := grid.New(4, 4, 4, 1, 1, 1)
	a := testArray()
	a.Add(grain.Grain{V1: 100, Pos: grain.StatusGhost})

	m := NewMomentum()
	m.Observe(g, a)
	want := math.Sqrt(16 + 16 + 1)
	if math.Abs(m.Value()-want) > 1e-14 {
		t.Errorf("ghost counted: %g", m.Value())
	}
}

func TestRadialDispersion(t *testing.T) {
	g := grid.New(4, 4, 4, 1, 1, 1)
	r := NewRadialDispersion()
	r.Observe(g, testArray())

	want := math.Sqrt((1 + 16) / 2.0)
	if math.Abs(r.Value()-want) > 1e-14 {
		t.Errorf("dispersion %g, want %g", r.Value(), want)
	}
}

func TestFeedbackBalanceZeroWithoutExchange(t *testing.T) {
	g := grid.New(4, 4, 4, 1, 1, 1)
	a := testArray()

	f := NewFeedbackBalance()
	f.Observe(g, a) // baseline
	f.Observe(g, a) // nothing moved, nothing deposited
	if f.Value() != 0 {
		t.Errorf("balance residual %g for a static world", f.Value())
	}
}

func TestEpicycleDriftConstantOrbit(t *testing.T) {
	g := grid.New(4, 4, 4, 1, 1, 1)
	frame := forces.Params{Omega: 1, ShearingBox: true, ThreeD: true}
	a := &grain.Array{Species: []grain.Species{{Mass: 1}}}
	a.Add(grain.Grain{X1: 0.5, V2: 0.3, Pos: grain.StatusLive})

	e := NewEpicycleDrift(frame)
	e.Observe(g, a)
	e.Observe(g, a)
	if e.Value() != 0 {
		t.Errorf("drift %g for an unchanged grain", e.Value())
	}
}
