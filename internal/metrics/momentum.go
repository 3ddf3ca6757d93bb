// Package metrics holds the per-step diagnostics the driver can attach
// to a run. Each metric observes the world after a step and reduces to
// a single number.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

// grainMomentum sums m*v over the live population.
func grainMomentum(par *grain.Array) grid.Vec {
	n := par.N()
	p1 := make([]float64, 0, n)
	p2 := make([]float64, 0, n)
	p3 := make([]float64, 0, n)
	for i := range par.Grains {
		gr := &par.Grains[i]
		if gr.Pos == grain.StatusGhost {
			continue
		}
		m := par.Species[gr.Property].Mass
		p1 = append(p1, m*gr.V1)
		p2 = append(p2, m*gr.V2)
		p3 = append(p3, m*gr.V3)
	}
	return grid.Vec{X1: floats.Sum(p1), X2: floats.Sum(p2), X3: floats.Sum(p3)}
}

// Momentum reports the magnitude of the total grain momentum at the
// last observation.
type Momentum struct {
	last grid.Vec
}

func NewMomentum() *Momentum { return &Momentum{} }

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Observe(g *grid.Grid, par *grain.Array) {
	m.last = grainMomentum(par)
}

func (m *Momentum) Value() float64 { return m.last.Norm() }

func (m *Momentum) Reset() { m.last = grid.Vec{} }

// FeedbackBalance tracks the worst per-step violation of momentum
// conservation between the grains and the feedback buffer: the change
// in grain momentum plus the momentum handed to the gas should vanish.
// Only meaningful for runs without non-drag forces.
type FeedbackBalance struct {
	havePrev bool
	prev     grid.Vec
	worst    float64
}

func NewFeedbackBalance() *FeedbackBalance { return &FeedbackBalance{} }

func (f *FeedbackBalance) Name() string { return "feedback_balance" }

func (f *FeedbackBalance) Observe(g *grid.Grid, par *grain.Array) {
	cur := grainMomentum(par)
	if f.havePrev {
		dep := g.FeedbackMomentum()
		r := cur.Sub(f.prev).Add(dep).Norm()
		f.worst = math.Max(f.worst, r)
	}
	f.prev = cur
	f.havePrev = true
}

func (f *FeedbackBalance) Value() float64 { return f.worst }

func (f *FeedbackBalance) Reset() {
	f.havePrev = false
	f.prev = grid.Vec{}
	f.worst = 0
}
