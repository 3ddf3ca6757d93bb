package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/shearlab/dustbox/internal/forces"
	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

// EpicycleDrift watches the mean Jacobi-like integral of the population
// and reports its largest relative drift from the first observation. In
// the non-FARGO sheet the integral per grain is
// 0.5*(v1^2+v2^2) - 1.5*Omega^2*x1^2 + 2*Omega*x1*v2.
type EpicycleDrift struct {
	frame   forces.Params
	initial float64
	have    bool
	worst   float64
}

func NewEpicycleDrift(frame forces.Params) *EpicycleDrift {
	return &EpicycleDrift{frame: frame}
}

func (e *EpicycleDrift) Name() string { return "epicycle_drift" }

func (e *EpicycleDrift) jacobi(gr *grain.Grain) float64 {
	om := e.frame.Omega
	v1 := gr.V1
	vaz, x1 := gr.V2, gr.X1
	if !e.frame.ThreeD {
		vaz = gr.V3
	}
	j := 0.5 * (v1*v1 + vaz*vaz)
	if !e.frame.Fargo {
		j += -1.5*om*om*x1*x1 + 2*om*x1*vaz
	}
	return j
}

func (e *EpicycleDrift) Observe(g *grid.Grid, par *grain.Array) {
	vals := make([]float64, 0, par.N())
	for i := range par.Grains {
		if par.Grains[i].Pos == grain.StatusGhost {
			continue
		}
		vals = append(vals, e.jacobi(&par.Grains[i]))
	}
	if len(vals) == 0 {
		return
	}
	mean := floats.Sum(vals) / float64(len(vals))
	if !e.have {
		e.initial = mean
		e.have = true
		return
	}
	if e.initial != 0 {
		e.worst = math.Max(e.worst, math.Abs(mean-e.initial)/math.Abs(e.initial))
	}
}

func (e *EpicycleDrift) Value() float64 { return e.worst }

func (e *EpicycleDrift) Reset() {
	e.have = false
	e.initial = 0
	e.worst = 0
}

// RadialDispersion is the rms radial grain velocity.
type RadialDispersion struct {
	last float64
}

func NewRadialDispersion() *RadialDispersion { return &RadialDispersion{} }

func (r *RadialDispersion) Name() string { return "radial_dispersion" }

func (r *RadialDispersion) Observe(g *grid.Grid, par *grain.Array) {
	sq := make([]float64, 0, par.N())
	for i := range par.Grains {
		if par.Grains[i].Pos == grain.StatusGhost {
			continue
		}
		v := par.Grains[i].V1
		sq = append(sq, v*v)
	}
	if len(sq) == 0 {
		r.last = 0
		return
	}
	r.last = math.Sqrt(floats.Sum(sq) / float64(len(sq)))
}

func (r *RadialDispersion) Value() float64 { return r.last }

func (r *RadialDispersion) Reset() { r.last = 0 }
