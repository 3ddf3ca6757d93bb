package forces

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

// DragModel samples the gas at grain positions and turns the relative
// velocity into a linear drag force.
type DragModel struct {
	Grid    *grid.Grid
	Species []grain.Species
	Log     *logrus.Logger

	warned bool
}

// NewDragModel wires a drag model to a grid and a species table.
func NewDragModel(g *grid.Grid, sp []grain.Species, log *logrus.Logger) *DragModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DragModel{Grid: g, Species: sp, Log: log}
}

// Drag evaluates the drag force per unit mass on a grain of species
// prop at (x, v) and returns it together with the inverse stopping
// time. A grain outside the interpolable region free-streams for this
// sub-step: both returns are zero and a warning is logged once per run.
func (d *DragModel) Drag(prop int, x, v grid.Vec) (fd grid.Vec, tsInv float64) {
	g := d.Grid
	st := g.WeightStencil(x)
	rho, u, cs, err := g.GasAt(st)
	if err != nil {
		if !d.warned {
			d.warned = true
			d.Log.Warnf("drag: grain at (%g, %g, %g) outside interpolable region on rank %d, free-streaming",
				x.X1, x.X2, x.X3, g.Rank)
		}
		return grid.Vec{}, 0
	}
	g.ShiftGasVelocity(&u)

	dv := v.Sub(u)
	ts := StoppingTime(d.Species[prop], rho, cs, dv.Norm())
	if math.IsInf(ts, 1) || ts <= 0 {
		return grid.Vec{}, 0
	}
	tsInv = 1 / ts
	return dv.Scale(-tsInv), tsInv
}
