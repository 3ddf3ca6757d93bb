package integrate

import (
	"math"

	"github.com/shearlab/dustbox/internal/forces"
	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

// FeedbackPredictor estimates the drag momentum exchange for the gas
// predictor sub-step and deposits it onto the mesh. The stopping time
// is clamped to the step here: a grain stiffer than dt would otherwise
// hand the gas an impulse the explicit gas update cannot absorb. The
// corrector pass imposes no clamp because the grain update itself
// treats the stiffness implicitly.
func (s *Stepper) FeedbackPredictor(par *grain.Array) {
	g := s.Grid
	g.ClearFeedback()
	dt := g.Dt
	volInv := 1 / g.CellVol()

	for i := range par.Grains {
		gr := &par.Grains[i]
		if gr.Pos == grain.StatusGhost {
			continue
		}
		x := grid.Vec{X1: gr.X1, X2: gr.X2, X3: gr.X3}
		st := g.WeightStencil(x)
		rho, u, cs, err := g.GasAt(st)
		if err != nil {
			continue
		}
		g.ShiftGasVelocity(&u)

		dv := u.Sub(grid.Vec{X1: gr.V1, X2: gr.V2, X3: gr.V3})
		ts := forces.StoppingTime(par.Species[gr.Property], rho, cs, dv.Norm())
		if math.IsInf(ts, 1) {
			continue
		}
		if ts < dt {
			ts = dt
		}
		m := par.Species[gr.Property].Mass
		fb := dv.Scale(m * volInv * dt / (2 * ts))
		g.DistributeFeedback(st, fb)
	}
}

// depositCorrector adds one grain's drag impulse for the full step. The
// non-drag force at the midpoint state is subtracted from the total
// velocity change so only the drag part is exchanged, signed as the
// momentum the gas receives from the grain.
func (s *Stepper) depositCorrector(m float64, x, xp, v, vn, dv grid.Vec) {
	g := s.Grid
	dt := g.Dt

	xm := x.Add(xp).Scale(0.5)
	vm := v.Add(vn).Scale(0.5)
	f := s.Frame.Force(xm, vm)

	fb := grid.Vec{
		X1: -(dv.X1 - dt*f.X1),
		X2: -(dv.X2 - dt*f.X2),
		X3: -(dv.X3 - dt*f.X3),
	}.Scale(m / g.CellVol())

	st := g.WeightStencil(xm)
	g.DistributeFeedback(st, fb)
	if s.Frame.ShearingBox && s.Frame.ThreeD && !s.Frame.Fargo {
		g.DistributeFeedbackShear(st, fb, s.shearCells())
	}
}
