package integrate

import "github.com/shearlab/dustbox/internal/grid"

// stepExplicit is the classic predictor-corrector: drift half a step,
// kick half a step, re-evaluate the total force at the predicted point,
// and take the full velocity update from there. Second order, but the
// drag term is handled explicitly, so it requires dt below the stopping
// time.
func (s *Stepper) stepExplicit(x, v grid.Vec, prop int) (xp, dv grid.Vec, err error) {
	g, p := s.Grid, s.Frame
	dt := g.Dt
	act := g.Active()

	xp = x
	if act[0] {
		xp.X1 = x.X1 + 0.5*dt*v.X1
	}
	if act[1] {
		xp.X2 = x.X2 + 0.5*dt*v.X2
	}
	if act[2] {
		xp.X3 = x.X3 + 0.5*dt*v.X3
	}
	if p.ShearingBox && p.ThreeD && !p.Fargo {
		// absorb the bulk shear advection at second order
		xp.X2 -= 0.1875 * v.X1 * dt * dt
	}

	fd, _ := s.Drag.Drag(prop, x, v)
	f0 := fd.Add(p.Force(x, v))
	vh := v.Add(f0.Scale(0.5 * dt))

	fd1, _ := s.Drag.Drag(prop, xp, vh)
	f1 := fd1.Add(p.Force(xp, vh))

	return xp, f1.Scale(dt), nil
}
