package integrate

import "github.com/shearlab/dustbox/internal/grid"

// stepSemiImplicit evaluates the total force once, at the midpoint
// position with the current velocity, and inverts the drag+Coriolis
// response analytically. The closed form relies on Coriolis being
// linear in v and drag linear in v-u, which both hold, and makes the
// scheme stable for any ratio of dt to stopping time.
func (s *Stepper) stepSemiImplicit(x, v grid.Vec, prop int) (xp, dv grid.Vec, err error) {
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
		xp.X2 -= 0.1875 * v.X1 * dt * dt
	}

	fd, tsInv := s.Drag.Drag(prop, xp, v)
	f := fd.Add(p.Force(xp, v))

	b := dt*tsInv + 2
	if !p.ShearingBox {
		dv = f.Scale(2 * dt / b)
		return xp, dv, nil
	}

	oh := p.Omega * dt
	var b1 float64
	if p.Fargo {
		b1 = 1 / (b*b + oh*oh)
	} else {
		b1 = 1 / (b*b + 4*oh*oh)
	}
	b2 := b * b1

	if p.ThreeD {
		dv.X1 = 2*dt*b2*f.X1 + 4*dt*oh*b1*f.X2
		if p.Fargo {
			dv.X2 = 2*dt*b2*f.X2 - dt*oh*b1*f.X1
		} else {
			dv.X2 = 2*dt*b2*f.X2 - 4*dt*oh*b1*f.X1
		}
		dv.X3 = 2 * dt * f.X3 / b
	} else {
		dv.X1 = 2*dt*b2*f.X1 + 4*dt*oh*b1*f.X3
		if p.Fargo {
			dv.X3 = 2*dt*b2*f.X3 - dt*oh*b1*f.X1
		} else {
			dv.X3 = 2*dt*b2*f.X3 - 4*dt*oh*b1*f.X1
		}
		dv.X2 = 2 * dt * f.X2 / b
	}
	return xp, dv, nil
}
