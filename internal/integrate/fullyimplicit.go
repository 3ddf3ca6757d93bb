package integrate

import "github.com/shearlab/dustbox/internal/grid"

// stepFullyImplicit is the trapezoidal scheme: the drag is evaluated at
// both the current and the full-step predicted position, giving two
// stopping frequencies whose symmetrised combination keeps the update
// second order even when the stopping time varies strongly across a
// cell. The two rotation-plane velocity components are advanced through
// an analytic 2x2 solve whose determinant must stay positive.
func (s *Stepper) stepFullyImplicit(x, v grid.Vec, prop int) (xp, dv grid.Vec, err error) {
	g, p := s.Grid, s.Frame
	dt := g.Dt
	act := g.Active()

	xp = x
	if act[0] {
		xp.X1 = x.X1 + dt*v.X1
	}
	if act[1] {
		xp.X2 = x.X2 + dt*v.X2
	}
	if act[2] {
		xp.X3 = x.X3 + dt*v.X3
	}
	if p.ShearingBox && p.ThreeD && !p.Fargo {
		xp.X2 -= 0.75 * v.X1 * dt * dt
	}

	fdc, ts1 := s.Drag.Drag(prop, x, v)
	fc := fdc.Add(p.Force(x, v))
	fdp, ts2 := s.Drag.Drag(prop, xp, v)
	fp := fdp.Add(p.Force(xp, v))

	b0 := 1 + dt*ts1
	ft := fc.Add(fp.Scale(b0)).Scale(0.5)

	oh := p.Omega * dt
	if p.ShearingBox {
		if p.ThreeD {
			ft.X1 -= oh * fp.X2
			if p.Fargo {
				ft.X2 += 0.25 * oh * fp.X1
			} else {
				ft.X2 += oh * fp.X1
			}
		} else {
			ft.X1 -= oh * fp.X3
			if p.Fargo {
				ft.X3 += 0.25 * oh * fp.X1
			} else {
				ft.X3 += oh * fp.X1
			}
		}
	}

	d := 1 + 0.5*dt*(ts1+ts2+dt*ts1*ts2)
	if !p.ShearingBox {
		dv = ft.Scale(dt / d)
		return xp, dv, nil
	}

	b := oh * (-2 - (ts1+ts2)*dt)
	var a, c float64
	if p.Fargo {
		a = d - 0.5*oh*oh
		c = -0.25 * b
	} else {
		a = d - 2*oh*oh
		c = -b
	}
	det := a*a - b*c
	if det <= 0 {
		return xp, dv, ErrSingular
	}

	if p.ThreeD {
		dv.X1 = dt * (a*ft.X1 - b*ft.X2) / det
		dv.X2 = dt * (-c*ft.X1 + a*ft.X2) / det
		dv.X3 = dt * ft.X3 / d
	} else {
		dv.X1 = dt * (a*ft.X1 - b*ft.X3) / det
		dv.X3 = dt * (-c*ft.X1 + a*ft.X3) / det
		dv.X2 = dt * ft.X2 / d
	}
	return xp, dv, nil
}
