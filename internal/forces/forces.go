// Package forces evaluates the accelerations acting on a dust grain:
// the rotating-frame terms of the local shearing patch and the linear
// gas drag sampled from the mesh.
package forces

import "github.com/shearlab/dustbox/internal/grid"

// Params selects the frame the grains move in. ThreeD distinguishes the
// two shearing-patch layouts: in 3-D the rotation plane is (x1,x2) with
// x2 the azimuth; in 2-D it is (x1,x3) with x3 the (collapsed) azimuth
// and x2 the vertical.
type Params struct {
	Omega           float64
	ShearingBox     bool
	Fargo           bool
	VerticalGravity bool
	ThreeD          bool
}

// Force returns the non-drag force per unit mass on a grain at (x, v).
// Without a shearing box it is identically zero.
func (p Params) Force(x, v grid.Vec) grid.Vec {
	var f grid.Vec
	if !p.ShearingBox {
		return f
	}
	om := p.Omega
	if p.ThreeD {
		f.X1 = 2 * om * v.X2
		if p.Fargo {
			f.X2 = -0.5 * om * v.X1
		} else {
			f.X1 += 3 * om * om * x.X1
			f.X2 = -2 * om * v.X1
		}
		if p.VerticalGravity {
			f.X3 = -om * om * x.X3
		}
		return f
	}
	f.X1 = 2 * om * v.X3
	if p.Fargo {
		f.X3 = -0.5 * om * v.X1
	} else {
		f.X1 += 3 * om * om * x.X1
		f.X3 = -2 * om * v.X1
	}
	if p.VerticalGravity {
		f.X2 = -om * om * x.X2
	}
	return f
}

// AzimuthAxis is the 0-based axis the orbital advection runs along.
func (p Params) AzimuthAxis() int {
	if p.ThreeD {
		return 1
	}
	return 2
}
