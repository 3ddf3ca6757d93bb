// Package grid carries the mesh metadata the particle integrators read,
// the gas state they sample, and the feedback buffer they deposit into.
//
// The gas arrays are only ever read through the interpolation entry
// points; the integrators never index cells directly. An axis with a
// single cell is collapsed: positions along it are frozen and its
// interpolation weight degenerates to the one cell.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// ErrOutsideDomain is returned when an interpolation point has no full
// stencil inside the gas arrays.
var ErrOutsideDomain = errors.New("grid: point outside interpolable region")

// Vec is a 3-vector in grid coordinates. The component names follow the
// axis numbering of the mesh, not any fixed physical orientation: in a
// 3-D shearing patch x2 is azimuth, in a 2-D one x2 is vertical.
type Vec struct {
	X1, X2, X3 float64
}

// Add returns u + w.
func (u Vec) Add(w Vec) Vec { return Vec{u.X1 + w.X1, u.X2 + w.X2, u.X3 + w.X3} }

// Sub returns u - w.
func (u Vec) Sub(w Vec) Vec { return Vec{u.X1 - w.X1, u.X2 - w.X2, u.X3 - w.X3} }

// Scale returns s*u.
func (u Vec) Scale(s float64) Vec { return Vec{s * u.X1, s * u.X2, s * u.X3} }

// Norm is the Euclidean norm over all three components regardless of
// how many axes the mesh keeps active.
func (u Vec) Norm() float64 {
	return math.Sqrt(u.X1*u.X1 + u.X2*u.X2 + u.X3*u.X3)
}

// Grid is the integrator's view of one subdomain. Cell (i1,i2,i3) spans
// [X1Min+i1*Dx1, X1Min+(i1+1)*Dx1) along the first axis and likewise
// for the others. The *LPar/*UPar pairs bound the live region a grain
// may occupy before it is handed to the migration layer.
type Grid struct {
	N1, N2, N3    int
	Dx1, Dx2, Dx3 float64

	X1Min, X2Min, X3Min float64

	X1LPar, X1UPar float64
	X2LPar, X2UPar float64
	X3LPar, X3UPar float64

	Time float64
	Dt   float64
	Rank int // diagnostics only

	// Gas state, shape [N3][N2][N1].
	Rho, U1, U2, U3, Cs *sparse.DenseArray

	// Feedback momentum density, same shape.
	FB1, FB2, FB3 *sparse.DenseArray

	// VShift is the steady drift the host problem imposes on the gas
	// velocity; it is added during every sample.
	VShift Vec

	cellVol float64
}

// New allocates a grid with zeroed gas and feedback fields. Non-positive
// spacings default to 1 so cell volumes stay meaningful.
func New(n1, n2, n3 int, dx1, dx2, dx3 float64) *Grid {
	g := &Grid{
		N1: n1, N2: n2, N3: n3,
		Dx1: dx1, Dx2: dx2, Dx3: dx3,
	}
	if g.Dx1 <= 0 {
		g.Dx1 = 1
	}
	if g.Dx2 <= 0 {
		g.Dx2 = 1
	}
	if g.Dx3 <= 0 {
		g.Dx3 = 1
	}
	g.Rho = sparse.ZerosDense(n3, n2, n1)
	g.U1 = sparse.ZerosDense(n3, n2, n1)
	g.U2 = sparse.ZerosDense(n3, n2, n1)
	g.U3 = sparse.ZerosDense(n3, n2, n1)
	g.Cs = sparse.ZerosDense(n3, n2, n1)
	g.FB1 = sparse.ZerosDense(n3, n2, n1)
	g.FB2 = sparse.ZerosDense(n3, n2, n1)
	g.FB3 = sparse.ZerosDense(n3, n2, n1)
	g.X1UPar = float64(n1) * g.Dx1
	g.X2UPar = float64(n2) * g.Dx2
	g.X3UPar = float64(n3) * g.Dx3
	g.RefreshGasInfo()
	return g
}

// Active reports which axes carry more than one cell.
func (g *Grid) Active() [3]bool {
	return [3]bool{g.N1 > 1, g.N2 > 1, g.N3 > 1}
}

// CellVol is the volume of one cell, cached by RefreshGasInfo.
func (g *Grid) CellVol() float64 { return g.cellVol }

// RefreshGasInfo revalidates the gas-derived caches after the gas
// solver has advanced the fields.
func (g *Grid) RefreshGasInfo() error {
	if g.Rho == nil || g.U1 == nil || g.U2 == nil || g.U3 == nil || g.Cs == nil {
		return fmt.Errorf("grid: gas fields not allocated")
	}
	g.cellVol = g.Dx1 * g.Dx2 * g.Dx3
	return nil
}

// ShiftGasVelocity applies the steady drift correction to a sampled gas
// velocity in place.
func (g *Grid) ShiftGasVelocity(u *Vec) {
	u.X1 += g.VShift.X1
	u.X2 += g.VShift.X2
	u.X3 += g.VShift.X3
}

// InLive reports whether x lies inside the live region along axis ax
// (0-based). The interval is half-open: the upper bound is outside.
func (g *Grid) InLive(ax int, x float64) bool {
	switch ax {
	case 0:
		return x >= g.X1LPar && x < g.X1UPar
	case 1:
		return x >= g.X2LPar && x < g.X2UPar
	default:
		return x >= g.X3LPar && x < g.X3UPar
	}
}
