package grid

import "math"

// Stencil is a 3x3x3 block of triangular-shaped-cloud weights anchored
// at the cell (I1,I2,I3); entry W[k][j][i] belongs to cell
// (I1+i, I2+j, I3+k). On a collapsed axis the weight degenerates to
// {0,1,0} and zero-weight cells may index outside the arrays.
type Stencil struct {
	W          [3][3][3]float64
	I1, I2, I3 int
}

// axisWeights computes the 1-D TSC weights along one axis and the index
// of the stencil's lower cell.
func axisWeights(n int, min, dx, x float64) (w [3]float64, lo int) {
	if n == 1 {
		return [3]float64{0, 1, 0}, -1
	}
	c := math.Floor((x - min) / dx)
	d := (x-min)/dx - c - 0.5
	w[0] = 0.5 * (0.5 - d) * (0.5 - d)
	w[1] = 0.75 - d*d
	w[2] = 0.5 * (0.5 + d) * (0.5 + d)
	return w, int(c) - 1
}

// WeightStencil builds the interpolation stencil for position x.
func (g *Grid) WeightStencil(x Vec) Stencil {
	w1, i1 := axisWeights(g.N1, g.X1Min, g.Dx1, x.X1)
	w2, i2 := axisWeights(g.N2, g.X2Min, g.Dx2, x.X2)
	w3, i3 := axisWeights(g.N3, g.X3Min, g.Dx3, x.X3)
	st := Stencil{I1: i1, I2: i2, I3: i3}
	for k := 0; k < 3; k++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < 3; i++ {
				st.W[k][j][i] = w3[k] * w2[j] * w1[i]
			}
		}
	}
	return st
}

// GasAt samples the gas state through a stencil. A stencil that touches
// cells outside the arrays with non-zero weight has no complete support
// and yields ErrOutsideDomain.
func (g *Grid) GasAt(st Stencil) (rho float64, u Vec, cs float64, err error) {
	for k := 0; k < 3; k++ {
		i3 := st.I3 + k
		for j := 0; j < 3; j++ {
			i2 := st.I2 + j
			for i := 0; i < 3; i++ {
				w := st.W[k][j][i]
				if w == 0 {
					continue
				}
				i1 := st.I1 + i
				if i1 < 0 || i1 >= g.N1 || i2 < 0 || i2 >= g.N2 || i3 < 0 || i3 >= g.N3 {
					return 0, Vec{}, 0, ErrOutsideDomain
				}
				rho += w * g.Rho.Get(i3, i2, i1)
				u.X1 += w * g.U1.Get(i3, i2, i1)
				u.X2 += w * g.U2.Get(i3, i2, i1)
				u.X3 += w * g.U3.Get(i3, i2, i1)
				cs += w * g.Cs.Get(i3, i2, i1)
			}
		}
	}
	return rho, u, cs, nil
}
