// Package viz renders run output for terminals: a braille canvas for
// the grain field and asciigraph series for tracked histories.
package viz

import (
	"strings"

	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
)

// Braille patterns: 2x4 dots per cell, offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille-dot raster. Sub-pixel resolution is (Width*2) x
// (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set lights the sub-pixel at (x, y).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Clear resets every dot.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Scatter projects the grain population onto the canvas. The
// horizontal axis is x1; the vertical axis is the azimuth in a 3-D
// patch (x2) and the vertical coordinate otherwise.
func (c *Canvas) Scatter(g *grid.Grid, par *grain.Array) {
	c.Clear()
	w := float64(c.Width * 2)
	h := float64(c.Height * 4)
	sx := g.X1UPar - g.X1LPar
	loY, spanY := g.X2LPar, g.X2UPar-g.X2LPar
	useX2 := g.N2 > 1
	if !useX2 {
		loY, spanY = g.X3LPar, g.X3UPar-g.X3LPar
	}
	for i := range par.Grains {
		gr := &par.Grains[i]
		if gr.Pos == grain.StatusGhost {
			continue
		}
		y := gr.X2
		if !useX2 {
			y = gr.X3
		}
		px := int((gr.X1 - g.X1LPar) / sx * (w - 1))
		py := int((y - loY) / spanY * (h - 1))
		c.Set(px, int(h)-1-py)
	}
}
