package sim

import (
	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
	"github.com/shearlab/dustbox/internal/integrate"
)

// World bundles everything one subdomain needs to advance: the mesh
// with its gas state, the grain population, and the configured stepper.
type World struct {
	Grid    *grid.Grid
	Grains  *grain.Array
	Stepper *integrate.Stepper
}

// Metric observes the world after every step and reduces to one number.
type Metric interface {
	Name() string
	Observe(g *grid.Grid, par *grain.Array)
	Value() float64
	Reset()
}

// Observer receives the world after every step.
type Observer interface {
	OnStep(w *World, t float64)
}

// Result is one run's tracked history and final metric values.
type Result struct {
	Times      []float64
	X1, X2, X3 []float64
	V1, V2, V3 []float64
	Metrics    map[string]float64
	StepsTaken int
}
