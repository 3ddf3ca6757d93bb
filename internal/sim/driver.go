// Package sim owns the outer time loop: per step it runs the feedback
// predictor, hands the grain array to the integrator, applies the FARGO
// remap, and feeds the observers.
package sim

import (
	"context"

	"github.com/shearlab/dustbox/internal/grain"
)

// Driver runs a world forward.
type Driver struct {
	World     *World
	Metrics   []Metric
	Observers []Observer

	// Track selects the grain whose history goes into the Result.
	// Negative disables tracking. Grain indices are only stable while
	// no ghosts are purged mid-run, which holds for generated setups.
	Track int
}

// New builds a driver tracking grain 0.
func New(w *World) *Driver {
	return &Driver{World: w}
}

// AddMetric registers a per-step metric.
func (d *Driver) AddMetric(m Metric) { d.Metrics = append(d.Metrics, m) }

// AddObserver registers a per-step observer.
func (d *Driver) AddObserver(o Observer) { d.Observers = append(d.Observers, o) }

// Run advances the world by steps steps. The context is checked between
// steps only; a step never blocks.
func (d *Driver) Run(ctx context.Context, steps int) (*Result, error) {
	w := d.World
	g := w.Grid

	for _, m := range d.Metrics {
		m.Reset()
	}

	res := &Result{Metrics: make(map[string]float64)}
	d.record(res, g.Time)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if err := g.RefreshGasInfo(); err != nil {
			return res, err
		}
		if w.Stepper.Feedback {
			w.Stepper.FeedbackPredictor(w.Grains)
		}
		if err := w.Stepper.Advance(w.Grains); err != nil {
			return res, err
		}
		if w.Stepper.Frame.ShearingBox && w.Stepper.Frame.Fargo {
			ApplyFargoRemap(w)
		}
		g.Time += g.Dt
		res.StepsTaken++

		for _, m := range d.Metrics {
			m.Observe(g, w.Grains)
		}
		for _, o := range d.Observers {
			o.OnStep(w, g.Time)
		}
		d.record(res, g.Time)
	}

	for _, m := range d.Metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

// ApplyFargoRemap applies the orbital advection recorded by the FARGO
// integrators and wraps the azimuth back into the live region.
func ApplyFargoRemap(w *World) {
	g := w.Grid
	if !w.Stepper.Frame.ThreeD {
		// collapsed azimuth carries no position to remap
		for i := range w.Grains.Grains {
			w.Grains.Grains[i].Shift = 0
		}
		return
	}
	lo, hi := g.X2LPar, g.X2UPar
	span := hi - lo
	for i := range w.Grains.Grains {
		gr := &w.Grains.Grains[i]
		if gr.Pos == grain.StatusGhost {
			continue
		}
		x2 := gr.X2 + gr.Shift
		gr.Shift = 0
		for x2 < lo {
			x2 += span
		}
		for x2 >= hi {
			x2 -= span
		}
		gr.X2 = x2
	}
}

func (d *Driver) record(res *Result, t float64) {
	if d.Track < 0 || d.Track >= d.World.Grains.N() {
		return
	}
	gr := &d.World.Grains.Grains[d.Track]
	res.Times = append(res.Times, t)
	res.X1 = append(res.X1, gr.X1)
	res.X2 = append(res.X2, gr.X2)
	res.X3 = append(res.X3, gr.X3)
	res.V1 = append(res.V1, gr.V1)
	res.V2 = append(res.V2, gr.V2)
	res.V3 = append(res.V3, gr.V3)
}
