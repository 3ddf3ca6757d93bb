package forces

import (
	"math"

	"github.com/shearlab/dustbox/internal/grain"
)

// epsteinSuper is 9*pi/128, the coefficient of the supersonic
// correction to the Epstein law.
const epsteinSuper = 9 * math.Pi / 128

// StoppingTime returns the drag equilibration timescale for one grain
// of species sp in gas of density rho and sound speed cs, moving at
// dvAbs relative to it. +Inf means the grain feels no drag.
func StoppingTime(sp grain.Species, rho, cs, dvAbs float64) float64 {
	switch sp.Law {
	case grain.LawEpstein:
		if rho <= 0 || cs <= 0 {
			return math.Inf(1)
		}
		ts := sp.SolidRho * sp.Size / (rho * cs)
		mach := dvAbs / cs
		return ts / math.Sqrt(1+epsteinSuper*mach*mach)
	default:
		return sp.TStop
	}
}
