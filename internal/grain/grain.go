// Package grain holds the dust grain records, the per-species property
// table, and the array compaction used before every integration sweep.
package grain

import "errors"

// Status values carried in Grain.Pos. The boundary layer owns the
// meaning: ghosts are interpolation-support copies from neighbouring
// subdomains, crossed grains await migration.
const (
	StatusGhost   = 0
	StatusLive    = 1
	StatusCrossed = 10
)

// ErrCounterUnderflow indicates a species counter went negative during
// compaction, which means the array or the table has been corrupted.
var ErrCounterUnderflow = errors.New("grain: species counter underflow during purge")

// DragLaw selects how a species' stopping time is computed.
type DragLaw int

const (
	// LawFixed uses the constant TStop field. TStop = +Inf means the
	// species feels no drag at all.
	LawFixed DragLaw = iota
	// LawEpstein computes t_s = SolidRho*Size/(rho*cs), with the
	// supersonic correction applied at evaluation time.
	LawEpstein
)

// Species is one row of the grain property table.
type Species struct {
	Mass     float64
	Law      DragLaw
	TStop    float64 // fixed stopping time (LawFixed)
	Size     float64 // grain radius (LawEpstein)
	SolidRho float64 // material density (LawEpstein)
	Num      int     // live grain count, maintained by the purge and the generator
}

// Grain is a single dust particle. Velocities live in the same frame as
// the gas; Shift accumulates the orbital advection a FARGO remap still
// has to apply to X2.
type Grain struct {
	X1, X2, X3 float64
	V1, V2, V3 float64
	Property   int
	Pos        int
	Shift      float64
}

// Array owns the grain population of one subdomain together with its
// species table. Deletion is swap-with-last-and-shrink, so indices are
// not stable across a purge.
type Array struct {
	Grains  []Grain
	Species []Species
}

// N reports the logical particle count.
func (a *Array) N() int { return len(a.Grains) }

// Add appends a grain and bumps its species counter.
func (a *Array) Add(g Grain) {
	a.Grains = append(a.Grains, g)
	a.Species[g.Property].Num++
}

// PurgeGhosts removes every grain with Pos == StatusGhost by moving the
// last grain into the freed slot and shrinking. The freed slot is
// re-tested, because the moved grain may itself be a ghost.
func (a *Array) PurgeGhosts() error {
	i := 0
	for i < len(a.Grains) {
		if a.Grains[i].Pos != StatusGhost {
			i++
			continue
		}
		p := a.Grains[i].Property
		a.Species[p].Num--
		if a.Species[p].Num < 0 {
			return ErrCounterUnderflow
		}
		last := len(a.Grains) - 1
		a.Grains[i] = a.Grains[last]
		a.Grains = a.Grains[:last]
	}
	return nil
}
