// Package scenario is the problem generator: it turns a config into a
// ready-to-run world with a uniform gas background and a seeded grain
// population.
package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/shearlab/dustbox/internal/config"
	"github.com/shearlab/dustbox/internal/forces"
	"github.com/shearlab/dustbox/internal/grain"
	"github.com/shearlab/dustbox/internal/grid"
	"github.com/shearlab/dustbox/internal/integrate"
	"github.com/shearlab/dustbox/internal/sim"
)

// Build constructs the world a config describes.
func Build(cfg *config.Config, log *logrus.Logger) (*sim.World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	g := buildGrid(cfg)
	frame := forces.Params{
		Omega:           cfg.Omega,
		ShearingBox:     cfg.ShearingBox,
		Fargo:           cfg.Fargo,
		VerticalGravity: cfg.VerticalGravity,
		ThreeD:          g.N3 > 1,
	}

	par := &grain.Array{}
	for _, sp := range cfg.Species {
		law := grain.LawFixed
		if sp.Law == "epstein" {
			law = grain.LawEpstein
		}
		par.Species = append(par.Species, grain.Species{
			Mass:     sp.Mass,
			Law:      law,
			TStop:    sp.TStopValue(),
			Size:     sp.Size,
			SolidRho: sp.SolidRho,
		})
	}
	place(cfg, g, frame, par)

	scheme, err := integrate.ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	stepper := integrate.NewStepper(g, frame, par.Species, scheme, cfg.Feedback, log)

	log.Debugf("scenario: %d cells, %d grains, scheme %s", g.N1*g.N2*g.N3, par.N(), scheme)
	return &sim.World{Grid: g, Grains: par, Stepper: stepper}, nil
}

// buildGrid allocates the mesh and fills the uniform gas state. Sheared
// patches are centred on the corotation point, unsheared boxes start at
// the origin.
func buildGrid(cfg *config.Config) *grid.Grid {
	gc := cfg.Grid
	g := grid.New(gc.N1, gc.N2, gc.N3, gc.Dx1, gc.Dx2, gc.Dx3)
	g.Dt = cfg.Dt

	if cfg.ShearingBox {
		g.X1Min = -0.5 * float64(g.N1) * g.Dx1
		g.X2Min = -0.5 * float64(g.N2) * g.Dx2
		g.X3Min = -0.5 * float64(g.N3) * g.Dx3
	}
	g.X1LPar, g.X1UPar = g.X1Min, g.X1Min+float64(g.N1)*g.Dx1
	g.X2LPar, g.X2UPar = g.X2Min, g.X2Min+float64(g.N2)*g.Dx2
	g.X3LPar, g.X3UPar = g.X3Min, g.X3Min+float64(g.N3)*g.Dx3

	for i := range g.Rho.Elements {
		g.Rho.Elements[i] = cfg.Gas.Rho
		g.U1.Elements[i] = cfg.Gas.U1
		g.U2.Elements[i] = cfg.Gas.U2
		g.U3.Elements[i] = cfg.Gas.U3
		g.Cs.Elements[i] = cfg.Gas.Cs
	}

	if cfg.EtaVK != 0 {
		// the pressure-supported gas orbits slower than Keplerian
		if g.N3 > 1 {
			g.VShift.X2 = -cfg.EtaVK
		} else {
			g.VShift.X3 = -cfg.EtaVK
		}
	}
	return g
}

func place(cfg *config.Config, g *grid.Grid, frame forces.Params, par *grain.Array) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	act := g.Active()
	lo := [3]float64{g.X1LPar, g.X2LPar, g.X3LPar}
	span := [3]float64{
		g.X1UPar - g.X1LPar,
		g.X2UPar - g.X2LPar,
		g.X3UPar - g.X3LPar,
	}

	for prop, spc := range cfg.Species {
		v := initVelocity(cfg, frame, par.Species[prop])
		for n := 0; n < spc.Count; n++ {
			var x [3]float64
			for ax := 0; ax < 3; ax++ {
				if !act[ax] {
					x[ax] = lo[ax] + 0.5*span[ax]
					continue
				}
				switch cfg.Init.Placement {
				case "random":
					x[ax] = lo[ax] + rng.Float64()*span[ax]
				default: // lattice along the diagonal
					x[ax] = lo[ax] + (float64(n)+0.5)/float64(spc.Count)*span[ax]
				}
			}
			par.Add(grain.Grain{
				X1: x[0] + cfg.Init.X1, X2: x[1] + cfg.Init.X2, X3: x[2] + cfg.Init.X3,
				V1: v.X1, V2: v.X2, V3: v.X3,
				Property: prop,
				Pos:      grain.StatusLive,
			})
		}
	}
}

// initVelocity is either the prescribed initial velocity or, when the
// config asks for it, the Nakagawa-Sato-Hayashi drift equilibrium for
// the species' stopping time.
func initVelocity(cfg *config.Config, frame forces.Params, sp grain.Species) grid.Vec {
	if !cfg.Init.NSH || !cfg.ShearingBox {
		return grid.Vec{X1: cfg.Init.V1, X2: cfg.Init.V2, X3: cfg.Init.V3}
	}
	ts := forces.StoppingTime(sp, cfg.Gas.Rho, cfg.Gas.Cs, 0)
	if math.IsInf(ts, 1) {
		return grid.Vec{}
	}
	tau := cfg.Omega * ts
	vr := -2 * tau / (1 + tau*tau) * cfg.EtaVK
	vphi := -1 / (1 + tau*tau) * cfg.EtaVK
	if frame.ThreeD {
		return grid.Vec{X1: vr, X2: vphi}
	}
	return grid.Vec{X1: vr, X3: vphi}
}

// Named builds a preset world by name.
func Named(name string, log *logrus.Logger) (*sim.World, *config.Config, error) {
	cfg, ok := config.Preset(name)
	if !ok {
		return nil, nil, fmt.Errorf("scenario: unknown preset %q (have %v)", name, config.PresetNames())
	}
	w, err := Build(cfg, log)
	return w, cfg, err
}
