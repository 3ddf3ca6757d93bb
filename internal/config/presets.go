package config

import "sort"

// Presets are the canned disk-patch scenarios.
var Presets = map[string]*Config{
	"decay": {
		Scheme: "explicit", Dt: 0.01, Steps: 100,
		Grid: GridConfig{N1: 8, N2: 1, N3: 1, Dx1: 1, Dx2: 1, Dx3: 1},
		Gas:  GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 1, Mass: 1e-3, Law: "fixed", TStop: 1},
		},
		Init: InitConfig{Placement: "lattice", V1: 1},
	},
	"stiff": {
		Scheme: "full", Dt: 0.1, Steps: 10,
		Grid: GridConfig{N1: 8, N2: 1, N3: 1, Dx1: 1, Dx2: 1, Dx3: 1},
		Gas:  GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 1, Mass: 1e-3, Law: "fixed", TStop: 1e-4},
		},
		Init: InitConfig{Placement: "lattice", V1: 1},
	},
	"epicycle": {
		Scheme: "full", Dt: 0.05, Steps: 1000,
		Omega: 1, ShearingBox: true,
		Grid: GridConfig{N1: 32, N2: 32, N3: 8, Dx1: 0.25, Dx2: 0.25, Dx3: 0.25},
		Gas:  GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 1, Mass: 1e-6, Law: "fixed"}, // tstop 0 => drag-free
		},
		Init: InitConfig{Placement: "lattice", X1: 0.5},
	},
	"epicycle2d": {
		Scheme: "full", Dt: 0.05, Steps: 1000,
		Omega: 1, ShearingBox: true,
		Grid: GridConfig{N1: 32, N2: 32, N3: 1, Dx1: 0.25, Dx2: 0.25, Dx3: 1},
		Gas:  GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 1, Mass: 1e-6, Law: "fixed"},
		},
		Init: InitConfig{Placement: "lattice", X1: 0.5},
	},
	"settling": {
		Scheme: "semi", Dt: 0.02, Steps: 2000,
		Omega: 1, ShearingBox: true, VerticalGravity: true,
		Grid: GridConfig{N1: 16, N2: 16, N3: 64, Dx1: 0.25, Dx2: 0.25, Dx3: 0.0625},
		Gas:  GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 256, Mass: 1e-4, Law: "epstein", Size: 1e-3, SolidRho: 100},
		},
		Init: InitConfig{Placement: "random"},
	},
	"streaming": {
		Scheme: "semi", Dt: 0.01, Steps: 500,
		Omega: 1, ShearingBox: true, Fargo: true, Feedback: true,
		EtaVK: 0.05,
		Grid:  GridConfig{N1: 32, N2: 32, N3: 32, Dx1: 0.0625, Dx2: 0.0625, Dx3: 0.0625},
		Gas:   GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 4096, Mass: 2e-4, Law: "fixed", TStop: 0.1},
		},
		Init: InitConfig{Placement: "random", NSH: true},
	},
}

// Preset returns a copy of a named preset so callers can override
// fields without mutating the table.
func Preset(name string) (*Config, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	c := *p
	c.Species = append([]SpeciesConfig(nil), p.Species...)
	return &c, true
}

// PresetNames lists the available presets.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
