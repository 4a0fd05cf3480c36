package config

import (
	"sort"

	"github.com/san-kum/attractor/internal/gravity"
)

var Presets = map[string]*Scene{
	// Two unit masses one unit apart.
	"pair": {
		Name: "pair", G: gravity.DefaultG, Dt: 0.0001, Duration: 0.02, SampleEvery: 5,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Position: [3]float64{0, 0, 0}},
			{Name: "b", Mass: 1, Position: [3]float64{1, 0, 0}},
		},
	},
	"line3": {
		Name: "line3", G: gravity.DefaultG, Dt: 0.0001, Duration: 0.02, SampleEvery: 5,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Position: [3]float64{0, 0, 0}},
			{Name: "b", Mass: 1, Position: [3]float64{1, 0, 0}},
			{Name: "c", Mass: 1, Position: [3]float64{2, 0, 0}},
		},
	},
	// Equal masses on a circular mutual orbit: v = sqrt(G·m/(4r)) with r the
	// distance of each body from the centre.
	"binary": {
		Name: "binary", G: gravity.DefaultG, Dt: 0.0005, Duration: 10, SampleEvery: 20,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Position: [3]float64{-5, 0, 0}, Velocity: [3]float64{0, -5.7766, 0}},
			{Name: "b", Mass: 1, Position: [3]float64{5, 0, 0}, Velocity: [3]float64{0, 5.7766, 0}},
		},
	},
	"solar": {
		Name: "solar", G: gravity.DefaultG, Dt: 0.0005, Duration: 20, SampleEvery: 20, AutoOrbit: true,
		Bodies: []BodyConfig{
			{Name: "sun", Mass: 100, Pinned: true},
			{Name: "mercury", Mass: 0.01, Position: [3]float64{20, 0, 0}},
			{Name: "venus", Mass: 0.02, Position: [3]float64{0, 35, 0}},
			{Name: "earth", Mass: 0.03, Position: [3]float64{-50, 0, 0}},
			{Name: "mars", Mass: 0.01, Position: [3]float64{0, -70, 0}},
		},
	},
	// Chenciner-Montgomery figure-eight choreography, in units where G = 1.
	"figure8": {
		Name: "figure8", G: 1, Dt: 0.0005, Duration: 6.3259, SampleEvery: 20,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Position: [3]float64{0.97000436, -0.24308753, 0}, Velocity: [3]float64{0.466203685, 0.43236573, 0}},
			{Name: "b", Mass: 1, Position: [3]float64{-0.97000436, 0.24308753, 0}, Velocity: [3]float64{0.466203685, 0.43236573, 0}},
			{Name: "c", Mass: 1, Position: [3]float64{0, 0, 0}, Velocity: [3]float64{-0.93240737, -0.86473146, 0}},
		},
	},
	// A heavy intruder enters a binary and leaves again.
	"flyby": {
		Name: "flyby", G: gravity.DefaultG, Dt: 0.0005, Duration: 8, SampleEvery: 20,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Position: [3]float64{-5, 0, 0}, Velocity: [3]float64{0, -5.7766, 0}},
			{Name: "b", Mass: 1, Position: [3]float64{5, 0, 0}, Velocity: [3]float64{0, 5.7766, 0}},
			{Name: "intruder", Mass: 2, Position: [3]float64{-60, 30, 0}, Velocity: [3]float64{25, -10, 0}, SpawnAt: 1, DespawnAt: 6},
		},
	},
}

// GetPreset returns a copy of the named preset filled in with defaults, or
// nil when no such preset exists.
func GetPreset(name string) *Scene {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	sc := p.Clone()
	def := DefaultScene()
	if sc.Integrator == "" {
		sc.Integrator = def.Integrator
	}
	if sc.Logging == (LoggingConfig{}) {
		sc.Logging = def.Logging
	}
	return sc
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
