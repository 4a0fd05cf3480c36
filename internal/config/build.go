package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/attractor/internal/rigid"
	"github.com/san-kum/attractor/internal/sim"
)

// Build validates the scene and constructs a populated world and a
// simulator with the scene's lifecycle events scheduled.
func (s *Scene) Build(log *zap.Logger, opts ...sim.Option) (*sim.Simulator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sc := s.Clone()
	if sc.AutoOrbit {
		sc.ApplyAutoOrbit()
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	scheme, err := rigid.SchemeByName(sc.Integrator)
	if err != nil {
		return nil, err
	}

	w := rigid.NewWorld(sc.G, scheme, rigid.WithLogger(log.Named("world")))
	for _, spec := range sc.BodySpecs() {
		if _, err := w.Spawn(spec); err != nil {
			w.Close()
			return nil, fmt.Errorf("build scene %s: %w", sc.Name, err)
		}
	}

	opts = append([]sim.Option{sim.WithLogger(log.Named("sim"))}, opts...)
	simulator := sim.New(w, opts...)
	simulator.Schedule(sc.LifecycleEvents()...)
	return simulator, nil
}
