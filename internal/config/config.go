package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/attractor/internal/gravity"
	"github.com/san-kum/attractor/internal/rigid"
	"github.com/san-kum/attractor/internal/sim"
)

const (
	DefaultDt          = 0.001
	DefaultDuration    = 5.0
	DefaultSampleEvery = 10
)

// ErrInvalidScene indicates a scene that fails validation.
var ErrInvalidScene = errors.New("config: invalid scene")

type Scene struct {
	Name        string        `yaml:"name" toml:"name"`
	G           float64       `yaml:"g" toml:"g"`
	Dt          float64       `yaml:"dt" toml:"dt"`
	Duration    float64       `yaml:"duration" toml:"duration"`
	Integrator  string        `yaml:"integrator" toml:"integrator"`
	SampleEvery int           `yaml:"sample_every" toml:"sample_every"`
	AutoOrbit   bool          `yaml:"auto_orbit,omitempty" toml:"auto_orbit,omitempty"`
	Bodies      []BodyConfig  `yaml:"bodies" toml:"bodies"`
	Logging     LoggingConfig `yaml:"logging" toml:"logging"`
}

type BodyConfig struct {
	Name      string     `yaml:"name" toml:"name"`
	Mass      float64    `yaml:"mass" toml:"mass"`
	Position  [3]float64 `yaml:"position,flow" toml:"position"`
	Velocity  [3]float64 `yaml:"velocity,flow" toml:"velocity"`
	Pinned    bool       `yaml:"pinned,omitempty" toml:"pinned,omitempty"`
	SpawnAt   float64    `yaml:"spawn_at,omitempty" toml:"spawn_at,omitempty"`
	DespawnAt float64    `yaml:"despawn_at,omitempty" toml:"despawn_at,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

func DefaultScene() *Scene {
	return &Scene{
		Name:        "scene",
		G:           gravity.DefaultG,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Integrator:  rigid.DefaultScheme,
		SampleEvery: DefaultSampleEvery,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a scene from a YAML or TOML file, chosen by extension, on top
// of the defaults.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	sc := DefaultScene()
	if isTOML(path) {
		err = toml.Unmarshal(data, sc)
	} else {
		err = yaml.Unmarshal(data, sc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return sc, nil
}

func Save(path string, sc *Scene) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(sc); err != nil {
			return fmt.Errorf("encode scene: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(sc); err != nil {
			return fmt.Errorf("encode scene: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func (s *Scene) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidScene, s.Dt)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidScene, s.Duration)
	}
	if s.G <= 0 || math.IsInf(s.G, 0) || math.IsNaN(s.G) {
		return fmt.Errorf("%w: g must be positive, got %g", ErrInvalidScene, s.G)
	}
	if s.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidScene, s.SampleEvery)
	}
	if _, err := rigid.SchemeByName(s.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if len(s.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidScene)
	}

	seen := make(map[string]bool, len(s.Bodies))
	for i, b := range s.Bodies {
		if b.Name == "" {
			return fmt.Errorf("%w: bodies[%d]: name is empty", ErrInvalidScene, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: bodies[%d]: duplicate name %q", ErrInvalidScene, i, b.Name)
		}
		seen[b.Name] = true
		if b.Mass <= 0 || math.IsInf(b.Mass, 0) || math.IsNaN(b.Mass) {
			return fmt.Errorf("%w: bodies[%d] %q: mass must be positive, got %g", ErrInvalidScene, i, b.Name, b.Mass)
		}
		if b.SpawnAt < 0 || b.DespawnAt < 0 {
			return fmt.Errorf("%w: bodies[%d] %q: spawn_at and despawn_at must not be negative", ErrInvalidScene, i, b.Name)
		}
		if b.DespawnAt > 0 && b.DespawnAt <= b.SpawnAt {
			return fmt.Errorf("%w: bodies[%d] %q: despawn_at must come after spawn_at", ErrInvalidScene, i, b.Name)
		}
	}
	return nil
}

// ApplyAutoOrbit gives every body after the first that has no velocity a
// circular orbit around the first body, in the XY plane.
func (s *Scene) ApplyAutoOrbit() {
	if len(s.Bodies) == 0 {
		return
	}
	central := s.Bodies[0]
	for i := 1; i < len(s.Bodies); i++ {
		b := &s.Bodies[i]
		if b.Velocity != [3]float64{} {
			continue
		}

		dx := b.Position[0] - central.Position[0]
		dy := b.Position[1] - central.Position[1]
		r := math.Hypot(dx, dy)
		if r == 0 {
			continue
		}
		v := math.Sqrt(s.G * central.Mass / r)
		b.Velocity[0] = central.Velocity[0] - dy/r*v
		b.Velocity[1] = central.Velocity[1] + dx/r*v
		b.Velocity[2] = central.Velocity[2]
	}
}

// SimConfig returns the run configuration for the scene.
func (s *Scene) SimConfig() sim.Config {
	return sim.Config{
		Dt:            s.Dt,
		Duration:      s.Duration,
		SampleEvery:   s.SampleEvery,
		ValidateState: true,
	}
}

// BodySpecs converts the body list into spawn specs. Bodies with a spawn
// time start disabled.
func (s *Scene) BodySpecs() []rigid.BodySpec {
	specs := make([]rigid.BodySpec, len(s.Bodies))
	for i, b := range s.Bodies {
		specs[i] = rigid.BodySpec{
			Name:     b.Name,
			Mass:     b.Mass,
			Position: vec(b.Position),
			Velocity: vec(b.Velocity),
			Pinned:   b.Pinned,
			Disabled: b.SpawnAt > 0,
		}
	}
	return specs
}

func (s *Scene) LifecycleEvents() []sim.LifecycleEvent {
	var events []sim.LifecycleEvent
	for _, b := range s.Bodies {
		if b.SpawnAt > 0 {
			events = append(events, sim.LifecycleEvent{At: b.SpawnAt, Body: b.Name, Action: sim.Enable})
		}
		if b.DespawnAt > 0 {
			events = append(events, sim.LifecycleEvent{At: b.DespawnAt, Body: b.Name, Action: sim.Destroy})
		}
	}
	return events
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Bodies = make([]BodyConfig, len(s.Bodies))
	copy(c.Bodies, s.Bodies)
	return &c
}
