package colony

import (
	"fmt"
)

// Phase is the run lifecycle
type Phase uint8

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Simulation guards a World behind the stopped/running/paused lifecycle
// Leaving stopped initializes a fresh world, entering stopped discards it
type Simulation struct {
	phase  Phase
	bounds Bounds
	cfg    SimulationConfig
	seed   uint64
	runs   uint64 // Completed initializations, mixed into the seed so resets differ

	layout *Layout // Optional explicit layout replacing random placement

	world *World
}

// NewSimulation validates bounds and config and returns a stopped simulation
func NewSimulation(bounds Bounds, cfg SimulationConfig, seed uint64) (*Simulation, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulation{
		phase:  PhaseStopped,
		bounds: bounds,
		cfg:    cfg,
		seed:   seed,
	}, nil
}

// Phase returns the current lifecycle phase
func (s *Simulation) Phase() Phase {
	return s.phase
}

// World returns the active world, nil while stopped
func (s *Simulation) World() *World {
	return s.world
}

// Bounds returns the configured world bounds
func (s *Simulation) Bounds() Bounds {
	return s.bounds
}

// Config returns the configured simulation config
func (s *Simulation) Config() SimulationConfig {
	return s.cfg
}

// Seed returns the seed the next initialization will use
func (s *Simulation) Seed() uint64 {
	return s.seed + s.runs
}

// Start leaves stopped by initializing a world, or resumes from paused
// Starting a running simulation is an error
func (s *Simulation) Start() error {
	switch s.phase {
	case PhaseRunning:
		return fmt.Errorf("%w: start while %s", ErrInvalidState, s.phase)
	case PhasePaused:
		s.phase = PhaseRunning
		return nil
	}

	var (
		w   *World
		err error
	)
	if s.layout != nil {
		w, err = Build(s.bounds, s.cfg, s.Seed(), *s.layout)
	} else {
		w, err = Initialize(s.bounds, s.cfg, s.Seed())
	}
	if err != nil {
		return err
	}

	s.runs++
	s.world = w
	s.phase = PhaseRunning
	return nil
}

// Pause suspends ticking; pausing a paused simulation is a no-op
func (s *Simulation) Pause() error {
	switch s.phase {
	case PhaseStopped:
		return fmt.Errorf("%w: pause while %s", ErrInvalidState, s.phase)
	case PhaseRunning:
		s.phase = PhasePaused
	}
	return nil
}

// Stop discards all world state
func (s *Simulation) Stop() {
	s.world = nil
	s.phase = PhaseStopped
}

// Reset replaces bounds and config, permitted only while stopped
func (s *Simulation) Reset(bounds Bounds, cfg SimulationConfig) error {
	if s.phase != PhaseStopped {
		return fmt.Errorf("%w: reset while %s", ErrInvalidState, s.phase)
	}
	if err := bounds.Validate(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.bounds = bounds
	s.cfg = cfg
	return nil
}

// UseLayout sets an explicit starting layout for subsequent starts, nil restores random placement
// Permitted only while stopped
func (s *Simulation) UseLayout(layout *Layout) error {
	if s.phase != PhaseStopped {
		return fmt.Errorf("%w: layout change while %s", ErrInvalidState, s.phase)
	}
	s.layout = layout
	return nil
}

// Resize stops, re-initializes with new bounds and restores the previous phase
// Fields are never resized in place
func (s *Simulation) Resize(bounds Bounds) error {
	if err := bounds.Validate(); err != nil {
		return err
	}

	prev := s.phase
	s.Stop()
	s.bounds = bounds
	if prev == PhaseStopped {
		return nil
	}

	if err := s.Start(); err != nil {
		return err
	}
	if prev == PhasePaused {
		return s.Pause()
	}
	return nil
}

// Tick advances the world by dt seconds, permitted only while running
func (s *Simulation) Tick(dt float64) (TickReport, error) {
	if s.phase != PhaseRunning {
		return TickReport{}, fmt.Errorf("%w: tick while %s", ErrInvalidState, s.phase)
	}
	return s.world.Tick(dt)
}
