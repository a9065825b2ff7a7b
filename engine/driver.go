package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/antfarm/colony"
	"github.com/lixenwraith/antfarm/status"
)

// ErrInvalidOptions reports a driver option outside its domain
var ErrInvalidOptions = errors.New("invalid driver options")

// Options configures a Driver
type Options struct {
	Bounds     colony.Bounds
	Simulation colony.SimulationConfig
	Seed       uint64
	Layout     *colony.Layout // Optional fixed starting layout

	TickInterval       time.Duration // Fixed timestep, also the simulated dt of every tick
	PauseWhenDepleted  bool          // Pause on the tick the last food source empties
	PauseWhenDelivered bool          // Pause once every unit of food is in the nest
	SnapshotDeposits   int           // Per-field cap on deposits copied into snapshots, 0 omits them
	SnapshotTrail      int           // Per-agent cap on trail points copied into snapshots, 0 omits them

	Clock TimeProvider // nil uses the monotonic clock
}

// TickListener observes published snapshots
// report is zero for snapshots caused by control actions rather than ticks
type TickListener func(snap *Snapshot, report colony.TickReport)

// Summary is the outcome of a bounded headless run
type Summary struct {
	RunID        string
	Ticks        uint64
	Collected    int
	Remaining    int
	Total        int
	HomeDeposits int
	FoodDeposits int
	Depleted     bool
	Finished     bool
}

// Driver owns a Simulation and serializes every access to it
// Ticks come from the scheduler goroutine or Step; readers use Snapshot
type Driver struct {
	mu     sync.Mutex
	sim    *colony.Simulation
	opts   Options
	dt     float64
	runID  string
	logger *zap.Logger

	// Each pause rule fires once per run; a resumed run keeps ticking
	pausedDepleted  bool
	pausedDelivered bool

	clock     *PausableClock
	scheduler *ClockScheduler

	snapshot  atomic.Pointer[Snapshot]
	listenMu  sync.RWMutex
	listeners []TickListener

	// Cached metric pointers
	statTicks      *atomic.Int64
	statPickups    *atomic.Int64
	statDeliveries *atomic.Int64
	statCollected  *atomic.Int64
	statRemaining  *atomic.Int64
	statHome       *atomic.Int64
	statFood       *atomic.Int64
	statTickMS     *status.AtomicFloat
	statDepleted   *atomic.Bool
	statPhase      *status.Label
}

// NewDriver validates options and returns a driver in the stopped phase
func NewDriver(opts Options, reg *status.Registry, logger *zap.Logger) (*Driver, error) {
	if opts.TickInterval <= 0 {
		return nil, fmt.Errorf("%w: tick interval %v", ErrInvalidOptions, opts.TickInterval)
	}
	if opts.SnapshotDeposits < 0 {
		return nil, fmt.Errorf("%w: snapshot deposits %d", ErrInvalidOptions, opts.SnapshotDeposits)
	}
	if opts.SnapshotTrail < 0 {
		return nil, fmt.Errorf("%w: snapshot trail %d", ErrInvalidOptions, opts.SnapshotTrail)
	}
	sim, err := colony.NewSimulation(opts.Bounds, opts.Simulation, opts.Seed)
	if err != nil {
		return nil, err
	}
	if opts.Layout != nil {
		if err := sim.UseLayout(opts.Layout); err != nil {
			return nil, err
		}
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Driver{
		sim:    sim,
		opts:   opts,
		dt:     opts.TickInterval.Seconds(),
		logger: logger,
		clock:  NewPausableClock(opts.Clock),

		statTicks:      reg.Ints.Get(status.EngineTicks),
		statPickups:    reg.Ints.Get(status.Pickups),
		statDeliveries: reg.Ints.Get(status.Deliveries),
		statCollected:  reg.Ints.Get(status.Collected),
		statRemaining:  reg.Ints.Get(status.Remaining),
		statHome:       reg.Ints.Get(status.HomeDeposits),
		statFood:       reg.Ints.Get(status.FoodDeposits),
		statTickMS:     reg.Floats.Get(status.EngineTickMS),
		statDepleted:   reg.Bools.Get(status.EngineDepleted),
		statPhase:      reg.Labels.Get(status.EnginePhase),
	}
	d.clock.Pause()
	d.scheduler = NewClockScheduler(d.clock, opts.TickInterval, func() { d.Step() })
	d.publishLocked()

	return d, nil
}

// OnTick registers a listener, called outside the driver lock in registration order
func (d *Driver) OnTick(fn TickListener) {
	d.listenMu.Lock()
	defer d.listenMu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Start launches the fixed-timestep scheduler
func (d *Driver) Start() {
	d.scheduler.Start()
}

// Stop halts the scheduler; the world is left as is
func (d *Driver) Stop() {
	d.scheduler.Stop()
}

// Run drives the scheduler until ctx is cancelled
func (d *Driver) Run(ctx context.Context) error {
	d.Start()
	<-ctx.Done()
	d.Stop()
	return nil
}

// Snapshot returns the latest published snapshot
func (d *Driver) Snapshot() *Snapshot {
	return d.snapshot.Load()
}

// Phase returns the simulation phase
func (d *Driver) Phase() colony.Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sim.Phase()
}

// Play starts a new run from stopped or resumes a paused one
func (d *Driver) Play() error {
	return d.control(func() error {
		fresh := d.sim.Phase() == colony.PhaseStopped
		if err := d.sim.Start(); err != nil {
			return err
		}
		if fresh {
			d.beginRunLocked("run started")
		} else {
			d.logger.Debug("run resumed", zap.String("run_id", d.runID))
		}
		d.clock.Resume()
		return nil
	})
}

// Pause suspends a running simulation
func (d *Driver) Pause() error {
	return d.control(func() error {
		if err := d.sim.Pause(); err != nil {
			return err
		}
		d.clock.Pause()
		d.logger.Debug("run paused", zap.String("run_id", d.runID))
		return nil
	})
}

// TogglePause pauses a running simulation, otherwise plays it
func (d *Driver) TogglePause() error {
	if d.Phase() == colony.PhaseRunning {
		return d.Pause()
	}
	return d.Play()
}

// Reset discards the current world and starts a fresh run
func (d *Driver) Reset() error {
	err := d.control(func() error {
		d.sim.Stop()
		if err := d.sim.Start(); err != nil {
			return err
		}
		d.beginRunLocked("run reset")
		d.clock.Resume()
		return nil
	})
	if err == nil {
		d.scheduler.Resync()
	}
	return err
}

// Resize re-initializes the world at new bounds and keeps the current phase
func (d *Driver) Resize(width, height float64) error {
	return d.control(func() error {
		if err := d.sim.Resize(colony.Bounds{Width: width, Height: height}); err != nil {
			return err
		}
		if d.sim.World() != nil {
			d.beginRunLocked("run resized")
		}
		return nil
	})
}

// Step advances one fixed timestep when running
// Returns false without ticking in any other phase
func (d *Driver) Step() (colony.TickReport, bool) {
	d.mu.Lock()
	if d.sim.Phase() != colony.PhaseRunning {
		d.mu.Unlock()
		return colony.TickReport{}, false
	}

	start := time.Now()
	report, err := d.sim.Tick(d.dt)
	if err != nil {
		d.mu.Unlock()
		d.logger.Error("tick failed", zap.String("run_id", d.runID), zap.Error(err))
		return colony.TickReport{}, false
	}
	d.statTickMS.Smooth(float64(time.Since(start).Microseconds())/1000, 0.1)
	d.statPickups.Add(int64(report.Pickups))
	d.statDeliveries.Add(int64(report.Deliveries))

	w := d.sim.World()
	if report.Deliveries > 0 {
		d.logger.Debug("food delivered",
			zap.String("run_id", d.runID),
			zap.Uint64("tick", report.Tick),
			zap.Int("delivered", report.Delivered),
			zap.Int("collected", w.Collected()))
	}
	switch {
	case d.opts.PauseWhenDepleted && !d.pausedDepleted && w.Depleted():
		d.pausedDepleted = true
		d.autoPauseLocked("colony depleted", w)
	case d.opts.PauseWhenDelivered && !d.pausedDelivered && finished(w):
		d.pausedDelivered = true
		d.autoPauseLocked("colony finished", w)
	}

	snap := d.publishLocked()
	d.mu.Unlock()

	d.notify(snap, report)
	return report, true
}

func (d *Driver) autoPauseLocked(msg string, w *colony.World) {
	_ = d.sim.Pause()
	d.clock.Pause()
	d.logger.Info(msg,
		zap.String("run_id", d.runID),
		zap.Uint64("ticks", w.Ticks()),
		zap.Int("collected", w.Collected()),
		zap.Int("carried", w.TotalFood()-w.Collected()-w.RemainingFood()))
}

// RunFor ticks without real-time pacing until the driver pauses itself, every unit of food is home, or maxTicks elapse
// maxTicks of zero means no limit; a stopped simulation is started first
func (d *Driver) RunFor(ctx context.Context, maxTicks uint64) (Summary, error) {
	if d.Phase() == colony.PhaseStopped {
		if err := d.Play(); err != nil {
			return Summary{}, err
		}
	}

	for n := uint64(0); maxTicks == 0 || n < maxTicks; n++ {
		if err := ctx.Err(); err != nil {
			return d.summary(), err
		}
		if _, ok := d.Step(); !ok {
			break
		}
		if snap := d.Snapshot(); snap.Finished || snap.Phase != colony.PhaseRunning.String() {
			break
		}
	}
	return d.summary(), nil
}

func (d *Driver) summary() Summary {
	snap := d.Snapshot()
	return Summary{
		RunID:        snap.RunID,
		Ticks:        snap.Tick,
		Collected:    snap.Collected,
		Remaining:    snap.Remaining,
		Total:        snap.Total,
		HomeDeposits: snap.HomeDepositCount,
		FoodDeposits: snap.FoodDepositCount,
		Depleted:     snap.Depleted,
		Finished:     snap.Finished,
	}
}

// control runs fn under the lock, then publishes and notifies on success
func (d *Driver) control(fn func() error) error {
	d.mu.Lock()
	if err := fn(); err != nil {
		d.mu.Unlock()
		return err
	}
	snap := d.publishLocked()
	d.mu.Unlock()

	d.notify(snap, colony.TickReport{})
	return nil
}

// beginRunLocked tags a freshly initialized world with a new run ID
func (d *Driver) beginRunLocked(msg string) {
	d.runID = uuid.NewString()
	d.pausedDepleted = false
	d.pausedDelivered = false
	w := d.sim.World()
	d.statTicks.Store(0)
	d.statPickups.Store(0)
	d.statDeliveries.Store(0)
	d.logger.Info(msg,
		zap.String("run_id", d.runID),
		zap.Uint64("seed", d.sim.Seed()-1),
		zap.Float64("width", w.Bounds().Width),
		zap.Float64("height", w.Bounds().Height),
		zap.Int("agents", w.AgentCount()),
		zap.Int("food_total", w.TotalFood()),
		zap.Int("placement_fallbacks", w.PlacementFallbacks()))
}

// publishLocked refreshes gauges and stores a new snapshot
func (d *Driver) publishLocked() *Snapshot {
	snap := newSnapshot(d.runID, d.sim, d.opts.SnapshotDeposits, d.opts.SnapshotTrail)

	if d.statPhase.Store(snap.Phase) {
		d.logger.Debug("phase changed", zap.String("run_id", d.runID), zap.String("phase", snap.Phase))
	}
	d.statTicks.Store(int64(snap.Tick))
	d.statCollected.Store(int64(snap.Collected))
	d.statRemaining.Store(int64(snap.Remaining))
	d.statHome.Store(int64(snap.HomeDepositCount))
	d.statFood.Store(int64(snap.FoodDepositCount))
	d.statDepleted.Store(snap.Depleted)

	d.snapshot.Store(snap)
	return snap
}

func (d *Driver) notify(snap *Snapshot, report colony.TickReport) {
	d.listenMu.RLock()
	defer d.listenMu.RUnlock()
	for _, fn := range d.listeners {
		fn(snap, report)
	}
}
