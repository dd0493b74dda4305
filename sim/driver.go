// Package sim drives a particle propagation run: loading the body,
// seeding particles, stepping the compute backend and writing snapshots.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/cosim/compute"
	"github.com/pthm-cable/cosim/config"
	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/field"
	"github.com/pthm-cable/cosim/mesh"
	"github.com/pthm-cable/cosim/particles"
	"github.com/pthm-cable/cosim/snapshot"
	"github.com/pthm-cable/cosim/telemetry"
)

// Options configures a Driver beyond the run configuration.
type Options struct {
	// Backend overrides the backend named in the config. The driver takes
	// ownership and closes it.
	Backend compute.Backend
	Logger  *slog.Logger
	RunID   string // generated when empty
}

// Driver owns the run state machine. It is not safe for concurrent use.
type Driver struct {
	cfg   *config.Config
	log   *slog.Logger
	runID string
	state State

	faces   []field.FaceDescriptor
	summary field.Summary
	host    *particles.State // transfer mirror

	backend compute.Backend
	output  *telemetry.OutputManager
	writer  snapshot.Writer
	timer   *telemetry.KernelTimer

	step      int // completed integration steps
	snapshots int // snapshot files written
	started   time.Time
	wall      time.Duration
}

// New creates a driver in the Uninitialized state.
func New(cfg *config.Config, opts Options) *Driver {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		cfg:     cfg,
		log:     logger.With("run", runID),
		runID:   runID,
		backend: opts.Backend,
		timer:   telemetry.NewKernelTimer(cfg.Telemetry.TimingWindow),
	}
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.state }

// RunID returns the identifier attached to every log line of the run.
func (d *Driver) RunID() string { return d.runID }

// Step returns the number of completed integration steps.
func (d *Driver) Step() int { return d.step }

// Snapshots returns the number of snapshot files written.
func (d *Driver) Snapshots() int { return d.snapshots }

// Faces returns the face sources built by Load.
func (d *Driver) Faces() []field.FaceDescriptor { return d.faces }

// KernelStats returns the timing statistics collected so far.
func (d *Driver) KernelStats() telemetry.KernelStats { return d.timer.Stats() }

// OutputDir returns the snapshot directory.
func (d *Driver) OutputDir() string { return d.cfg.Derived.OutputDir }

func (d *Driver) transition(to State) {
	d.log.Info("state", "from", d.state.String(), "to", to.String())
	d.state = to
}

// fail moves the driver to Failed and returns err unchanged.
func (d *Driver) fail(err error) error {
	if d.state != Failed {
		d.log.Error("run failed", "state", d.state.String(), "kind", fault.KindOf(err).String(), "error", err)
		d.transition(Failed)
	}
	return err
}

func (d *Driver) expect(op string, want State) error {
	if d.state != want {
		return fmt.Errorf("%s: driver is %s, want %s", op, d.state, want)
	}
	return nil
}

// Execute runs every phase in order.
func (d *Driver) Execute() error {
	if err := d.Load(); err != nil {
		return err
	}
	if err := d.Prepare(); err != nil {
		return err
	}
	return d.Run()
}

// Load validates the configuration, builds the face sources and seeds the
// initial particle state. Uninitialized → Loaded.
func (d *Driver) Load() error {
	if err := d.expect("load", Uninitialized); err != nil {
		return err
	}
	if err := d.cfg.Validate(); err != nil {
		return d.fail(err)
	}

	m, err := mesh.Load(d.cfg.Body.ObjFile)
	if err != nil {
		return d.fail(err)
	}
	d.faces, err = field.Build(m)
	if err != nil {
		return d.fail(err)
	}
	d.summary = field.Summarize(d.faces, d.cfg.Body.Density)
	d.log.Info("body loaded",
		"mesh", d.cfg.Body.ObjFile,
		"vertices", len(m.Vertices),
		"body", d.summary,
	)

	p := d.cfg.Particles
	d.host, err = particles.Seed(p.Count, d.faces, p.InitialHeight, p.InitialVelocity)
	if err != nil {
		return d.fail(err)
	}
	d.log.Info("particles seeded",
		"count", d.host.Len(),
		"height_m", p.InitialHeight,
		"velocity_mps", p.InitialVelocity,
	)

	d.transition(Loaded)
	return nil
}

func (d *Driver) invariants() compute.Invariants {
	return compute.Invariants{
		ParticleCount:    d.host.Len(),
		FaceCount:        len(d.faces),
		VerticesPerFace:  d.cfg.Derived.VerticesPerFace,
		DeltaT:           d.cfg.Run.DeltaT,
		AngularFrequency: d.cfg.Body.AngularFrequency,
		GravityDensity:   d.cfg.Derived.GravityDensity,
	}
}

func (d *Driver) kernelSource() (compute.KernelSource, error) {
	src := compute.KernelSource{
		Name:  d.cfg.Compute.Kernel,
		Entry: d.cfg.Compute.KernelEntry,
	}
	if d.cfg.Compute.KernelFile != "" {
		data, err := os.ReadFile(d.cfg.Compute.KernelFile)
		if err != nil {
			return src, fault.New(fault.Config, "reading kernel file", err)
		}
		src.Source = string(data)
	}
	return src, nil
}

// Prepare initializes the backend and uploads the initial state.
// Loaded → DeviceReady.
func (d *Driver) Prepare() error {
	if err := d.expect("prepare", Loaded); err != nil {
		return err
	}

	if d.backend == nil {
		b, err := compute.New(d.cfg.Compute.Backend, d.cfg.Compute.Workers)
		if err != nil {
			return d.fail(err)
		}
		d.backend = b
	}

	src, err := d.kernelSource()
	if err != nil {
		return d.fail(err)
	}
	sel := compute.Selector{Platform: d.cfg.Compute.PlatformID, Device: d.cfg.Compute.DeviceID}
	inv := d.invariants()
	if err := d.backend.Initialize(sel, src, inv); err != nil {
		return d.fail(err)
	}
	d.log.Info("device ready", "device", d.backend.DeviceName(), "selector", sel, "invariants", inv)

	err = d.backend.UploadInitialState(
		d.host.Positions(), d.host.Velocities(),
		field.FlattenNormals(d.faces), field.FlattenLoops(d.faces),
	)
	if err != nil {
		return d.fail(err)
	}

	d.transition(DeviceReady)
	return nil
}

// Run creates the output directory, writes the step-0 snapshot and steps
// the backend to the configured count, writing a snapshot at every
// multiple of the output cadence. DeviceReady → Running → Finished.
func (d *Driver) Run() error {
	if err := d.expect("run", DeviceReady); err != nil {
		return err
	}

	dir := d.cfg.Derived.OutputDir
	om, err := telemetry.NewOutputManager(dir, d.cfg.Telemetry.PerfCSV)
	if err != nil {
		return d.fail(err)
	}
	d.output = om
	d.writer = snapshot.Writer{Dir: dir}
	if err := d.output.WriteConfig(d.cfg); err != nil {
		return d.fail(err)
	}

	d.transition(Running)
	d.started = time.Now()

	if err := d.writeSnapshot(0); err != nil {
		return d.fail(err)
	}

	n, cadence := d.cfg.Run.StepCount, d.cfg.Run.OutputStepCount
	for step := d.step + 1; step <= n; step++ {
		dur, err := d.backend.DispatchStep(step)
		if err != nil {
			return d.fail(err)
		}
		d.timer.Add(dur)
		d.step = step

		if step%cadence == 0 {
			if err := d.checkpoint(step); err != nil {
				return d.fail(err)
			}
		}
	}
	d.wall = time.Since(d.started)

	d.log.Info("run complete",
		"particles", d.host.Len(),
		"steps", d.step,
		"snapshots", d.snapshots,
		"wall", d.wall.Round(time.Millisecond).String(),
		"kernel_avg_s", d.timer.Average().Seconds(),
	)
	d.transition(Finished)
	return nil
}

func (d *Driver) checkpoint(step int) error {
	if err := d.writeSnapshot(step); err != nil {
		return err
	}
	stats := d.timer.Stats()
	d.log.Info("average kernel runtime per step", "step", step, "kernel", stats)
	return d.output.WritePerf(stats.ToCSV(step, d.snapshots-1, time.Since(d.started)))
}

func (d *Driver) writeSnapshot(step int) error {
	if err := d.backend.DownloadParticles(d.host.Len(), d.host.Positions(), d.host.Velocities()); err != nil {
		return err
	}
	path, err := d.writer.Write(step, d.host)
	if err != nil {
		return err
	}
	d.snapshots++
	d.log.Debug("snapshot written", "step", step, "path", path)
	return nil
}

// Extract downloads the current particle state from the backend.
func (d *Driver) Extract() (*particles.State, error) {
	if (d.state != DeviceReady && d.state != Finished) || d.backend == nil {
		return nil, fmt.Errorf("extract: driver is %s", d.state)
	}
	if err := d.backend.DownloadParticles(d.host.Len(), d.host.Positions(), d.host.Velocities()); err != nil {
		return nil, err
	}
	return d.host.Clone(), nil
}

// Inject replaces the current particle state on the backend. The state
// must hold exactly the run's particle count.
func (d *Driver) Inject(s *particles.State) error {
	if (d.state != DeviceReady && d.state != Finished) || d.backend == nil {
		return fmt.Errorf("inject: driver is %s", d.state)
	}
	if s.Len() != d.host.Len() {
		return fault.Newf(fault.Config, "injecting particles",
			"state holds %d particles, run has %d", s.Len(), d.host.Len())
	}
	return d.backend.UploadParticles(s.Len(), s.Positions(), s.Velocities())
}

// Close releases the backend and output files. It is safe in any state.
func (d *Driver) Close() error {
	var errs []error
	if d.backend != nil {
		errs = append(errs, d.backend.Close())
		d.backend = nil
	}
	if d.output != nil {
		errs = append(errs, d.output.Close())
		d.output = nil
	}
	return errors.Join(errs...)
}
