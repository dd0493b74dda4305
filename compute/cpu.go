package compute

import (
	"fmt"
	"runtime"
	"time"

	"github.com/pthm-cable/cosim/fault"
)

// cpuBackend runs a Go kernel on a goroutine pool. It exposes a single
// pseudo-platform with a single device.
type cpuBackend struct {
	pool   *workerPool
	kernel Kernel
	name   string
	inv    Invariants

	pos [2][]float64 // indexed by Slot
	vel [2][]float64

	completed   int
	initialized bool
	uploaded    bool
}

func newCPUBackend(workers int) *cpuBackend {
	return &cpuBackend{pool: newWorkerPool(workers)}
}

func cpuPlatforms() []Platform {
	return []Platform{{
		Index:   0,
		Name:    "Go host",
		Vendor:  runtime.Version(),
		Version: runtime.GOOS + "/" + runtime.GOARCH,
		Profile: "FULL_PROFILE",
		Devices: []Device{{
			Index:        0,
			Name:         "cpu",
			Vendor:       runtime.GOARCH,
			Version:      runtime.Version(),
			Profile:      "FULL_PROFILE",
			ComputeUnits: runtime.NumCPU(),
		}},
	}}
}

func (b *cpuBackend) Initialize(sel Selector, src KernelSource, inv Invariants) error {
	if b.initialized {
		return fault.Newf(fault.Device, "initializing cpu backend", "already initialized")
	}
	if sel.Platform != 0 {
		return fault.Newf(fault.Config, "selecting platform", "platform index %d out of range (1 available)", sel.Platform)
	}
	if sel.Device != 0 {
		return fault.Newf(fault.Config, "selecting device", "device index %d out of range (1 available)", sel.Device)
	}
	if err := inv.Validate(); err != nil {
		return err
	}
	k, err := LookupKernel(src.Name)
	if err != nil {
		return fault.New(fault.Device, "building kernel", err)
	}

	b.kernel = k
	b.inv = inv
	for s := range b.pos {
		b.pos[s] = make([]float64, inv.ParticleLen())
		b.vel[s] = make([]float64, inv.ParticleLen())
	}
	if src.Name == "" {
		src.Name = DefaultKernel
	}
	b.name = fmt.Sprintf("cpu (%d workers, kernel %s)", b.pool.numWorkers, src.Name)
	b.initialized = true
	return nil
}

func (b *cpuBackend) current() Slot { return CurrentSlot(b.completed) }

func (b *cpuBackend) UploadInitialState(pos, vel, normals, loops []float64) error {
	if !b.initialized {
		return fault.Newf(fault.Device, "uploading initial state", "backend not initialized")
	}
	if err := checkLength("uploading initial state", b.inv.ParticleCount, b.inv.ParticleCount, pos, vel); err != nil {
		return err
	}
	faces := FaceData{
		Normals: append([]float64(nil), normals...),
		Loops:   append([]float64(nil), loops...),
	}
	if err := b.kernel.Bind(b.inv, faces); err != nil {
		return fault.New(fault.Device, "binding kernel", err)
	}
	s := b.current()
	copy(b.pos[s], pos[:b.inv.ParticleLen()])
	copy(b.vel[s], vel[:b.inv.ParticleLen()])
	b.uploaded = true
	b.pool.start(b.kernel)
	return nil
}

func (b *cpuBackend) UploadParticles(count int, pos, vel []float64) error {
	if !b.initialized {
		return fault.Newf(fault.Device, "uploading particles", "backend not initialized")
	}
	if err := checkLength("uploading particles", count, b.inv.ParticleCount, pos, vel); err != nil {
		return err
	}
	s := b.current()
	copy(b.pos[s], pos[:Stride*count])
	copy(b.vel[s], vel[:Stride*count])
	return nil
}

func (b *cpuBackend) DownloadParticles(count int, pos, vel []float64) error {
	if !b.initialized {
		return fault.Newf(fault.Device, "downloading particles", "backend not initialized")
	}
	if err := checkLength("downloading particles", count, b.inv.ParticleCount, pos, vel); err != nil {
		return err
	}
	s := b.current()
	copy(pos[:Stride*count], b.pos[s])
	copy(vel[:Stride*count], b.vel[s])
	return nil
}

func (b *cpuBackend) DispatchStep(step int) (time.Duration, error) {
	if !b.uploaded {
		return 0, fault.Newf(fault.Device, "dispatching step", "initial state not uploaded")
	}
	if err := checkDispatch(step, b.current()); err != nil {
		return 0, err
	}
	r := RoleFor(step)
	pair := BufferPair{
		PosIn:  b.pos[r.Read],
		VelIn:  b.vel[r.Read],
		PosOut: b.pos[r.Write],
		VelOut: b.vel[r.Write],
	}

	start := time.Now()
	b.pool.run(pair, b.inv.ParticleCount)
	elapsed := time.Since(start)

	b.completed = step
	return elapsed, nil
}

func (b *cpuBackend) DeviceName() string { return b.name }

func (b *cpuBackend) Close() error {
	b.pool.stop()
	return nil
}
