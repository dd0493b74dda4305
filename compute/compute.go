// Package compute binds the integration kernel to an execution device and
// owns the device-resident particle and face buffers.
package compute

import (
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/cosim/fault"
)

// Backend names accepted by New.
const (
	BackendCPU    = "cpu"
	BackendOpenCL = "opencl"
)

// DefaultEntry is the entry point of the embedded OpenCL program.
const DefaultEntry = "integrate_eom"

//go:embed kernels/integrate_eom.cl
var referenceProgram string

// ReferenceProgram returns the OpenCL C source of the built-in kernel.
func ReferenceProgram() string { return referenceProgram }

// Selector picks a platform and a device on it by index.
type Selector struct {
	Platform int
	Device   int
}

func (s Selector) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("platform", s.Platform), slog.Int("device", s.Device))
}

// KernelSource describes the program to compile. Name selects a built-in
// Go kernel on the CPU backend; Source and Entry are used by device
// backends that compile a program.
type KernelSource struct {
	Name   string
	Source string
	Entry  string
}

// Backend is the host-side handle to a compute device. Calls are
// synchronous and must come from a single goroutine.
type Backend interface {
	// Initialize selects the device, compiles the kernel, allocates all
	// buffers and binds the invariant kernel arguments.
	Initialize(sel Selector, src KernelSource, inv Invariants) error

	// UploadInitialState transfers particle state into the current slot
	// and the read-only face data.
	UploadInitialState(pos, vel, normals, loops []float64) error

	// UploadParticles overwrites the first count particles of the current
	// slot.
	UploadParticles(count int, pos, vel []float64) error

	// DownloadParticles copies the first count particles of the current
	// slot into pos and vel.
	DownloadParticles(count int, pos, vel []float64) error

	// DispatchStep runs integration step (1-indexed) and blocks until it
	// completes, returning the measured execution time.
	DispatchStep(step int) (time.Duration, error)

	// DeviceName describes the selected device.
	DeviceName() string

	// Close releases device resources. It is safe to call more than once.
	Close() error
}

// New returns an uninitialized backend by name. workers bounds the CPU
// backend's goroutine pool; zero uses GOMAXPROCS.
func New(name string, workers int) (Backend, error) {
	switch name {
	case BackendCPU, "":
		return newCPUBackend(workers), nil
	case BackendOpenCL:
		return newOpenCLBackend()
	default:
		return nil, fault.Newf(fault.Config, "selecting backend", "unknown compute backend %q", name)
	}
}

// Device describes one enumerable compute device.
type Device struct {
	Index         int
	Name          string
	Vendor        string
	Version       string
	DriverVersion string
	Profile       string
	ComputeUnits  int
	GlobalMemory  int64
	Extensions    string
}

// Platform groups the devices of one driver.
type Platform struct {
	Index      int
	Name       string
	Vendor     string
	Version    string
	Profile    string
	Extensions string
	Devices    []Device
}

// Devices enumerates the platforms and devices a backend can select.
func Devices(backend string) ([]Platform, error) {
	switch backend {
	case BackendCPU, "":
		return cpuPlatforms(), nil
	case BackendOpenCL:
		return openCLPlatforms()
	default:
		return nil, fault.Newf(fault.Config, "enumerating devices", "unknown compute backend %q", backend)
	}
}

// checkLength verifies a host buffer holds at least count particles.
func checkLength(op string, count, capacity int, pos, vel []float64) error {
	if count < 0 || count > capacity {
		return fault.Newf(fault.Device, op, "particle count %d out of range [0, %d]", count, capacity)
	}
	if len(pos) < Stride*count || len(vel) < Stride*count {
		return fault.Newf(fault.Device, op, "host buffers hold %d/%d values, need %d",
			len(pos), len(vel), Stride*count)
	}
	return nil
}

func checkDispatch(step int, current Slot) error {
	if step < 1 {
		return fault.Newf(fault.Device, "dispatching step", "step %d: steps are 1-indexed", step)
	}
	if r := RoleFor(step); r.Read != current {
		return fault.New(fault.Device, "dispatching step",
			fmt.Errorf("step %d reads slot %s but the current state is in slot %s", step, r.Read, current))
	}
	return nil
}
