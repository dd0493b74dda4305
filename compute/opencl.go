//go:build opencl

package compute

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/pthm-cable/cosim/fault"
)

const float64Size = int(unsafe.Sizeof(float64(0)))

// openCLBackend runs the integration program on an OpenCL device with
// double-precision buffers and a profiling-enabled queue.
type openCLBackend struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	pos     [2]*cl.MemObject // indexed by Slot
	vel     [2]*cl.MemObject
	normals *cl.MemObject
	loops   *cl.MemObject

	inv        Invariants
	deviceName string
	completed  int
	uploaded   bool
}

func newOpenCLBackend() (Backend, error) {
	return &openCLBackend{}, nil
}

func getPlatforms() ([]*cl.Platform, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fault.New(fault.Device, msg, err)
	}
	return platforms, nil
}

func platformDevices(p *cl.Platform) ([]*cl.Device, error) {
	devices, err := p.GetDevices(cl.DeviceTypeAll)
	if err != nil && !errors.Is(err, cl.ErrDeviceNotFound) {
		return nil, err
	}
	return devices, nil
}

func openCLPlatforms() ([]Platform, error) {
	platforms, err := getPlatforms()
	if err != nil {
		return nil, err
	}
	out := make([]Platform, 0, len(platforms))
	for i, p := range platforms {
		info := Platform{
			Index:      i,
			Name:       p.Name(),
			Vendor:     p.Vendor(),
			Version:    p.Version(),
			Profile:    p.Profile(),
			Extensions: p.Extensions(),
		}
		devices, err := platformDevices(p)
		if err != nil {
			return nil, fault.New(fault.Device, fmt.Sprintf("querying devices of platform %d", i), err)
		}
		for j, d := range devices {
			info.Devices = append(info.Devices, Device{
				Index:         j,
				Name:          d.Name(),
				Vendor:        d.Vendor(),
				Version:       d.Version(),
				DriverVersion: d.DriverVersion(),
				Profile:       d.Profile(),
				ComputeUnits:  d.MaxComputeUnits(),
				GlobalMemory:  d.GlobalMemSize(),
				Extensions:    d.Extensions(),
			})
		}
		out = append(out, info)
	}
	return out, nil
}

func (b *openCLBackend) selectDevice(sel Selector) (*cl.Device, error) {
	platforms, err := getPlatforms()
	if err != nil {
		return nil, err
	}
	if sel.Platform < 0 || sel.Platform >= len(platforms) {
		return nil, fault.Newf(fault.Config, "selecting platform",
			"platform index %d out of range (%d available)", sel.Platform, len(platforms))
	}
	devices, err := platformDevices(platforms[sel.Platform])
	if err != nil {
		return nil, fault.New(fault.Device, "querying devices", err)
	}
	if sel.Device < 0 || sel.Device >= len(devices) {
		return nil, fault.Newf(fault.Config, "selecting device",
			"device index %d out of range (%d available on platform %d)", sel.Device, len(devices), sel.Platform)
	}
	return devices[sel.Device], nil
}

func (b *openCLBackend) Initialize(sel Selector, src KernelSource, inv Invariants) error {
	if b.context != nil {
		return fault.Newf(fault.Device, "initializing opencl backend", "already initialized")
	}
	if err := inv.Validate(); err != nil {
		return err
	}
	device, err := b.selectDevice(sel)
	if err != nil {
		return err
	}
	if src.Source == "" {
		src.Source = referenceProgram
	}
	if src.Entry == "" {
		src.Entry = DefaultEntry
	}

	if err := b.build(device, src); err != nil {
		b.Close()
		return err
	}
	if err := b.allocate(inv); err != nil {
		b.Close()
		return err
	}
	b.inv = inv
	if err := b.bindInvariants(); err != nil {
		b.Close()
		return fault.New(fault.Device, "binding invariant arguments", err)
	}
	b.deviceName = fmt.Sprintf("%s (%s)", device.Name(), device.Version())
	return nil
}

func (b *openCLBackend) build(device *cl.Device, src KernelSource) error {
	var err error
	b.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return fault.New(fault.Device, "creating OpenCL context", err)
	}
	b.queue, err = b.context.CreateCommandQueue(device, cl.CommandQueueProfilingEnable)
	if err != nil {
		return fault.New(fault.Device, "creating OpenCL command queue", err)
	}
	b.program, err = b.context.CreateProgramWithSource([]string{src.Source})
	if err != nil {
		return fault.New(fault.Device, "creating OpenCL program", err)
	}
	if err := b.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		var buildErr cl.BuildError
		if errors.As(err, &buildErr) {
			return fault.Newf(fault.Device, "building OpenCL program", "%s", string(buildErr))
		}
		return fault.New(fault.Device, "building OpenCL program", err)
	}
	b.kernel, err = b.program.CreateKernel(src.Entry)
	if err != nil {
		return fault.New(fault.Device, fmt.Sprintf("creating kernel %q", src.Entry), err)
	}
	return nil
}

func (b *openCLBackend) allocate(inv Invariants) error {
	particleBytes := inv.ParticleLen() * float64Size
	for s := range b.pos {
		var err error
		if b.pos[s], err = b.context.CreateEmptyBuffer(cl.MemReadWrite, particleBytes); err != nil {
			return fault.New(fault.Device, fmt.Sprintf("allocating position buffer %s", Slot(s)), err)
		}
		if b.vel[s], err = b.context.CreateEmptyBuffer(cl.MemReadWrite, particleBytes); err != nil {
			return fault.New(fault.Device, fmt.Sprintf("allocating velocity buffer %s", Slot(s)), err)
		}
	}
	var err error
	if b.normals, err = b.context.CreateEmptyBuffer(cl.MemReadOnly, inv.NormalsLen()*float64Size); err != nil {
		return fault.New(fault.Device, "allocating face normal buffer", err)
	}
	if b.loops, err = b.context.CreateEmptyBuffer(cl.MemReadOnly, inv.LoopsLen()*float64Size); err != nil {
		return fault.New(fault.Device, "allocating face loop buffer", err)
	}
	return nil
}

func (b *openCLBackend) setDouble(arg Arg, v float64) error {
	return b.kernel.SetArgUnsafe(int(arg), float64Size, unsafe.Pointer(&v))
}

func (b *openCLBackend) bindInvariants() error {
	if err := b.kernel.SetArgBuffer(int(ArgFaceNormals), b.normals); err != nil {
		return fmt.Errorf("%s: %w", ArgFaceNormals, err)
	}
	if err := b.kernel.SetArgBuffer(int(ArgFaceLoops), b.loops); err != nil {
		return fmt.Errorf("%s: %w", ArgFaceLoops, err)
	}
	ints := []struct {
		arg Arg
		v   int
	}{
		{ArgParticleCount, b.inv.ParticleCount},
		{ArgFaceCount, b.inv.FaceCount},
		{ArgVerticesPerFace, b.inv.VerticesPerFace},
	}
	for _, a := range ints {
		if err := b.kernel.SetArgInt32(int(a.arg), int32(a.v)); err != nil {
			return fmt.Errorf("%s: %w", a.arg, err)
		}
	}
	doubles := []struct {
		arg Arg
		v   float64
	}{
		{ArgDeltaT, b.inv.DeltaT},
		{ArgAngularFrequency, b.inv.AngularFrequency},
		{ArgGravityDensity, b.inv.GravityDensity},
	}
	for _, a := range doubles {
		if err := b.setDouble(a.arg, a.v); err != nil {
			return fmt.Errorf("%s: %w", a.arg, err)
		}
	}
	return nil
}

func (b *openCLBackend) write(buf *cl.MemObject, data []float64) error {
	if len(data) == 0 {
		return nil
	}
	_, err := b.queue.EnqueueWriteBuffer(buf, true, 0, len(data)*float64Size, unsafe.Pointer(&data[0]), nil)
	return err
}

func (b *openCLBackend) read(buf *cl.MemObject, data []float64) error {
	if len(data) == 0 {
		return nil
	}
	_, err := b.queue.EnqueueReadBuffer(buf, true, 0, len(data)*float64Size, unsafe.Pointer(&data[0]), nil)
	return err
}

func (b *openCLBackend) current() Slot { return CurrentSlot(b.completed) }

func (b *openCLBackend) UploadInitialState(pos, vel, normals, loops []float64) error {
	if b.kernel == nil {
		return fault.Newf(fault.Device, "uploading initial state", "backend not initialized")
	}
	if err := checkLength("uploading initial state", b.inv.ParticleCount, b.inv.ParticleCount, pos, vel); err != nil {
		return err
	}
	if err := (FaceData{Normals: normals, Loops: loops}).check(b.inv); err != nil {
		return err
	}
	s := b.current()
	n := b.inv.ParticleLen()
	for _, w := range []struct {
		name string
		buf  *cl.MemObject
		data []float64
	}{
		{"positions", b.pos[s], pos[:n]},
		{"velocities", b.vel[s], vel[:n]},
		{"face normals", b.normals, normals},
		{"face loops", b.loops, loops},
	} {
		if err := b.write(w.buf, w.data); err != nil {
			return fault.New(fault.Device, "writing "+w.name, err)
		}
	}
	b.uploaded = true
	return nil
}

func (b *openCLBackend) UploadParticles(count int, pos, vel []float64) error {
	if b.kernel == nil {
		return fault.Newf(fault.Device, "uploading particles", "backend not initialized")
	}
	if err := checkLength("uploading particles", count, b.inv.ParticleCount, pos, vel); err != nil {
		return err
	}
	s := b.current()
	if err := b.write(b.pos[s], pos[:Stride*count]); err != nil {
		return fault.New(fault.Device, "writing positions", err)
	}
	if err := b.write(b.vel[s], vel[:Stride*count]); err != nil {
		return fault.New(fault.Device, "writing velocities", err)
	}
	return b.finish()
}

func (b *openCLBackend) DownloadParticles(count int, pos, vel []float64) error {
	if b.kernel == nil {
		return fault.Newf(fault.Device, "downloading particles", "backend not initialized")
	}
	if err := checkLength("downloading particles", count, b.inv.ParticleCount, pos, vel); err != nil {
		return err
	}
	s := b.current()
	if err := b.read(b.pos[s], pos[:Stride*count]); err != nil {
		return fault.New(fault.Device, "reading positions", err)
	}
	if err := b.read(b.vel[s], vel[:Stride*count]); err != nil {
		return fault.New(fault.Device, "reading velocities", err)
	}
	return b.finish()
}

func (b *openCLBackend) finish() error {
	if err := b.queue.Finish(); err != nil {
		return fault.New(fault.Device, "finishing queue", err)
	}
	return nil
}

func (b *openCLBackend) DispatchStep(step int) (time.Duration, error) {
	if !b.uploaded {
		return 0, fault.Newf(fault.Device, "dispatching step", "initial state not uploaded")
	}
	if err := checkDispatch(step, b.current()); err != nil {
		return 0, err
	}
	r := RoleFor(step)
	for _, a := range []struct {
		arg Arg
		buf *cl.MemObject
	}{
		{ArgPosIn, b.pos[r.Read]},
		{ArgVelIn, b.vel[r.Read]},
		{ArgPosOut, b.pos[r.Write]},
		{ArgVelOut, b.vel[r.Write]},
	} {
		if err := b.kernel.SetArgBuffer(int(a.arg), a.buf); err != nil {
			return 0, fault.New(fault.Device, fmt.Sprintf("binding %s", a.arg), err)
		}
	}

	ev, err := b.queue.EnqueueNDRangeKernel(b.kernel, nil, []int{b.inv.ParticleCount}, nil, nil)
	if err != nil {
		return 0, fault.New(fault.Device, fmt.Sprintf("enqueueing step %d", step), err)
	}
	defer ev.Release()
	if err := cl.WaitForEvents([]*cl.Event{ev}); err != nil {
		return 0, fault.New(fault.Device, fmt.Sprintf("waiting for step %d", step), err)
	}

	start, err := ev.GetEventProfilingInfo(cl.ProfilingInfoCommandStart)
	if err != nil {
		return 0, fault.New(fault.Device, "reading profiling start", err)
	}
	end, err := ev.GetEventProfilingInfo(cl.ProfilingInfoCommandEnd)
	if err != nil {
		return 0, fault.New(fault.Device, "reading profiling end", err)
	}

	b.completed = step
	return time.Duration(end - start), nil
}

func (b *openCLBackend) DeviceName() string { return b.deviceName }

func (b *openCLBackend) Close() error {
	for _, m := range []**cl.MemObject{&b.loops, &b.normals, &b.vel[1], &b.pos[1], &b.vel[0], &b.pos[0]} {
		if *m != nil {
			(*m).Release()
			*m = nil
		}
	}
	if b.kernel != nil {
		b.kernel.Release()
		b.kernel = nil
	}
	if b.program != nil {
		b.program.Release()
		b.program = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.context != nil {
		b.context.Release()
		b.context = nil
	}
	return nil
}
