//go:build !opencl

package compute

import "github.com/pthm-cable/cosim/fault"

func newOpenCLBackend() (Backend, error) {
	return nil, fault.Newf(fault.Device, "selecting backend", "OpenCL support is not enabled; rebuild with -tags opencl")
}

func openCLPlatforms() ([]Platform, error) {
	return nil, fault.Newf(fault.Device, "enumerating devices", "OpenCL support is not enabled; rebuild with -tags opencl")
}
