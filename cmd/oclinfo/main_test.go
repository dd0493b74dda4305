package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pthm-cable/cosim/compute"
)

func TestPrintPlatforms(t *testing.T) {
	platforms := []compute.Platform{{
		Index:   0,
		Name:    "Test Platform",
		Vendor:  "ACME",
		Version: "OpenCL 3.0",
		Devices: []compute.Device{{
			Index:        0,
			Name:         "Widget",
			ComputeUnits: 8,
			GlobalMemory: 2 << 30,
			Extensions:   "cl_khr_fp64 cl_khr_icd",
		}},
	}, {
		Index: 1,
		Name:  "Empty",
	}}

	var buf bytes.Buffer
	printPlatforms(&buf, platforms, true)
	out := buf.String()

	for _, want := range []string{
		"Platform 0: Test Platform",
		"Device 0: Widget",
		"Compute units:  8",
		"Global memory:  2048 MiB",
		"      cl_khr_fp64\n",
		"Platform 1: Empty",
		"(no devices)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printPlatforms(&buf, platforms, false)
	if strings.Contains(buf.String(), "cl_khr_fp64") {
		t.Error("extensions printed with extensions disabled")
	}
}

func TestPrintCPUPlatform(t *testing.T) {
	platforms, err := compute.Devices(compute.BackendCPU)
	if err != nil {
		t.Fatalf("Devices(cpu): %v", err)
	}
	var buf bytes.Buffer
	printPlatforms(&buf, platforms, true)
	if !strings.Contains(buf.String(), "Device 0: cpu") {
		t.Errorf("cpu device not listed:\n%s", buf.String())
	}
}
