// Command oclinfo lists the compute platforms and devices cosim can select
// with compute.platform_id and compute.device_id.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pthm-cable/cosim/compute"
	"github.com/pthm-cable/cosim/fault"
)

func main() {
	backend := flag.String("backend", compute.BackendOpenCL, "Backend to enumerate (opencl or cpu)")
	extensions := flag.Bool("extensions", true, "Print device extension lists")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	platforms, err := compute.Devices(*backend)
	if err != nil {
		slog.Error("enumerating devices", "backend", *backend, "error", err)
		os.Exit(fault.KindOf(err).ExitCode())
	}
	if len(platforms) == 0 {
		fmt.Println("No platforms found")
		return
	}
	printPlatforms(os.Stdout, platforms, *extensions)
}

func printPlatforms(w io.Writer, platforms []compute.Platform, extensions bool) {
	for _, p := range platforms {
		fmt.Fprintf(w, "Platform %d: %s\n", p.Index, p.Name)
		fmt.Fprintf(w, "  Vendor:   %s\n", p.Vendor)
		fmt.Fprintf(w, "  Version:  %s\n", p.Version)
		fmt.Fprintf(w, "  Profile:  %s\n", p.Profile)
		if len(p.Devices) == 0 {
			fmt.Fprintln(w, "  (no devices)")
		}
		for _, d := range p.Devices {
			fmt.Fprintf(w, "  Device %d: %s\n", d.Index, d.Name)
			fmt.Fprintf(w, "    Vendor:         %s\n", d.Vendor)
			fmt.Fprintf(w, "    Profile:        %s\n", d.Profile)
			fmt.Fprintf(w, "    Version:        %s\n", d.Version)
			fmt.Fprintf(w, "    Driver version: %s\n", d.DriverVersion)
			fmt.Fprintf(w, "    Compute units:  %d\n", d.ComputeUnits)
			if d.GlobalMemory > 0 {
				fmt.Fprintf(w, "    Global memory:  %d MiB\n", d.GlobalMemory>>20)
			}
			if extensions && d.Extensions != "" {
				fmt.Fprintln(w, "    Extensions:")
				for _, ext := range strings.Fields(d.Extensions) {
					fmt.Fprintf(w, "      %s\n", ext)
				}
			}
		}
		fmt.Fprintln(w)
	}
}
