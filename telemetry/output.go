// Package telemetry collects kernel timing statistics and writes the
// run's auxiliary output files.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/cosim/config"
	"github.com/pthm-cable/cosim/fault"
)

// OutputManager owns a run's output directory and its CSV files.
type OutputManager struct {
	dir      string
	perfFile *os.File

	perfHeaderWritten bool
}

// NewOutputManager creates dir, which must not already exist, and opens
// perf.csv inside it when perf is set.
func NewOutputManager(dir string, perf bool) (*OutputManager, error) {
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fault.New(fault.IO, "creating output directory", err)
	}

	om := &OutputManager{dir: dir}
	if perf {
		f, err := os.Create(filepath.Join(dir, "perf.csv"))
		if err != nil {
			return nil, fault.New(fault.IO, "creating perf.csv", err)
		}
		om.perfFile = f
	}
	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	if err := cfg.WriteYAML(filepath.Join(om.dir, "config.yaml")); err != nil {
		return fault.New(fault.IO, "writing config.yaml", err)
	}
	return nil
}

// WritePerf appends a row to perf.csv. It is a no-op when perf output is
// disabled.
func (om *OutputManager) WritePerf(rec PerfRecord) error {
	if om == nil || om.perfFile == nil {
		return nil
	}

	records := []PerfRecord{rec}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fault.New(fault.IO, "writing perf", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fault.New(fault.IO, "writing perf", err)
		}
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil || om.perfFile == nil {
		return nil
	}
	err := om.perfFile.Close()
	om.perfFile = nil
	if err != nil {
		return fmt.Errorf("closing perf.csv: %w", err)
	}
	return nil
}
