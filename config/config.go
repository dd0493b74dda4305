// Package config provides loading, validation and provenance output of the
// run configuration.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/cosim/fault"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Physical constants shared by every run.
const (
	G  = 6.67384e-11 // m^3 kg^-1 s^-2
	Pi = math.Pi
)

// VerticesPerFace is fixed: meshes are triangulated on load.
const VerticesPerFace = 3

// DefaultPath is used when no config path is given on the command line.
const DefaultPath = "config.cfg"

// Config holds all run parameters. It is read once at startup and never
// mutated while the run is in progress.
type Config struct {
	Compute   ComputeConfig   `yaml:"compute" gcfg:"compute"`
	Run       RunConfig       `yaml:"run" gcfg:"run"`
	Body      BodyConfig      `yaml:"body" gcfg:"body"`
	Particles ParticlesConfig `yaml:"particles" gcfg:"particles"`
	Telemetry TelemetryConfig `yaml:"telemetry" gcfg:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" gcfg:"-"`
}

// ComputeConfig selects the compute backend and its kernel.
type ComputeConfig struct {
	Backend     string `yaml:"backend" gcfg:"backend"`
	PlatformID  int    `yaml:"platform_id" gcfg:"platform-id"`
	DeviceID    int    `yaml:"device_id" gcfg:"device-id"`
	Workers     int    `yaml:"workers" gcfg:"workers"`           // cpu backend goroutines (0 = GOMAXPROCS)
	Kernel      string `yaml:"kernel" gcfg:"kernel"`             // cpu backend kernel name
	KernelFile  string `yaml:"kernel_file" gcfg:"kernel-file"`   // opencl source (empty = embedded)
	KernelEntry string `yaml:"kernel_entry" gcfg:"kernel-entry"` // opencl kernel function name
}

// RunConfig holds step loop parameters.
type RunConfig struct {
	StepCount       int     `yaml:"step_count" gcfg:"step-count"`
	OutputStepCount int     `yaml:"output_step_count" gcfg:"output-step-count"` // snapshot cadence
	DeltaT          float64 `yaml:"delta_t" gcfg:"delta-t"`                     // s
	OutputDir       string  `yaml:"output_dir" gcfg:"output-dir"`
}

// BodyConfig describes the rotating body.
type BodyConfig struct {
	ObjFile          string  `yaml:"obj_file" gcfg:"obj-file"`
	Density          float64 `yaml:"density" gcfg:"density"`                     // kg/m^3
	AngularFrequency float64 `yaml:"angular_frequency" gcfg:"angular-frequency"` // rad/s about +z
}

// ParticlesConfig holds the seeding policy.
type ParticlesConfig struct {
	Count           int     `yaml:"count" gcfg:"count"`                       // 0 = one per face
	InitialVelocity float64 `yaml:"initial_velocity" gcfg:"initial-velocity"` // m/s
	InitialHeight   float64 `yaml:"initial_height" gcfg:"initial-height"`     // m
}

// TelemetryConfig holds performance reporting parameters.
type TelemetryConfig struct {
	PerfCSV      bool `yaml:"perf_csv" gcfg:"perf-csv"`
	TimingWindow int  `yaml:"timing_window" gcfg:"timing-window"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Path            string  // config file the values were read from
	OutputDir       string  // resolved snapshot directory
	GravityDensity  float64 // G * Body.Density
	VerticesPerFace int
}

// Load reads configuration from path, merging it over the embedded
// defaults. The file must set every required key; defaults only fill
// optional ones. An empty path yields the defaults alone. YAML files are
// chosen by extension; everything else is read as gcfg sections, with flat
// KEY=VALUE files translated first.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fault.New(fault.Config, "reading config file", err)
		}
		var (
			set    keySet
			legacy bool
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			// Unmarshal into same struct - only overwrites fields present in file
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fault.New(fault.Config, "parsing config file", err)
			}
			if set, err = yamlKeys(data); err != nil {
				return nil, fault.New(fault.Config, "parsing config file", err)
			}
		default:
			if set, legacy, err = readINI(cfg, string(data)); err != nil {
				return nil, fault.New(fault.Config, "parsing config file", err)
			}
		}
		if err := checkRequired(set, legacy); err != nil {
			return nil, err
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	cfg.computeDerived(path)
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived("")
	return cfg, nil
}

// resolvePaths makes file references relative to the config file directory.
func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		p = filepath.Join(dir, p)
		// absolute so the provenance copy stays valid from any directory
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	c.Body.ObjFile = resolve(c.Body.ObjFile)
	c.Compute.KernelFile = resolve(c.Compute.KernelFile)
	c.Run.OutputDir = resolve(c.Run.OutputDir)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived(path string) {
	c.Derived.Path = path
	c.Derived.GravityDensity = G * c.Body.Density
	c.Derived.VerticesPerFace = VerticesPerFace

	// Snapshots go next to the config file, named after it
	c.Derived.OutputDir = c.Run.OutputDir
	if c.Derived.OutputDir == "" && path != "" {
		c.Derived.OutputDir = strings.TrimSuffix(path, filepath.Ext(path))
	}
}

// SetOutputDir overrides the snapshot directory after loading.
func (c *Config) SetOutputDir(dir string) {
	c.Run.OutputDir = dir
	c.Derived.OutputDir = dir
}

// Validate checks every parameter the run depends on. It touches the
// filesystem only to confirm the mesh file exists.
func (c *Config) Validate() error {
	const op = "validating config"
	switch c.Compute.Backend {
	case "cpu", "opencl":
	default:
		return fault.Newf(fault.Config, op, "unknown compute backend %q (want cpu or opencl)", c.Compute.Backend)
	}
	if c.Compute.PlatformID < 0 {
		return fault.Newf(fault.Config, op, "platform_id must be >= 0, is %d", c.Compute.PlatformID)
	}
	if c.Compute.DeviceID < 0 {
		return fault.Newf(fault.Config, op, "device_id must be >= 0, is %d", c.Compute.DeviceID)
	}
	if c.Compute.Workers < 0 {
		return fault.Newf(fault.Config, op, "workers must be >= 0, is %d", c.Compute.Workers)
	}
	if c.Run.StepCount <= 0 {
		return fault.Newf(fault.Config, op, "step_count must be positive, is %d", c.Run.StepCount)
	}
	if c.Run.OutputStepCount <= 0 {
		return fault.Newf(fault.Config, op, "output_step_count must be positive, is %d", c.Run.OutputStepCount)
	}
	if !(c.Run.DeltaT > 0) {
		return fault.Newf(fault.Config, op, "delta_t must be positive, is %g", c.Run.DeltaT)
	}
	if !(c.Body.Density > 0) {
		return fault.Newf(fault.Config, op, "density must be positive, is %g", c.Body.Density)
	}
	if c.Particles.Count < 0 {
		return fault.Newf(fault.Config, op, "particle count must be >= 0, is %d", c.Particles.Count)
	}
	if c.Derived.OutputDir == "" {
		return fault.Newf(fault.Config, op, "no output directory: set run.output_dir or load from a file")
	}
	if c.Body.ObjFile == "" {
		return fault.Newf(fault.Config, op, "body obj_file is required")
	}
	info, err := os.Stat(c.Body.ObjFile)
	if err != nil {
		return fault.Newf(fault.Config, op, "input mesh file %q not found: %v", c.Body.ObjFile, err)
	}
	if info.IsDir() {
		return fault.Newf(fault.Config, op, "input mesh file %q is a directory", c.Body.ObjFile)
	}
	if c.Compute.KernelFile != "" {
		if _, err := os.Stat(c.Compute.KernelFile); err != nil {
			return fault.Newf(fault.Config, op, "kernel file %q not found: %v", c.Compute.KernelFile, err)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
