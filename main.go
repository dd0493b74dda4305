package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pthm-cable/cosim/config"
	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/sim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one simulation and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	// CLI flags
	fs := flag.NewFlagSet("cosim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logJSON := fs.Bool("log-json", false, "Emit JSON log lines instead of text")
	debug := fs.Bool("debug", false, "Enable debug logging (one line per snapshot)")
	outputDir := fs.String("output-dir", "", "Snapshot directory (default: config path without extension)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: cosim [flags] [config file]\n\n")
		fmt.Fprintf(fs.Output(), "The config file defaults to %s.\n\n", config.DefaultPath)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return fault.Config.ExitCode()
	}

	configPath := config.DefaultPath
	if fs.NArg() > 0 {
		configPath = fs.Arg(0)
	}

	// Set up slog
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(stderr, opts)
	if *logJSON {
		handler = slog.NewJSONHandler(stdout, opts)
	}
	logger := slog.New(handler)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		return fault.KindOf(err).ExitCode()
	}
	if *outputDir != "" {
		cfg.SetOutputDir(*outputDir)
	}

	d := sim.New(cfg, sim.Options{Logger: logger})
	logger.Info("starting run",
		"run", d.RunID(),
		"config", configPath,
		"backend", cfg.Compute.Backend,
		"steps", cfg.Run.StepCount,
		"output_step_count", cfg.Run.OutputStepCount,
		"output_dir", d.OutputDir(),
	)

	runErr := d.Execute()
	if err := d.Close(); err != nil {
		logger.Warn("releasing resources", "error", err)
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "cosim: %v\n", runErr)
		return fault.KindOf(runErr).ExitCode()
	}
	return 0
}
