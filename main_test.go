package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/cosim/mesh/meshtest"
)

// writeRunConfig writes a flat config file for a one-step cube run.
func writeRunConfig(t *testing.T, dir, meshPath string) string {
	t.Helper()
	text := fmt.Sprintf(`OPENCL_PLATFORM_ID=0
OPENCL_DEVICE_ID=0
STEP_COUNT=2
OUTPUT_STEP_COUNT=1
DELTA_T=1
COMET_OBJ_FILE=%s
COMET_DENSITY=1000
COMET_ANGULAR_FREQUENCY=0
PARTICLE_COUNT=0
PARTICLE_INITIAL_VELOCITY=0
PARTICLE_INITIAL_HEIGHT=1
`, meshPath)
	path := filepath.Join(dir, "comet.cfg")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestRunMissingMesh(t *testing.T) {
	dir := t.TempDir()
	path := writeRunConfig(t, dir, filepath.Join(dir, "absent.obj"))

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "absent.obj")
	_, err := os.Stat(filepath.Join(dir, "comet"))
	assert.True(t, os.IsNotExist(err), "output directory must not be created")
}

func TestRunMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "none.cfg")}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &stdout, &stderr))
	assert.Equal(t, 0, run([]string{"-h"}, &stdout, &stderr))
}

func TestRunCube(t *testing.T) {
	dir := t.TempDir()
	path := writeRunConfig(t, dir, meshtest.WriteCube(t, dir))
	out := filepath.Join(dir, "snapshots")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log-json", "-output-dir", out, path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, name := range []string{"p000000.dat", "p000001.dat", "p000002.dat", "config.yaml"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, stdout.String(), `"msg":"run complete"`)
}
