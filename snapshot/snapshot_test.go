package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/particles"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "p000000.dat", FileName(0))
	assert.Equal(t, "p000042.dat", FileName(42))
	assert.Equal(t, "p1234567.dat", FileName(1234567))
}

func TestWriteFormat(t *testing.T) {
	dir := t.TempDir()
	s := particles.NewState(2)
	require.NoError(t, s.Set(0, particles.Particle{
		Pos: [particles.Stride]float64{1, -2.5, 0.125, 0},
		Vel: [particles.Stride]float64{0, 0, 1e-7, 0},
	}))
	require.NoError(t, s.Set(1, particles.Particle{
		Pos: [particles.Stride]float64{1234.5678901, 0, 0, 3},
	}))

	path, err := Writer{Dir: dir}.Write(7, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "p000007.dat"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "1.000000 -2.500000 0.125000 0.000000 0.000000 0.000000 0.000000 0.000000\n" +
		"1234.567890 0.000000 0.000000 3.000000 0.000000 0.000000 0.000000 0.000000\n"
	assert.Equal(t, want, string(data))
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := particles.NewState(3)
	for i := 0; i < 3; i++ {
		f := float64(i)
		require.NoError(t, s.Set(i, particles.Particle{
			Pos: [particles.Stride]float64{f, f + 0.5, -f, 0},
			Vel: [particles.Stride]float64{0.25, 0, f, 0},
		}))
	}

	path, err := Writer{Dir: dir}.Write(0, s)
	require.NoError(t, err)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, s.Positions(), got.Positions())
	assert.Equal(t, s.Velocities(), got.Velocities())
}

func TestWriteMissingDirIsIOError(t *testing.T) {
	w := Writer{Dir: filepath.Join(t.TempDir(), "missing")}
	_, err := w.Write(0, particles.NewState(1))
	require.Error(t, err)
	assert.Equal(t, fault.IO, fault.KindOf(err))
}

func TestReadMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"short.dat": "1 2 3\n",
		"nan.dat":   "1 2 3 4 5 6 7 x\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Read(path)
		assert.Error(t, err, name)
	}

	_, err := Read(filepath.Join(dir, "absent.dat"))
	assert.Equal(t, fault.IO, fault.KindOf(err))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"p000010.dat", "p000000.dat", "p000005.dat", "perf.csv", "p12.dat"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "p000001.dat"), 0o755))

	entries, err := List(dir)
	require.NoError(t, err)

	var steps []int
	for _, e := range entries {
		steps = append(steps, e.Step)
	}
	assert.Equal(t, []int{0, 5, 10}, steps)
	assert.Equal(t, filepath.Join(dir, "p000005.dat"), entries[1].Path)
}
