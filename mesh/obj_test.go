package mesh_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/mesh"
	"github.com/pthm-cable/cosim/mesh/meshtest"
)

func TestParseCube(t *testing.T) {
	m, err := mesh.Parse(strings.NewReader(meshtest.CubeOBJ))
	require.NoError(t, err)

	assert.Len(t, m.Vertices, 8)
	assert.Equal(t, 12, m.FaceCount())
	// first quad "1 4 3 2" becomes (0,3,2) and (0,2,1)
	assert.Equal(t, []uint32{0, 3, 2, 0, 2, 1}, m.Indices[:6])
}

func TestParseFaceReferenceForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1
f 1//1 2//1 3//1
f -3 -2 -1
`
	m, err := mesh.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 3, m.FaceCount())
	for i := 0; i < 3; i++ {
		assert.Equal(t, []uint32{0, 1, 2}, m.Indices[3*i:3*i+3])
	}

	a, b, c, err := m.Triangle(2)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{}, a)
	assert.Equal(t, r3.Vec{X: 1}, b)
	assert.Equal(t, r3.Vec{Y: 1}, c)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"short vertex", "v 0 0\n"},
		{"bad float", "v 0 x 0\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mesh.Parse(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestTriangleOutOfRange(t *testing.T) {
	m, err := mesh.Parse(strings.NewReader(meshtest.CubeOBJ))
	require.NoError(t, err)
	_, _, _, err = m.Triangle(12)
	assert.Error(t, err)
}

func TestLoadKinds(t *testing.T) {
	dir := t.TempDir()

	_, err := mesh.Load(filepath.Join(dir, "missing.obj"))
	assert.Equal(t, fault.Config, fault.KindOf(err))

	bad := filepath.Join(dir, "bad.obj")
	require.NoError(t, os.WriteFile(bad, []byte("v 0 0 0\n"), 0644))
	_, err = mesh.Load(bad)
	assert.Equal(t, fault.Geometry, fault.KindOf(err))

	m, err := mesh.Load(meshtest.WriteCube(t, dir))
	require.NoError(t, err)
	assert.Equal(t, 12, m.FaceCount())
}
