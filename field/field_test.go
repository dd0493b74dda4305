package field

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/mesh"
	"github.com/pthm-cable/cosim/mesh/meshtest"
)

func cubeFaces(t *testing.T) []FaceDescriptor {
	t.Helper()
	m, err := mesh.Parse(strings.NewReader(meshtest.CubeOBJ))
	require.NoError(t, err)
	faces, err := Build(m)
	require.NoError(t, err)
	return faces
}

func TestBuildCube(t *testing.T) {
	faces := cubeFaces(t)
	require.Len(t, faces, 12)

	for i, f := range faces {
		assert.InDelta(t, 1.0, r3.Norm(f.Normal), 1e-12, "face %d normal not unit", i)
		assert.Equal(t, f.Loop[0], f.Loop[3], "face %d loop not closed", i)

		// centroid lies on the face plane, which is the cube surface
		assert.InDelta(t, 0.5, r3.Dot(f.Centroid, f.Normal), 1e-12, "face %d", i)

		// outward winding: normal points away from the body centre
		assert.Greater(t, r3.Dot(f.Normal, f.Centroid), 0.0, "face %d", i)
	}
}

func TestDescribeWinding(t *testing.T) {
	a := r3.Vec{}
	b := r3.Vec{X: 1}
	c := r3.Vec{Y: 1}

	fd, err := Describe(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: 1}, fd.Normal)
	assert.InDelta(t, 1.0/3.0, fd.Centroid.X, 1e-15)
	assert.InDelta(t, 1.0/3.0, fd.Centroid.Y, 1e-15)
	assert.Equal(t, [LoopLen]r3.Vec{a, b, c, a}, fd.Loop)

	flipped, err := Describe(a, c, b)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: -1}, flipped.Normal)
}

func TestDescribeDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c r3.Vec
	}{
		{"coincident", r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{X: 1}},
		{"collinear", r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2}},
		{"repeated vertex", r3.Vec{}, r3.Vec{}, r3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Describe(tt.a, tt.b, tt.c)
			assert.Error(t, err)
		})
	}
}

func TestBuildDegenerateIsGeometryError(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {X: 2}, {Y: 1}},
		Indices:  []uint32{0, 1, 3, 0, 1, 2},
	}
	_, err := Build(m)
	require.Error(t, err)
	assert.Equal(t, fault.Geometry, fault.KindOf(err))
	assert.Contains(t, err.Error(), "face 1")
}

func TestFlatten(t *testing.T) {
	faces := cubeFaces(t)

	normals := FlattenNormals(faces)
	loops := FlattenLoops(faces)
	require.Len(t, normals, 3*len(faces))
	require.Len(t, loops, 3*LoopLen*len(faces))

	for i, f := range faces {
		assert.Equal(t, []float64{f.Normal.X, f.Normal.Y, f.Normal.Z}, normals[3*i:3*i+3])
		base := 12 * i
		assert.Equal(t, []float64{f.Loop[0].X, f.Loop[0].Y, f.Loop[0].Z}, loops[base:base+3])
		assert.Equal(t, loops[base:base+3], loops[base+9:base+12])
	}
}

func TestSummarizeCube(t *testing.T) {
	s := Summarize(cubeFaces(t), 1000)

	assert.Equal(t, 12, s.Faces)
	assert.InDelta(t, 6.0, s.SurfaceArea, 1e-12)
	assert.InDelta(t, 1.0, s.Volume, 1e-12)
	assert.InDelta(t, 1000.0, s.Mass, 1e-9)
	assert.InDelta(t, 0.8660254037844386, s.Extent, 1e-12)
}
