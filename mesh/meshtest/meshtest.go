// Package meshtest provides small reference meshes for tests.
package meshtest

import (
	"os"
	"path/filepath"
	"testing"
)

// CubeOBJ is a unit cube centred on the origin: 8 vertices, 6 quads that
// triangulate to 12 faces with outward winding.
const CubeOBJ = `# cube
v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 3 4 8 7
f 2 3 7 6
f 1 5 8 4
`

// WriteCube writes CubeOBJ to dir/cube.obj and returns the path.
func WriteCube(tb testing.TB, dir string) string {
	tb.Helper()
	path := filepath.Join(dir, "cube.obj")
	if err := os.WriteFile(path, []byte(CubeOBJ), 0644); err != nil {
		tb.Fatalf("writing cube mesh: %v", err)
	}
	return path
}
