// Package mesh loads triangulated body shapes from Wavefront OBJ files.
package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cosim/fault"
)

// Mesh is a triangle mesh. Indices holds three vertex indices per face in
// file order; polygons are fan-triangulated on load.
type Mesh struct {
	Vertices []r3.Vec
	Indices  []uint32
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three vertices of face i.
func (m *Mesh) Triangle(i int) (a, b, c r3.Vec, err error) {
	if i < 0 || i >= m.FaceCount() {
		return a, b, c, fmt.Errorf("face %d out of range [0, %d)", i, m.FaceCount())
	}
	for k, dst := range [3]*r3.Vec{&a, &b, &c} {
		vi := m.Indices[3*i+k]
		if int(vi) >= len(m.Vertices) {
			return a, b, c, fmt.Errorf("face %d references vertex %d, mesh has %d", i, vi, len(m.Vertices))
		}
		*dst = m.Vertices[vi]
	}
	return a, b, c, nil
}

// Load reads an OBJ file. Failures to open the file are configuration
// errors; malformed content is a geometry error.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.New(fault.Config, "opening mesh", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fault.New(fault.Geometry, "parsing "+path, err)
	}
	return m, nil
}

// Parse reads OBJ statements from r. Only "v" and "f" are interpreted.
func Parse(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var xyz [3]float64
			for k := range xyz {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				xyz[k] = v
			}
			m.Vertices = append(m.Vertices, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			poly := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := vertexIndex(ref, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				poly = append(poly, idx)
			}
			// fan triangulation keeps the polygon's winding
			for k := 1; k+1 < len(poly); k++ {
				m.Indices = append(m.Indices, poly[0], poly[k], poly[k+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if m.FaceCount() == 0 {
		return nil, fmt.Errorf("mesh has no faces")
	}
	return m, nil
}

// vertexIndex resolves a face reference ("i", "i/t", "i//n", "i/t/n") to a
// 0-based vertex index. Negative indices count back from the last vertex.
func vertexIndex(ref string, vertexCount int) (uint32, error) {
	head, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n += vertexCount
	default:
		return 0, fmt.Errorf("vertex reference 0 is invalid")
	}
	if n < 0 || n >= vertexCount {
		return 0, fmt.Errorf("vertex reference %q out of range (%d vertices)", ref, vertexCount)
	}
	return uint32(n), nil
}
