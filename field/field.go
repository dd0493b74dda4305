// Package field converts a triangle mesh into the per-face source
// descriptors consumed by the integration kernel.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/mesh"
)

// LoopLen is the number of vertices in a face's closed vertex loop.
const LoopLen = 4

// degenerateTol bounds |AB x AC| relative to |AB||AC| below which a
// triangle counts as collinear.
const degenerateTol = 1e-12

// FaceDescriptor summarises one mesh triangle. Normal is unit length;
// Loop is A, B, C, A.
type FaceDescriptor struct {
	Normal   r3.Vec
	Centroid r3.Vec
	Loop     [LoopLen]r3.Vec
}

// Describe builds the descriptor of triangle A, B, C.
func Describe(a, b, c r3.Vec) (FaceDescriptor, error) {
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	cross := r3.Cross(ab, ac)
	norm := r3.Norm(cross)
	scale := r3.Norm(ab) * r3.Norm(ac)
	if !(norm > degenerateTol*scale) || math.IsInf(norm, 0) {
		return FaceDescriptor{}, fmt.Errorf("degenerate triangle %v %v %v", a, b, c)
	}
	return FaceDescriptor{
		Normal:   r3.Scale(1/norm, cross),
		Centroid: r3.Scale(1.0/3.0, r3.Add(r3.Add(a, b), c)),
		Loop:     [LoopLen]r3.Vec{a, b, c, a},
	}, nil
}

// Build produces one descriptor per triangle of m, in face order. A
// degenerate triangle fails the whole build.
func Build(m *mesh.Mesh) ([]FaceDescriptor, error) {
	n := m.FaceCount()
	faces := make([]FaceDescriptor, n)
	for i := 0; i < n; i++ {
		a, b, c, err := m.Triangle(i)
		if err != nil {
			return nil, fault.New(fault.Geometry, "building face sources", err)
		}
		fd, err := Describe(a, b, c)
		if err != nil {
			return nil, fault.New(fault.Geometry, "building face sources", fmt.Errorf("face %d: %w", i, err))
		}
		faces[i] = fd
	}
	return faces, nil
}

// FlattenNormals packs normals as x, y, z per face for device upload.
func FlattenNormals(faces []FaceDescriptor) []float64 {
	out := make([]float64, 0, 3*len(faces))
	for _, f := range faces {
		out = append(out, f.Normal.X, f.Normal.Y, f.Normal.Z)
	}
	return out
}

// FlattenLoops packs vertex loops as 4 vertices x 3 coordinates per face.
func FlattenLoops(faces []FaceDescriptor) []float64 {
	out := make([]float64, 0, 3*LoopLen*len(faces))
	for _, f := range faces {
		for _, v := range f.Loop {
			out = append(out, v.X, v.Y, v.Z)
		}
	}
	return out
}
