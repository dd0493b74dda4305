package particles

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/field"
)

// ResolveCount applies the default seeding policy: a non-positive request
// means one particle per face.
func ResolveCount(requested, faceCount int) int {
	if requested <= 0 {
		return faceCount
	}
	return requested
}

// Seed places particle p at height above the centroid of face p, moving
// outward along the face normal at speed. The particle count must not
// exceed the face count.
func Seed(requested int, faces []field.FaceDescriptor, height, speed float64) (*State, error) {
	n := ResolveCount(requested, len(faces))
	if n > len(faces) {
		return nil, fault.Newf(fault.Config, "seeding particles",
			"particle count %d exceeds face count %d", n, len(faces))
	}

	s := NewState(n)
	for i := 0; i < n; i++ {
		f := faces[i]
		pos := r3.Add(f.Centroid, r3.Scale(height, f.Normal))
		vel := r3.Scale(speed, f.Normal)
		// w stays zero in both buffers
		o := i * Stride
		s.pos[o], s.pos[o+1], s.pos[o+2] = pos.X, pos.Y, pos.Z
		s.vel[o], s.vel[o+1], s.vel[o+2] = vel.X, vel.Y, vel.Z
	}
	return s, nil
}
