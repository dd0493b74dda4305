package compute

import (
	"log/slog"

	"github.com/pthm-cable/cosim/fault"
)

// Stride is the number of float64 components per particle: x, y, z, w.
const Stride = 4

// Arg is a kernel argument slot. The values are the positional indices
// of the device program's parameter list.
type Arg int

const (
	ArgPosIn Arg = iota
	ArgVelIn
	ArgPosOut
	ArgVelOut
	ArgFaceNormals
	ArgFaceLoops
	ArgParticleCount
	ArgFaceCount
	ArgVerticesPerFace
	ArgDeltaT
	ArgAngularFrequency
	ArgGravityDensity

	numArgs
)

var argNames = [numArgs]string{
	"pos_in", "vel_in", "pos_out", "vel_out",
	"face_normals", "face_loops",
	"particle_count", "face_count", "vertices_per_face",
	"delta_t", "angular_frequency", "gravity_density",
}

func (a Arg) String() string {
	if a < 0 || a >= numArgs {
		return "unknown"
	}
	return argNames[a]
}

// Invariants are the kernel arguments bound once at initialization.
type Invariants struct {
	ParticleCount    int
	FaceCount        int
	VerticesPerFace  int
	DeltaT           float64 // s
	AngularFrequency float64 // rad/s about +z
	GravityDensity   float64 // G * density
}

// Validate checks the counts and step size.
func (inv Invariants) Validate() error {
	switch {
	case inv.ParticleCount <= 0:
		return fault.Newf(fault.Config, "binding invariants", "particle count must be positive, got %d", inv.ParticleCount)
	case inv.FaceCount <= 0:
		return fault.Newf(fault.Config, "binding invariants", "face count must be positive, got %d", inv.FaceCount)
	case inv.VerticesPerFace != 3:
		return fault.Newf(fault.Config, "binding invariants", "vertices per face must be 3, got %d", inv.VerticesPerFace)
	case !(inv.DeltaT > 0):
		return fault.Newf(fault.Config, "binding invariants", "delta t must be positive, got %g", inv.DeltaT)
	}
	return nil
}

// NormalsLen is the length of the flattened face normal buffer.
func (inv Invariants) NormalsLen() int { return 3 * inv.FaceCount }

// LoopsLen is the length of the flattened vertex loop buffer.
func (inv Invariants) LoopsLen() int { return 3 * (inv.VerticesPerFace + 1) * inv.FaceCount }

// ParticleLen is the length of one particle buffer.
func (inv Invariants) ParticleLen() int { return Stride * inv.ParticleCount }

func (inv Invariants) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("particles", inv.ParticleCount),
		slog.Int("faces", inv.FaceCount),
		slog.Float64("dt", inv.DeltaT),
		slog.Float64("omega", inv.AngularFrequency),
		slog.Float64("g_rho", inv.GravityDensity),
	)
}

// FaceData is the read-only face source data, flattened for transfer.
type FaceData struct {
	Normals []float64 // 3 per face
	Loops   []float64 // 12 per face: A, B, C, A
}

func (f FaceData) check(inv Invariants) error {
	if len(f.Normals) != inv.NormalsLen() || len(f.Loops) != inv.LoopsLen() {
		return fault.Newf(fault.Device, "uploading face data",
			"face buffers hold %d/%d values, want %d/%d",
			len(f.Normals), len(f.Loops), inv.NormalsLen(), inv.LoopsLen())
	}
	return nil
}

// BufferPair is the per-step binding of the read and write buffers.
type BufferPair struct {
	PosIn, VelIn   []float64
	PosOut, VelOut []float64
}
