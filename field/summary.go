package field

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// Summary holds bulk properties of the closed body described by the faces.
type Summary struct {
	Faces       int
	SurfaceArea float64 // m^2
	Volume      float64 // m^3, signed; positive for outward winding
	Mass        float64 // kg
	Extent      float64 // largest vertex distance from the origin, m
}

// Summarize integrates area and enclosed volume over the faces. Volume uses
// the divergence theorem with the origin as apex, so it is only meaningful
// for closed meshes.
func Summarize(faces []FaceDescriptor, density float64) Summary {
	s := Summary{Faces: len(faces)}
	for _, f := range faces {
		a, b, c := f.Loop[0], f.Loop[1], f.Loop[2]
		s.SurfaceArea += 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
		s.Volume += r3.Dot(a, r3.Cross(b, c)) / 6
		for _, v := range f.Loop[:3] {
			if d := r3.Norm(v); d > s.Extent {
				s.Extent = d
			}
		}
	}
	s.Mass = density * s.Volume
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("faces", s.Faces),
		slog.Float64("area_m2", s.SurfaceArea),
		slog.Float64("volume_m3", s.Volume),
		slog.Float64("mass_kg", s.Mass),
		slog.Float64("extent_m", s.Extent),
	)
}
