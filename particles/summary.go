package particles

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// CloudSummary holds bulk statistics of a particle cloud relative to a
// center point, usually the body origin.
type CloudSummary struct {
	Count    int
	Centroid r3.Vec

	MeanRadius, StdRadius float64 // m
	MinRadius, MaxRadius  float64 // m

	MeanSpeed, MaxSpeed float64 // m/s
	// MeanRadialVelocity is positive when the cloud expands.
	MeanRadialVelocity float64 // m/s
}

// Summarize computes cloud statistics for s around center.
func Summarize(s *State, center r3.Vec) CloudSummary {
	n := s.Len()
	out := CloudSummary{Count: n}
	if n == 0 {
		return out
	}

	radii := make([]float64, n)
	speeds := make([]float64, n)
	radial := make([]float64, n)
	for i := 0; i < n; i++ {
		o := i * Stride
		pos := r3.Vec{X: s.pos[o], Y: s.pos[o+1], Z: s.pos[o+2]}
		vel := r3.Vec{X: s.vel[o], Y: s.vel[o+1], Z: s.vel[o+2]}
		out.Centroid = r3.Add(out.Centroid, pos)

		d := r3.Sub(pos, center)
		radii[i] = r3.Norm(d)
		speeds[i] = r3.Norm(vel)
		if radii[i] > 0 {
			radial[i] = r3.Dot(vel, d) / radii[i]
		}
	}
	out.Centroid = r3.Scale(1/float64(n), out.Centroid)

	out.MeanRadius, out.StdRadius = stat.MeanStdDev(radii, nil)
	if n < 2 {
		out.StdRadius = 0
	}
	out.MinRadius = floats.Min(radii)
	out.MaxRadius = floats.Max(radii)
	out.MeanSpeed = stat.Mean(speeds, nil)
	out.MaxSpeed = floats.Max(speeds)
	out.MeanRadialVelocity = stat.Mean(radial, nil)
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (c CloudSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", c.Count),
		slog.Float64("mean_radius_m", c.MeanRadius),
		slog.Float64("max_radius_m", c.MaxRadius),
		slog.Float64("mean_speed_mps", c.MeanSpeed),
		slog.Float64("mean_radial_mps", c.MeanRadialVelocity),
	)
}
