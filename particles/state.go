// Package particles holds host-side particle state buffers and the initial
// seeding policy.
package particles

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Stride is the number of float64 components per particle in a buffer:
// x, y, z and a reserved w.
const Stride = 4

// Particle is one particle's position and velocity, w components included.
type Particle struct {
	Pos [Stride]float64
	Vel [Stride]float64
}

// PosVec returns the xyz part of the position.
func (p Particle) PosVec() r3.Vec { return r3.Vec{X: p.Pos[0], Y: p.Pos[1], Z: p.Pos[2]} }

// VelVec returns the xyz part of the velocity.
func (p Particle) VelVec() r3.Vec { return r3.Vec{X: p.Vel[0], Y: p.Vel[1], Z: p.Vel[2]} }

// State is a fixed-length pair of position and velocity buffers laid out
// as Stride values per particle. The length never changes after creation.
type State struct {
	n   int
	pos []float64
	vel []float64
}

// NewState allocates zeroed buffers for n particles.
func NewState(n int) *State {
	if n < 0 {
		n = 0
	}
	return &State{
		n:   n,
		pos: make([]float64, Stride*n),
		vel: make([]float64, Stride*n),
	}
}

// FromBuffers wraps existing buffers. Both must hold exactly n particles.
func FromBuffers(n int, pos, vel []float64) (*State, error) {
	if len(pos) != Stride*n || len(vel) != Stride*n {
		return nil, fmt.Errorf("buffers hold %d/%d values, want %d for %d particles",
			len(pos), len(vel), Stride*n, n)
	}
	return &State{n: n, pos: pos, vel: vel}, nil
}

// Len returns the particle count.
func (s *State) Len() int { return s.n }

// Positions returns the backing position buffer for bulk transfer.
func (s *State) Positions() []float64 { return s.pos }

// Velocities returns the backing velocity buffer for bulk transfer.
func (s *State) Velocities() []float64 { return s.vel }

// At returns particle i.
func (s *State) At(i int) (Particle, error) {
	var p Particle
	if i < 0 || i >= s.n {
		return p, fmt.Errorf("particle %d out of range [0, %d)", i, s.n)
	}
	copy(p.Pos[:], s.pos[Stride*i:Stride*(i+1)])
	copy(p.Vel[:], s.vel[Stride*i:Stride*(i+1)])
	return p, nil
}

// Set overwrites particle i.
func (s *State) Set(i int, p Particle) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("particle %d out of range [0, %d)", i, s.n)
	}
	copy(s.pos[Stride*i:Stride*(i+1)], p.Pos[:])
	copy(s.vel[Stride*i:Stride*(i+1)], p.Vel[:])
	return nil
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := NewState(s.n)
	copy(c.pos, s.pos)
	copy(c.vel, s.vel)
	return c
}
