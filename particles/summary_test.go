package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(NewState(0), r3.Vec{})
	assert.Equal(t, CloudSummary{}, s)
}

func TestSummarizeShell(t *testing.T) {
	// two particles on opposite sides, one flying out and one falling in
	st := NewState(2)
	require.NoError(t, st.Set(0, Particle{
		Pos: [Stride]float64{2, 0, 0, 0},
		Vel: [Stride]float64{3, 0, 0, 0},
	}))
	require.NoError(t, st.Set(1, Particle{
		Pos: [Stride]float64{-4, 0, 0, 0},
		Vel: [Stride]float64{0, 1, 0, 0},
	}))

	s := Summarize(st, r3.Vec{})
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, -1, s.Centroid.X, 1e-12)
	assert.InDelta(t, 3, s.MeanRadius, 1e-12)
	assert.InDelta(t, 2, s.MinRadius, 1e-12)
	assert.InDelta(t, 4, s.MaxRadius, 1e-12)
	assert.Greater(t, s.StdRadius, 0.0)
	assert.InDelta(t, 2, s.MeanSpeed, 1e-12)
	assert.InDelta(t, 3, s.MaxSpeed, 1e-12)
	// only the first particle moves radially
	assert.InDelta(t, 1.5, s.MeanRadialVelocity, 1e-12)
}

func TestSummarizeOffsetCenter(t *testing.T) {
	st := NewState(1)
	require.NoError(t, st.Set(0, Particle{Pos: [Stride]float64{10, 10, 10, 0}}))

	s := Summarize(st, r3.Vec{X: 10, Y: 10, Z: 10})
	assert.Zero(t, s.MeanRadius)
	assert.Zero(t, s.StdRadius)
	assert.Zero(t, s.MeanRadialVelocity)
}
