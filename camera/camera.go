// Package camera provides an orbit camera for viewing a body and its
// particle cloud.
package camera

import "math"

// Camera orbits a target point at a fixed distance.
// Yaw rotates about the world Z axis, pitch tilts toward it.
type Camera struct {
	// Target is the orbit center in world coordinates
	TargetX, TargetY, TargetZ float32

	// Yaw and Pitch in radians
	Yaw, Pitch float32

	// Distance from target
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Vertical field of view in degrees
	FOVY float32
}

// maxPitch keeps the camera off the poles where the up vector degenerates.
const maxPitch = 1.55

// New creates a camera looking at the origin from distance.
func New(distance float32) *Camera {
	c := &Camera{
		Yaw:         math.Pi / 4,
		Pitch:       0.4,
		Distance:    distance,
		MinDistance: distance / 100,
		MaxDistance: distance * 100,
		FOVY:        45,
	}
	c.clampDistance()
	return c
}

// FitTo centers the camera on a bounding sphere and backs off far enough
// to keep the whole sphere in view.
func (c *Camera) FitTo(cx, cy, cz, radius float32) {
	c.TargetX, c.TargetY, c.TargetZ = cx, cy, cz
	if radius <= 0 {
		radius = 1
	}
	half := float64(c.FOVY) / 2 * math.Pi / 180
	d := radius / float32(math.Sin(half))
	c.MinDistance = radius / 10
	c.MaxDistance = d * 50
	c.Distance = d
	c.clampDistance()
}

// Rotate adjusts yaw and pitch by the given deltas in radians.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch += dPitch
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// Zoom scales the orbit distance. Factors above 1 move closer.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance /= factor
	c.clampDistance()
}

// Position returns the camera eye point in world coordinates.
func (c *Camera) Position() (x, y, z float32) {
	cp := float32(math.Cos(float64(c.Pitch)))
	sp := float32(math.Sin(float64(c.Pitch)))
	cy := float32(math.Cos(float64(c.Yaw)))
	sy := float32(math.Sin(float64(c.Yaw)))
	x = c.TargetX + c.Distance*cp*cy
	y = c.TargetY + c.Distance*cp*sy
	z = c.TargetZ + c.Distance*sp
	return x, y, z
}

func (c *Camera) clampDistance() {
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}
