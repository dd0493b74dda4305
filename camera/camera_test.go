package camera

import (
	"math"
	"testing"
)

func dist(c *Camera) float64 {
	x, y, z := c.Position()
	dx := float64(x - c.TargetX)
	dy := float64(y - c.TargetY)
	dz := float64(z - c.TargetZ)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func TestNew(t *testing.T) {
	cam := New(10)

	if cam.TargetX != 0 || cam.TargetY != 0 || cam.TargetZ != 0 {
		t.Errorf("expected target at origin, got (%f, %f, %f)", cam.TargetX, cam.TargetY, cam.TargetZ)
	}
	if math.Abs(dist(cam)-10) > 1e-4 {
		t.Errorf("expected eye 10 from target, got %f", dist(cam))
	}
}

func TestPositionAxes(t *testing.T) {
	cam := New(5)
	cam.Yaw, cam.Pitch = 0, 0

	x, y, z := cam.Position()
	if math.Abs(float64(x-5)) > 1e-5 || math.Abs(float64(y)) > 1e-5 || math.Abs(float64(z)) > 1e-5 {
		t.Errorf("yaw 0 pitch 0: expected (5,0,0), got (%f,%f,%f)", x, y, z)
	}

	cam.Rotate(math.Pi/2, 0)
	x, y, _ = cam.Position()
	if math.Abs(float64(x)) > 1e-5 || math.Abs(float64(y-5)) > 1e-5 {
		t.Errorf("yaw pi/2: expected (0,5,0), got (%f,%f)", x, y)
	}
}

func TestPitchClamped(t *testing.T) {
	cam := New(5)
	cam.Rotate(0, 10)
	if cam.Pitch != maxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", maxPitch, cam.Pitch)
	}
	cam.Rotate(0, -20)
	if cam.Pitch != -maxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", -maxPitch, cam.Pitch)
	}
}

func TestZoomClamped(t *testing.T) {
	cam := New(10)

	cam.Zoom(2)
	if math.Abs(float64(cam.Distance-5)) > 1e-5 {
		t.Errorf("expected distance 5 after zoom 2x, got %f", cam.Distance)
	}

	cam.Zoom(1e6)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.Zoom(1e-9)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}

	before := cam.Distance
	cam.Zoom(0)
	if cam.Distance != before {
		t.Error("zero zoom factor should be ignored")
	}
}

func TestFitTo(t *testing.T) {
	cam := New(1)
	cam.FitTo(100, -50, 20, 1000)

	if cam.TargetX != 100 || cam.TargetY != -50 || cam.TargetZ != 20 {
		t.Errorf("expected target (100,-50,20), got (%f,%f,%f)", cam.TargetX, cam.TargetY, cam.TargetZ)
	}
	// sphere must fit inside the vertical field of view
	half := float64(cam.FOVY) / 2 * math.Pi / 180
	if got := math.Asin(1000 / dist(cam)); got > half+1e-4 {
		t.Errorf("sphere subtends %f rad, exceeds half fov %f", got, half)
	}

	cam.FitTo(0, 0, 0, 0)
	if cam.Distance <= 0 {
		t.Errorf("expected positive distance for empty body, got %f", cam.Distance)
	}
}
