// Snapshot viewer - orbit around the body and step through a run's
// particle snapshots.
//
// Usage: go run ./cmd/covis [-mesh body.obj] <snapshot dir>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cosim/camera"
	"github.com/pthm-cable/cosim/config"
	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/mesh"
	"github.com/pthm-cable/cosim/particles"
	"github.com/pthm-cable/cosim/snapshot"
	"github.com/pthm-cable/cosim/ui"
)

const (
	windowWidth  = 1280
	windowHeight = 800
	panelWidth   = 260
)

// viewer holds the loaded run and playback state.
type viewer struct {
	mesh    *mesh.Mesh
	meshSrc string
	entries []snapshot.Entry

	index   int
	current *particles.State
	summary particles.CloudSummary

	playing bool
	elapsed float32
	rate    float32 // snapshots per second
}

func main() {
	meshPath := flag.String("mesh", "", "Body OBJ file (default: body.obj_file from <dir>/config.yaml)")
	rate := flag.Float64("rate", 10, "Playback rate in snapshots per second")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <snapshot dir>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(fault.Config.ExitCode())
	}
	dir := flag.Arg(0)

	v, err := load(dir, *meshPath)
	if err != nil {
		slog.Error("loading run", "dir", dir, "error", err)
		os.Exit(fault.KindOf(err).ExitCode())
	}
	v.rate = float32(*rate)
	slog.Info("run loaded", "dir", dir, "mesh", v.meshSrc, "faces", v.mesh.FaceCount(), "snapshots", len(v.entries))

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(windowWidth, windowHeight, "cosim - "+filepath.Base(dir))
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	cam := camera.New(1)
	cx, cy, cz, radius := bounds(v.mesh)
	cam.FitTo(cx, cy, cz, radius*2)

	hud := ui.NewHUD()
	panel := ui.NewCloudPanel(windowWidth-panelWidth-10, 10, panelWidth)

	if err := v.show(0); err != nil {
		slog.Error("reading snapshot", "error", err)
		os.Exit(fault.KindOf(err).ExitCode())
	}

	for !rl.WindowShouldClose() {
		screenW := int32(rl.GetScreenWidth())
		screenH := int32(rl.GetScreenHeight())
		panel.SetPosition(screenW-panelWidth-10, 10)

		handleInput(cam, v, screenW)
		if err := v.advance(rl.GetFrameTime()); err != nil {
			slog.Warn("reading snapshot", "error", err)
			v.playing = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 10, G: 12, B: 16, A: 255})

		rl.BeginMode3D(toRaylib(cam))
		drawMesh(v.mesh)
		drawParticles(v.current, v.summary)
		rl.EndMode3D()

		hud.Draw(ui.HUDData{
			Title:         "Comet Dust Viewer",
			Mesh:          v.meshSrc,
			Faces:         v.mesh.FaceCount(),
			Step:          v.entries[v.index].Step,
			SnapshotIndex: v.index,
			SnapshotCount: len(v.entries),
			FPS:           rl.GetFPS(),
			Playing:       v.playing,
		})
		panel.Draw(ui.CloudPanelData{Summary: v.summary, Progress: v.progress()})

		drawTimeline(v, screenW, screenH)
		hud.DrawControls(screenH, "Drag: orbit | Wheel: zoom | Space: play/pause | Left/Right: step | F: fit")

		rl.EndDrawing()
	}
}

// load reads the mesh and the snapshot index for a run directory.
func load(dir, meshPath string) (*viewer, error) {
	entries, err := snapshot.List(dir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fault.Newf(fault.IO, "listing snapshots", "no snapshot files in %s", dir)
	}

	if meshPath == "" {
		cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
		if err != nil {
			return nil, err
		}
		meshPath = cfg.Body.ObjFile
	}
	m, err := mesh.Load(meshPath)
	if err != nil {
		return nil, err
	}
	return &viewer{mesh: m, meshSrc: meshPath, entries: entries}, nil
}

// show loads snapshot i and recomputes the cloud statistics.
func (v *viewer) show(i int) error {
	if i < 0 {
		i = 0
	}
	if i >= len(v.entries) {
		i = len(v.entries) - 1
	}
	s, err := snapshot.Read(v.entries[i].Path)
	if err != nil {
		return err
	}
	v.index = i
	v.current = s
	v.summary = particles.Summarize(s, r3.Vec{})
	return nil
}

func (v *viewer) advance(dt float32) error {
	if !v.playing || v.rate <= 0 {
		return nil
	}
	v.elapsed += dt
	period := 1 / v.rate
	if v.elapsed < period {
		return nil
	}
	v.elapsed = 0
	next := v.index + 1
	if next >= len(v.entries) {
		v.playing = false
		return nil
	}
	return v.show(next)
}

func (v *viewer) progress() float32 {
	if len(v.entries) < 2 {
		return 1
	}
	return float32(v.index) / float32(len(v.entries)-1)
}

func handleInput(cam *camera.Camera, v *viewer, screenW int32) {
	mouse := rl.GetMousePosition()
	overPanel := mouse.X > float32(screenW-panelWidth-10)

	if rl.IsMouseButtonDown(rl.MouseLeftButton) && !overPanel && mouse.Y < float32(rl.GetScreenHeight()-70) {
		d := rl.GetMouseDelta()
		cam.Rotate(-d.X*0.005, d.Y*0.005)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.Zoom(1 + wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.playing = !v.playing
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		v.step(1)
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		v.step(-1)
	}
	if rl.IsKeyPressed(rl.KeyF) {
		cx, cy, cz, r := bounds(v.mesh)
		if v.summary.MaxRadius > float64(r) {
			r = float32(v.summary.MaxRadius)
		}
		cam.FitTo(cx, cy, cz, r)
	}
}

func (v *viewer) step(delta int) {
	v.playing = false
	if err := v.show(v.index + delta); err != nil {
		slog.Warn("reading snapshot", "error", err)
	}
}

func drawTimeline(v *viewer, screenW, screenH int32) {
	y := float32(screenH - 60)

	label := "Play"
	if v.playing {
		label = "Pause"
	}
	if gui.Button(rl.Rectangle{X: 10, Y: y, Width: 80, Height: 24}, label) {
		v.playing = !v.playing
	}

	if len(v.entries) < 2 {
		return
	}
	last := len(v.entries) - 1
	pos := gui.SliderBar(
		rl.Rectangle{X: 140, Y: y + 2, Width: float32(screenW) - 260, Height: 20},
		"0", fmt.Sprintf("%d", v.entries[last].Step),
		float32(v.index), 0, float32(last),
	)
	if i := int(pos + 0.5); i != v.index {
		v.playing = false
		if err := v.show(i); err != nil {
			slog.Warn("reading snapshot", "error", err)
		}
	}
}

func toRaylib(c *camera.Camera) rl.Camera3D {
	x, y, z := c.Position()
	return rl.Camera3D{
		Position:   rl.Vector3{X: x, Y: y, Z: z},
		Target:     rl.Vector3{X: c.TargetX, Y: c.TargetY, Z: c.TargetZ},
		Up:         rl.Vector3{X: 0, Y: 0, Z: 1},
		Fovy:       c.FOVY,
		Projection: rl.CameraPerspective,
	}
}

func vec(p r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
}

// bounds returns the vertex centroid and the largest distance from it.
func bounds(m *mesh.Mesh) (cx, cy, cz, radius float32) {
	if len(m.Vertices) == 0 {
		return 0, 0, 0, 1
	}
	var c r3.Vec
	for _, p := range m.Vertices {
		c = r3.Add(c, p)
	}
	c = r3.Scale(1/float64(len(m.Vertices)), c)
	var r float64
	for _, p := range m.Vertices {
		if d := r3.Norm(r3.Sub(p, c)); d > r {
			r = d
		}
	}
	return float32(c.X), float32(c.Y), float32(c.Z), float32(r)
}

func drawMesh(m *mesh.Mesh) {
	wire := rl.Color{R: 90, G: 110, B: 130, A: 255}
	for i := 0; i < m.FaceCount(); i++ {
		a, b, c, err := m.Triangle(i)
		if err != nil {
			continue
		}
		va, vb, vc := vec(a), vec(b), vec(c)
		rl.DrawLine3D(va, vb, wire)
		rl.DrawLine3D(vb, vc, wire)
		rl.DrawLine3D(vc, va, wire)
	}
}

// drawParticles colors outbound particles warm and infalling ones cool.
func drawParticles(s *particles.State, sum particles.CloudSummary) {
	if s == nil {
		return
	}
	size := float32(sum.MeanRadius) * 0.004
	if size <= 0 {
		size = 0.01
	}
	th := ui.DefaultTheme()
	out, in := th.Outbound, th.Inbound
	for i := 0; i < s.Len(); i++ {
		p, err := s.At(i)
		if err != nil {
			break
		}
		pos := p.PosVec()
		col := out
		if r3.Dot(pos, p.VelVec()) < 0 {
			col = in
		}
		rl.DrawCube(vec(pos), size, size, size, col)
	}
}
