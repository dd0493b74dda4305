package ui

import (
	"fmt"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cosim/particles"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Mesh          string
	Faces         int
	Step          int
	SnapshotIndex int
	SnapshotCount int
	FPS           int32
	Playing       bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Body: %s | Faces: %d", filepath.Base(data.Mesh), data.Faces),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Step: %d | Snapshot: %d/%d | FPS: %d", data.Step, data.SnapshotIndex+1, data.SnapshotCount, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "PAUSED"
	if data.Playing {
		status = "Playing"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// CloudPanelData is the data behind the particle cloud panel.
type CloudPanelData struct {
	Summary  particles.CloudSummary
	Progress float32 // position in the snapshot series, [0, 1]
}

func cloud(data any) particles.CloudSummary { return data.(CloudPanelData).Summary }

// RadialRatio is the mean radial velocity over the fastest particle's
// speed: +1 when the whole cloud streams outward, -1 when it falls back.
func RadialRatio(c particles.CloudSummary) float64 {
	if c.MaxSpeed == 0 {
		return 0
	}
	return c.MeanRadialVelocity / c.MaxSpeed
}

// CloudSections describes the particle cloud panel. Radius and motion rows
// are hidden while the snapshot holds no particles.
func CloudSections() []SectionDescriptor {
	populated := func(d any) bool { return cloud(d).Count > 0 }
	return []SectionDescriptor{
		{
			ID:    "cloud",
			Title: "Particle Cloud",
			Fields: []FieldDescriptor{
				{ID: "count", Label: "Particles", Widget: WidgetText,
					Text: func(d any) string { return fmt.Sprintf("%d", cloud(d).Count) }},
			},
		},
		{
			ID:      "radius",
			Title:   "Distance",
			Visible: populated,
			Fields: []FieldDescriptor{
				{ID: "mean_radius", Label: "Mean", Widget: WidgetQuantity, Unit: "m",
					Value: func(d any) float64 { return cloud(d).MeanRadius }},
				{ID: "std_radius", Label: "Spread", Widget: WidgetQuantity, Unit: "m",
					Value: func(d any) float64 { return cloud(d).StdRadius }},
				{ID: "max_radius", Label: "Farthest", Widget: WidgetQuantity, Unit: "m",
					Value: func(d any) float64 { return cloud(d).MaxRadius }},
			},
		},
		{
			ID:      "motion",
			Title:   "Motion",
			Visible: populated,
			Fields: []FieldDescriptor{
				{ID: "speed", Label: "Speed", Widget: WidgetQuantity, Unit: "m/s",
					Value: func(d any) float64 { return cloud(d).MeanSpeed }},
				{ID: "max_speed", Label: "Max speed", Widget: WidgetQuantity, Unit: "m/s",
					Value: func(d any) float64 { return cloud(d).MaxSpeed }},
				{ID: "radial_velocity", Label: "Radial v", Widget: WidgetQuantity, Unit: "m/s", Signed: true,
					Value: func(d any) float64 { return cloud(d).MeanRadialVelocity }},
				{ID: "radial", Label: "Outflow", Widget: WidgetSignedBar,
					Value: func(d any) float64 { return RadialRatio(cloud(d)) }},
			},
		},
		{
			ID: "series",
			Fields: []FieldDescriptor{
				{ID: "progress", Label: "Series", Widget: WidgetProgress,
					Value: func(d any) float64 { return float64(d.(CloudPanelData).Progress) }},
			},
		},
	}
}

// CloudPanel renders particle cloud statistics for the current snapshot.
type CloudPanel struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewCloudPanel creates a new cloud panel.
func NewCloudPanel(x, y, width int32) *CloudPanel {
	return &CloudPanel{
		renderer: NewRenderer(),
		sections: CloudSections(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *CloudPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel sized to the sections visible for data.
func (p *CloudPanel) Draw(data CloudPanelData) {
	r := p.renderer
	th := r.Theme
	visible := VisibleSections(p.sections, data)
	r.DrawPanel(p.x, p.y, p.width, PanelHeight(th, visible))

	y := p.y + th.Padding
	for i, sd := range visible {
		if i > 0 {
			y += th.SectionGap
		}
		y = r.DrawSection(p.x+th.Padding, y, sd, data, p.width-2*th.Padding)
	}
}
