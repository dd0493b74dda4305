package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panels and fields with a shared theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

func (r *Renderer) drawLabel(x, y int32, label string) {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
}

// drawBar fills a bar track. A signed bar grows left or right of its
// center; otherwise it grows from the left edge.
func (r *Renderer) drawBar(x, y, width int32, v float64, signed bool) {
	th := r.Theme
	rl.DrawRectangle(x, y+2, width, th.BarHeight, th.BarBg)
	if !signed {
		rl.DrawRectangle(x, y+2, int32(float64(width)*clampUnit(v, 0)), th.BarHeight, th.BarFill)
		return
	}
	v = clampUnit(v, -1)
	center := x + width/2
	fill := int32(float64(width/2) * v)
	col := th.Outbound
	if fill < 0 {
		col = th.Inbound
		center += fill
		fill = -fill
	}
	rl.DrawRectangle(center, y+2, fill, th.BarHeight, col)
	rl.DrawLine(x+width/2, y+1, x+width/2, y+3+th.BarHeight, th.PanelBorder)
}

// DrawField draws one field row and returns the next row's Y.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	th := r.Theme
	r.drawLabel(x, y, fd.Label)
	text := FieldText(fd, data)
	valueX := x + th.LabelWidth

	switch fd.Widget {
	case WidgetSignedBar, WidgetProgress:
		textW := rl.MeasureText(text, th.FontSize)
		barW := width - th.LabelWidth - textW - 6
		r.drawBar(valueX, y, barW, fd.Value(data), fd.Widget == WidgetSignedBar)
		valueX += barW + 6
	}
	rl.DrawText(text, valueX, y, th.FontSize, th.ValueColor)
	return y + th.LineHeight
}

// DrawSection draws a section header and its fields, returning the Y
// below the last row.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Title != "" {
		rl.DrawText(sd.Title, x, y, r.Theme.HeaderSize, r.Theme.SectionHeader)
		y += r.Theme.LineHeight
	}
	for _, fd := range sd.Fields {
		y = r.DrawField(x, y, fd, data, width)
	}
	return y
}
