// Package ui provides a descriptor-driven panel system for the viewer.
// Panels are defined as sections of field descriptors that extract their
// values from the data passed in at draw time.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText      WidgetType = iota // Text from the field's Text getter
	WidgetQuantity                    // Physical value with SI-prefixed unit
	WidgetSignedBar                   // Ratio in [-1, +1], filled from the center
	WidgetProgress                    // Fraction in [0, 1]
)

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID     string
	Label  string
	Widget WidgetType
	Unit   string // base SI unit for quantities ("m", "m/s")
	Signed bool   // quantities print an explicit sign

	Value func(any) float64 // numeric widgets
	Text  func(any) string  // WidgetText
}

// SectionDescriptor defines a group of fields with an optional header.
type SectionDescriptor struct {
	ID      string
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool // nil = always visible
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	Outbound      rl.Color // positive signed values
	Inbound       rl.Color // negative signed values
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	BarHeight     int32
	FontSize      int32
	HeaderSize    int32
	SectionGap    int32
}

// DefaultTheme returns the default UI theme. Outbound and inbound match
// the particle colors of the viewer.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:   rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader: rl.Yellow,
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		BarBg:         rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:       rl.Color{R: 100, G: 150, B: 200, A: 255},
		Outbound:      rl.Color{R: 250, G: 180, B: 90, A: 255},
		Inbound:       rl.Color{R: 110, G: 170, B: 250, A: 255},
		Padding:       10,
		LineHeight:    16,
		LabelWidth:    80,
		BarHeight:     12,
		FontSize:      12,
		HeaderSize:    14,
		SectionGap:    6,
	}
}
