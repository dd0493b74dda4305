package ui

import (
	"fmt"
	"math"
)

var siPrefixes = []struct {
	scale  float64
	prefix string
}{
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "µ"},
}

// FormatQuantity prints v in unit with the largest SI prefix that keeps
// the mantissa at or above one. Zero and non-finite values use the base
// unit.
func FormatQuantity(v float64, unit string, signed bool) string {
	verb := "%.3g %s%s"
	if signed {
		verb = "%+.3g %s%s"
	}
	mag := math.Abs(v)
	if mag == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf(verb, v, "", unit)
	}
	p := siPrefixes[len(siPrefixes)-1]
	for _, cand := range siPrefixes {
		if mag >= cand.scale {
			p = cand
			break
		}
	}
	return fmt.Sprintf(verb, v/p.scale, p.prefix, unit)
}

func clampUnit(v float64, lo float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(1, v))
}

// FieldText returns the value column text for fd.
func FieldText(fd FieldDescriptor, data any) string {
	switch fd.Widget {
	case WidgetText:
		if fd.Text == nil {
			return ""
		}
		return fd.Text(data)
	case WidgetQuantity:
		return FormatQuantity(fd.Value(data), fd.Unit, fd.Signed)
	case WidgetSignedBar:
		return fmt.Sprintf("%+.2f", clampUnit(fd.Value(data), -1))
	case WidgetProgress:
		return fmt.Sprintf("%.0f%%", 100*clampUnit(fd.Value(data), 0))
	}
	return ""
}

// VisibleSections filters sections whose visibility check rejects data.
func VisibleSections(sections []SectionDescriptor, data any) []SectionDescriptor {
	out := make([]SectionDescriptor, 0, len(sections))
	for _, sd := range sections {
		if sd.Visible == nil || sd.Visible(data) {
			out = append(out, sd)
		}
	}
	return out
}

// PanelHeight returns the height needed to draw sections with theme,
// padding included.
func PanelHeight(th Theme, sections []SectionDescriptor) int32 {
	h := 2 * th.Padding
	for i, sd := range sections {
		if i > 0 {
			h += th.SectionGap
		}
		if sd.Title != "" {
			h += th.LineHeight
		}
		h += int32(len(sd.Fields)) * th.LineHeight
	}
	return h
}
