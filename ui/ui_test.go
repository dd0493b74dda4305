package ui

import (
	"testing"

	"github.com/pthm-cable/cosim/particles"
)

func sectionIDs(sections []SectionDescriptor) []string {
	ids := make([]string, len(sections))
	for i, sd := range sections {
		ids[i] = sd.ID
	}
	return ids
}

func findField(t *testing.T, id string) FieldDescriptor {
	t.Helper()
	for _, sd := range CloudSections() {
		for _, fd := range sd.Fields {
			if fd.ID == id {
				return fd
			}
		}
	}
	t.Fatalf("no field %q", id)
	return FieldDescriptor{}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		v      float64
		unit   string
		signed bool
		want   string
	}{
		{0, "m", false, "0 m"},
		{2.5, "m", false, "2.5 m"},
		{1234, "m", false, "1.23 km"},
		{2.5e6, "m", false, "2.5 Mm"},
		{0.012, "m/s", false, "12 mm/s"},
		{3e-7, "m/s", false, "0.3 µm/s"},
		{-4200, "m", false, "-4.2 km"},
		{0.5, "m/s", true, "+500 mm/s"},
		{-0.5, "m/s", true, "-500 mm/s"},
	}

	for _, tt := range tests {
		if got := FormatQuantity(tt.v, tt.unit, tt.signed); got != tt.want {
			t.Errorf("FormatQuantity(%v, %q, %v) = %q, want %q", tt.v, tt.unit, tt.signed, got, tt.want)
		}
	}
}

func TestCloudSectionsEmptyCloud(t *testing.T) {
	data := CloudPanelData{}
	visible := VisibleSections(CloudSections(), data)

	got := sectionIDs(visible)
	want := []string{"cloud", "series"}
	if len(got) != len(want) {
		t.Fatalf("visible sections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visible sections = %v, want %v", got, want)
		}
	}

	if text := FieldText(findField(t, "count"), data); text != "0" {
		t.Errorf("count text = %q, want 0", text)
	}
	// radial ratio must not divide by a zero max speed
	if text := FieldText(findField(t, "radial"), data); text != "+0.00" {
		t.Errorf("radial text = %q, want +0.00", text)
	}
}

func TestCloudSectionsPopulated(t *testing.T) {
	data := CloudPanelData{
		Summary: particles.CloudSummary{
			Count:              12,
			MeanRadius:         1500,
			StdRadius:          20,
			MaxRadius:          2100,
			MeanSpeed:          0.4,
			MaxSpeed:           0.8,
			MeanRadialVelocity: -0.2,
		},
		Progress: 0.5,
	}

	if n := len(VisibleSections(CloudSections(), data)); n != 4 {
		t.Errorf("visible sections = %d, want 4", n)
	}

	tests := []struct {
		id, want string
	}{
		{"count", "12"},
		{"mean_radius", "1.5 km"},
		{"std_radius", "20 m"},
		{"max_radius", "2.1 km"},
		{"speed", "400 mm/s"},
		{"max_speed", "800 mm/s"},
		{"radial_velocity", "-200 mm/s"},
		{"radial", "-0.25"},
		{"progress", "50%"},
	}
	for _, tt := range tests {
		if got := FieldText(findField(t, tt.id), data); got != tt.want {
			t.Errorf("field %s = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRadialRatio(t *testing.T) {
	if r := RadialRatio(particles.CloudSummary{MeanRadialVelocity: 1}); r != 0 {
		t.Errorf("zero max speed: ratio = %v, want 0", r)
	}
	if r := RadialRatio(particles.CloudSummary{MeanRadialVelocity: 2, MaxSpeed: 4}); r != 0.5 {
		t.Errorf("ratio = %v, want 0.5", r)
	}
}

func TestSignedBarClamped(t *testing.T) {
	fd := FieldDescriptor{Widget: WidgetSignedBar, Value: func(any) float64 { return -3 }}
	if got := FieldText(fd, nil); got != "-1.00" {
		t.Errorf("signed bar text = %q, want -1.00", got)
	}
}

func TestPanelHeight(t *testing.T) {
	th := DefaultTheme()
	sections := CloudSections()

	empty := PanelHeight(th, VisibleSections(sections, CloudPanelData{}))
	// padding, titled section with one row, gap, untitled section with one row
	want := 2*th.Padding + th.LineHeight + th.LineHeight + th.SectionGap + th.LineHeight
	if empty != want {
		t.Errorf("empty panel height = %d, want %d", empty, want)
	}

	full := PanelHeight(th, VisibleSections(sections, CloudPanelData{Summary: particles.CloudSummary{Count: 1}}))
	if full <= empty {
		t.Errorf("populated panel height %d should exceed empty %d", full, empty)
	}
}
