package config

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"
)

// legacyKey locates a flat KEY=VALUE entry inside the sectioned layout.
type legacyKey struct {
	section, name string
}

// legacyKeys maps the flat KEY=VALUE names of pre-sectioned config files.
var legacyKeys = map[string]legacyKey{
	"OPENCL_PLATFORM_ID":        {"compute", "platform-id"},
	"OPENCL_DEVICE_ID":          {"compute", "device-id"},
	"STEP_COUNT":                {"run", "step-count"},
	"OUTPUT_STEP_COUNT":         {"run", "output-step-count"},
	"DELTA_T":                   {"run", "delta-t"},
	"OUTPUT_PATH":               {"run", "output-dir"},
	"COMET_OBJ_FILE":            {"body", "obj-file"},
	"COMET_DENSITY":             {"body", "density"},
	"COMET_ANGULAR_FREQUENCY":   {"body", "angular-frequency"},
	"PARTICLE_COUNT":            {"particles", "count"},
	"PARTICLE_INITIAL_VELOCITY": {"particles", "initial-velocity"},
	"PARTICLE_INITIAL_HEIGHT":   {"particles", "initial-height"},
}

// readINI overlays gcfg-formatted text onto cfg and returns the keys the
// text set. Text without any section header is treated as a flat
// KEY=VALUE file and translated first; legacy reports that case.
func readINI(cfg *Config, text string) (set keySet, legacy bool, err error) {
	if !hasSection(text) {
		translated, err := translateLegacy(text)
		if err != nil {
			return nil, true, err
		}
		text = translated
		legacy = true
	}
	if err := gcfg.FatalOnly(gcfg.ReadStringInto(cfg, text)); err != nil {
		return nil, legacy, err
	}
	return iniKeys(text), legacy, nil
}

func hasSection(text string) bool {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		if strings.HasPrefix(strings.TrimSpace(sc.Text()), "[") {
			return true
		}
	}
	return false
}

// translateLegacy rewrites a flat KEY=VALUE file into gcfg sections. Lines
// starting with '#' and blank lines are skipped; a trailing '\r' is dropped.
func translateLegacy(text string) (string, error) {
	sections := map[string][]string{}
	sc := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(strings.TrimSuffix(sc.Text(), "\r"))
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, ";") {
			continue
		}
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return "", fmt.Errorf("line %d: expected KEY=VALUE, got %q", line, raw)
		}
		key = strings.TrimSpace(key)
		lk, known := legacyKeys[key]
		if !known {
			return "", fmt.Errorf("line %d: unknown key %q", line, key)
		}
		sections[lk.section] = append(sections[lk.section],
			fmt.Sprintf("%s = %s", lk.name, quoteValue(strings.TrimSpace(value))))
	}
	if err := sc.Err(); err != nil {
		return "", err
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "[%s]\n", name)
		for _, entry := range sections[name] {
			b.WriteString(entry)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// quoteValue protects values gcfg would otherwise split or unescape,
// e.g. file paths with ';' or '\'.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, `;#"\ `) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
