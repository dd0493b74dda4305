package config

import (
	"bufio"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/cosim/fault"
)

// requiredKey is a setting a config file must state explicitly. The
// embedded defaults only cover optional settings for file-based runs.
type requiredKey struct {
	section, name string // yaml spelling
	legacy        string
}

var requiredKeys = []requiredKey{
	{"compute", "platform_id", "OPENCL_PLATFORM_ID"},
	{"compute", "device_id", "OPENCL_DEVICE_ID"},
	{"run", "step_count", "STEP_COUNT"},
	{"run", "output_step_count", "OUTPUT_STEP_COUNT"},
	{"run", "delta_t", "DELTA_T"},
	{"body", "obj_file", "COMET_OBJ_FILE"},
	{"body", "density", "COMET_DENSITY"},
	{"body", "angular_frequency", "COMET_ANGULAR_FREQUENCY"},
	{"particles", "count", "PARTICLE_COUNT"},
	{"particles", "initial_velocity", "PARTICLE_INITIAL_VELOCITY"},
	{"particles", "initial_height", "PARTICLE_INITIAL_HEIGHT"},
}

// keySet holds "section.name" entries in yaml spelling.
type keySet map[string]bool

func keyID(section, name string) string {
	norm := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	}
	return norm(section) + "." + norm(name)
}

// yamlKeys collects the two-level keys present in a YAML document.
func yamlKeys(data []byte) (keySet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	set := keySet{}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return set, nil
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		section, body := root.Content[i], root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			if body.Content[j+1].Tag == "!!null" {
				continue
			}
			set[keyID(section.Value, body.Content[j].Value)] = true
		}
	}
	return set, nil
}

// iniKeys collects the variables set in gcfg text. Parsing proper is left
// to gcfg; this only records names.
func iniKeys(text string) keySet {
	set := keySet{}
	section := ""
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", line[0] == '#', line[0] == ';':
		case line[0] == '[':
			name, _, _ := strings.Cut(strings.Trim(line, "[]"), " ")
			section = name
		default:
			name, _, _ := strings.Cut(line, "=")
			set[keyID(section, name)] = true
		}
	}
	return set
}

// checkRequired reports every required key missing from set. Legacy files
// name keys by their flat spelling.
func checkRequired(set keySet, legacy bool) error {
	var missing []string
	for _, k := range requiredKeys {
		if set[keyID(k.section, k.name)] {
			continue
		}
		if legacy {
			missing = append(missing, k.legacy)
		} else {
			missing = append(missing, k.section+"."+k.name)
		}
	}
	if len(missing) > 0 {
		return fault.Newf(fault.Config, "reading config file",
			"missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}
