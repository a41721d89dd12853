package core

// presets.go loads named rule sets from YAML.
//
// A preset file is a list of {name, group, description, rules}. The built-in
// presets are embedded and registered at init. Additional files are loaded at
// startup and replace built-ins with the same name.

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPresetName is applied to new sessions unless configured otherwise.
const DefaultPresetName = "tally"

//go:embed presets.yaml
var builtinPresets []byte

// Preset is a named, reusable rule set.
type Preset struct {
	Name        string `json:"name" yaml:"name"`
	Group       string `json:"group" yaml:"group"`
	Description string `json:"description" yaml:"description"`
	Rules       Rules  `json:"rules" yaml:"rules"`
}

func (p Preset) clone() Preset {
	p.Rules = p.Rules.Clone()
	return p
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

func init() {
	RegisterDefaults()
}

// RegisterDefaults registers the embedded presets. Existing entries with the
// same names are replaced.
func RegisterDefaults() {
	presets, err := LoadPresets(bytes.NewReader(builtinPresets))
	if err != nil {
		panic(fmt.Sprintf("builtin presets: %v", err))
	}
	for _, p := range presets {
		Replace(p)
	}
}

// LoadPresets decodes and checks a preset document.
func LoadPresets(r io.Reader) ([]Preset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f presetFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	seen := make(map[string]bool, len(f.Presets))
	for i, p := range f.Presets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("preset %d: name is required", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("preset %q: defined twice", name)
		}
		seen[name] = true

		if p.Rules == nil {
			p.Rules = Rules{}
		}
		if err := p.Rules.Check(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		p.Name = name
		f.Presets[i] = p
	}

	return f.Presets, nil
}

// LoadPresetFile reads presets from path and registers them.
// Returns the number of presets loaded.
func LoadPresetFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()

	presets, err := LoadPresets(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	for _, p := range presets {
		Replace(p)
	}
	return len(presets), nil
}

// PresetRules returns a copy of the named preset's rules.
func PresetRules(name string) (Rules, error) {
	p, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return p.Rules, nil
}

// ErrPresetNotFound is returned for an unknown preset name.
var ErrPresetNotFound = errors.New("preset not found")
