package query

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed colors.yaml
var defaultPalette []byte

// NeutralColor is used when a palette has no default of its own.
const NeutralColor = "#9ca3af"

// Palette maps department keys to display colors.
type Palette struct {
	Default     string            `yaml:"default"`
	Departments map[string]string `yaml:"departments"`
}

// DefaultPalette returns the built-in color table.
func DefaultPalette() *Palette {
	p, err := ParsePalette(defaultPalette)
	if err != nil {
		panic(fmt.Sprintf("embedded palette: %v", err))
	}
	return p
}

// ParsePalette decodes a YAML color table.
func ParsePalette(data []byte) (*Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse palette: %w", err)
	}
	if p.Default == "" {
		p.Default = NeutralColor
	}
	if p.Departments == nil {
		p.Departments = map[string]string{}
	}
	return &p, nil
}

// LoadPalette returns the built-in palette with the entries of the YAML file
// at path layered on top. An empty path yields the built-in palette.
func LoadPalette(path string) (*Palette, error) {
	base := DefaultPalette()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette %s: %w", path, err)
	}
	if err := base.Overlay(data); err != nil {
		return nil, err
	}
	return base, nil
}

// paletteOverlay is a partial color table. A nil Default leaves the
// palette's default alone.
type paletteOverlay struct {
	Default     *string           `yaml:"default"`
	Departments map[string]string `yaml:"departments"`
}

// Overlay applies the entries of a YAML color table on top of p. A default
// named in data always replaces p's, even when it equals NeutralColor.
func (p *Palette) Overlay(data []byte) error {
	var o paletteOverlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("failed to parse palette: %w", err)
	}
	if p.Departments == nil {
		p.Departments = map[string]string{}
	}
	for k, v := range o.Departments {
		p.Departments[k] = v
	}
	if o.Default != nil && *o.Default != "" {
		p.Default = *o.Default
	}
	return nil
}

// Color returns the color for key, or the default color. A nil palette
// yields NeutralColor.
func (p *Palette) Color(key string) string {
	if p == nil {
		return NeutralColor
	}
	if c, ok := p.Departments[key]; ok {
		return c
	}
	return p.Default
}
