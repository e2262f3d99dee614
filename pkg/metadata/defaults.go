package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultType is the fallback bucket of a DefaultsTable.
const DefaultType = "DEFAULT"

// Defaults holds the visual overrides for one object type. Nil fields are not applied.
type Defaults struct {
	Visible   *bool       `yaml:"visible,omitempty"`
	Pickable  *bool       `yaml:"pickable,omitempty"`
	Colorize  *[3]float32 `yaml:"colorize,omitempty"`
	Opacity   *float32    `yaml:"opacity,omitempty"`
	Metallic  *float32    `yaml:"metallic,omitempty"`
	Roughness *float32    `yaml:"roughness,omitempty"`
}

// DefaultsTable looks up visual defaults by object type.
type DefaultsTable interface {
	ObjectDefaults(objectType string) (*Defaults, bool)
}

// Table maps object types to defaults.
type Table map[string]*Defaults

// ObjectDefaults returns the defaults for a type.
func (t Table) ObjectDefaults(objectType string) (*Defaults, bool) {
	d, ok := t[objectType]
	return d, ok
}

// Lookup returns the defaults for a type, falling back to the DEFAULT bucket.
func Lookup(table DefaultsTable, objectType string) (*Defaults, bool) {
	if table == nil {
		return nil, false
	}
	if d, ok := table.ObjectDefaults(objectType); ok {
		return d, true
	}
	return table.ObjectDefaults(DefaultType)
}

// ParseTable reads a YAML table keyed by object type.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing defaults table: %w", err)
	}
	for typ, d := range t {
		if d == nil {
			t[typ] = &Defaults{}
		}
	}
	return t, nil
}

// LoadTable reads a YAML table file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(data)
}

// Merge returns a copy of t with the entries of other added, replacing same-type entries.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

func boolp(v bool) *bool        { return &v }
func floatp(v float32) *float32 { return &v }

// IFCDefaults returns the built-in defaults for IFC building models.
func IFCDefaults() Table {
	return Table{
		"IfcRoof":                 {Colorize: &[3]float32{0.837, 0.203, 0.098}},
		"IfcSlab":                 {Colorize: &[3]float32{0.637, 0.603, 0.670}},
		"IfcWall":                 {Colorize: &[3]float32{0.537, 0.337, 0.237}},
		"IfcWallStandardCase":     {Colorize: &[3]float32{0.537, 0.337, 0.237}},
		"IfcDoor":                 {Colorize: &[3]float32{0.637, 0.603, 0.670}},
		"IfcStair":                {Colorize: &[3]float32{0.637, 0.603, 0.670}},
		"IfcStairFlight":          {Colorize: &[3]float32{0.637, 0.603, 0.670}},
		"IfcFurnishingElement":    {Colorize: &[3]float32{0.137, 0.403, 0.870}},
		"IfcWindow":               {Colorize: &[3]float32{0.137, 0.403, 0.870}, Opacity: floatp(0.4)},
		"IfcPlate":                {Colorize: &[3]float32{0.8470588235, 0.427450980392, 0}, Opacity: floatp(0.3)},
		"IfcSpace":                {Colorize: &[3]float32{0.137, 0.403, 0.870}, Visible: boolp(false), Pickable: boolp(false), Opacity: floatp(0.5)},
		"IfcOpeningElement":       {Colorize: &[3]float32{0.137, 0.403, 0.870}, Visible: boolp(false), Pickable: boolp(false), Opacity: floatp(0.3)},
		"IfcCovering":             {Colorize: &[3]float32{0.560, 0.560, 0.560}},
		"IfcRailing":              {Colorize: &[3]float32{0.137, 0.403, 0.870}},
		"IfcMember":               {Colorize: &[3]float32{0.8470588235, 0.427450980392, 0}},
		"IfcBeam":                 {Colorize: &[3]float32{0.8470588235, 0.427450980392, 0}},
		"IfcColumn":               {Colorize: &[3]float32{0.160, 0.160, 0.160}},
		"IfcBuildingElementProxy": {Colorize: &[3]float32{0.5, 0.5, 0.5}},
		"IfcFlowSegment":          {Colorize: &[3]float32{0.137, 0.403, 0.870}},
		DefaultType:               {},
	}
}
