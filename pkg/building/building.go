package building

import (
	"maps"
	"slices"
)

// FormatVersion is the document format version written on save.
const FormatVersion = 2

// Map is the persisted root document.
type Map struct {
	Name     string           `yaml:"name" json:"name" bson:"name"`
	Version  int              `yaml:"version" json:"version" bson:"version"`
	CrowdSim CrowdSim         `yaml:"crowd_sim" json:"crowd_sim" bson:"crowd_sim"`
	Levels   map[string]Level `yaml:"levels" json:"levels" bson:"levels"`
}

// LevelNames returns the level names in persisted (sorted) order.
func (m *Map) LevelNames() []string {
	return slices.Sorted(maps.Keys(m.Levels))
}

// Level is one floor of the building. Vertex references in Lanes,
// Measurements and Walls index into Vertices.
type Level struct {
	Vertices         []Vertex      `yaml:"vertices" json:"vertices" bson:"vertices"`
	Lanes            []Lane        `yaml:"lanes" json:"lanes" bson:"lanes"`
	Measurements     []Measurement `yaml:"measurements" json:"measurements" bson:"measurements"`
	Walls            []Wall        `yaml:"walls" json:"walls" bson:"walls"`
	Models           []Model       `yaml:"models" json:"models" bson:"models"`
	Drawing          Drawing       `yaml:"drawing" json:"drawing" bson:"drawing"`
	Elevation        float64       `yaml:"elevation" json:"elevation" bson:"elevation"`
	FlattenedXOffset float64       `yaml:"flattened_x_offset" json:"flattened_x_offset" bson:"flattened_x_offset"`
	FlattenedYOffset float64       `yaml:"flattened_y_offset" json:"flattened_y_offset" bson:"flattened_y_offset"`
}

// Counts summarises the entity counts of a level.
type Counts struct {
	Vertices     int `json:"vertices"`
	Lanes        int `json:"lanes"`
	Measurements int `json:"measurements"`
	Walls        int `json:"walls"`
	Models       int `json:"models"`
}

// Counts returns the number of entities of each kind in the level.
func (l *Level) Counts() Counts {
	return Counts{
		Vertices:     len(l.Vertices),
		Lanes:        len(l.Lanes),
		Measurements: len(l.Measurements),
		Walls:        len(l.Walls),
		Models:       len(l.Models),
	}
}

// Drawing references the floor-plan image underlying a level.
type Drawing struct {
	Filename string `yaml:"filename" json:"filename" bson:"filename"`
}

// Model is a placed object. It has no vertex references.
type Model struct {
	Name      string  `yaml:"name" json:"name" bson:"name"`
	ModelName string  `yaml:"model_name" json:"model_name" bson:"model_name"`
	X         float64 `yaml:"x" json:"x" bson:"x"`
	Y         float64 `yaml:"y" json:"y" bson:"y"`
	Z         float64 `yaml:"z" json:"z" bson:"z"`
	Yaw       float64 `yaml:"yaw" json:"yaw" bson:"yaw"`
	Static    bool    `yaml:"static" json:"static" bson:"static"`
}

// CrowdSim is the map-scoped crowd simulation configuration. It is carried
// verbatim; only the enable flag is interpreted.
type CrowdSim map[string]any

// Enabled reports whether crowd simulation is switched on.
func (c CrowdSim) Enabled() bool {
	switch v := c["enable"].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

// Clone returns a deep copy of c. Nested maps and sequences are copied;
// scalars are shared.
func (c CrowdSim) Clone() CrowdSim {
	if c == nil {
		return nil
	}
	return CrowdSim(cloneValue(map[string]any(c)).(map[string]any))
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case CrowdSim:
		return v.Clone()
	}
	return v
}

// DefaultCrowdSim returns the configuration written for maps that never
// enabled crowd simulation.
func DefaultCrowdSim() CrowdSim {
	return CrowdSim{
		"enable":           0,
		"update_time_step": 0.1,
		"goal_sets":        []any{},
		"model_types":      []any{},
		"agent_groups":     []any{},
		"agent_profiles":   []any{},
		"states":           []any{},
		"transitions":      []any{},
	}
}
