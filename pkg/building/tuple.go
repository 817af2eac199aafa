package building

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Vertex
// =============================================================================

// Vertex is a point on a level, encoded as [x, y, z, name, params].
// The params element is omitted when empty.
type Vertex struct {
	X      float64          `bson:"x"`
	Y      float64          `bson:"y"`
	Z      float64          `bson:"z"`
	Name   string           `bson:"name"`
	Params map[string]Value `bson:"params,omitempty"`
}

func (v Vertex) tuple() []any {
	t := []any{v.X, v.Y, v.Z, v.Name}
	if len(v.Params) > 0 {
		t = append(t, v.Params)
	}
	return t
}

// MarshalYAML implements yaml.Marshaler.
func (v Vertex) MarshalYAML() (any, error) {
	return flowSeq(v.tuple()...)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Vertex) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) < 4 || len(node.Content) > 5 {
		return fmt.Errorf("line %d: vertex must be [x, y, z, name, params]", node.Line)
	}
	targets := []any{&v.X, &v.Y, &v.Z, &v.Name}
	for i, t := range targets {
		if err := node.Content[i].Decode(t); err != nil {
			return fmt.Errorf("line %d: vertex element %d: %w", node.Line, i, err)
		}
	}
	v.Params = nil
	if len(node.Content) == 5 {
		if err := node.Content[4].Decode(&v.Params); err != nil {
			return fmt.Errorf("line %d: vertex params: %w", node.Line, err)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Vertex) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.tuple())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vertex) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 4 || len(raw) > 5 {
		return fmt.Errorf("vertex must be [x, y, z, name, params], got %d elements", len(raw))
	}
	targets := []any{&v.X, &v.Y, &v.Z, &v.Name}
	for i, t := range targets {
		if err := json.Unmarshal(raw[i], t); err != nil {
			return fmt.Errorf("vertex element %d: %w", i, err)
		}
	}
	v.Params = nil
	if len(raw) == 5 {
		return json.Unmarshal(raw[4], &v.Params)
	}
	return nil
}

// =============================================================================
// Vertex references
// =============================================================================

// LaneProperties are the auxiliary attributes of a lane.
type LaneProperties struct {
	Bidirectional Param[bool]   `yaml:"bidirectional" json:"bidirectional" bson:"bidirectional"`
	GraphIdx      Param[int]    `yaml:"graph_idx" json:"graph_idx" bson:"graph_idx"`
	Orientation   Param[string] `yaml:"orientation" json:"orientation" bson:"orientation"`
}

// Lane is a robot traffic lane between two vertices.
type Lane struct {
	Start      int            `bson:"start"`
	End        int            `bson:"end"`
	Properties LaneProperties `bson:"properties"`
}

// Endpoints returns the referenced vertex indices.
func (l Lane) Endpoints() (int, int) { return l.Start, l.End }

// WithEndpoints returns a copy of l referencing a and b.
func (l Lane) WithEndpoints(a, b int) Lane { l.Start, l.End = a, b; return l }

// MarshalYAML implements yaml.Marshaler.
func (l Lane) MarshalYAML() (any, error) { return flowSeq(l.Start, l.End, l.Properties) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Lane) UnmarshalYAML(node *yaml.Node) error {
	return decodeRefYAML(node, "lane", &l.Start, &l.End, &l.Properties)
}

// MarshalJSON implements json.Marshaler.
func (l Lane) MarshalJSON() ([]byte, error) { return json.Marshal([]any{l.Start, l.End, l.Properties}) }

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lane) UnmarshalJSON(data []byte) error {
	return decodeRefJSON(data, "lane", &l.Start, &l.End, &l.Properties)
}

// WallProperties are the auxiliary attributes of a wall.
type WallProperties struct {
	Alpha       Param[float64] `yaml:"alpha" json:"alpha" bson:"alpha"`
	TextureName Param[string]  `yaml:"texture_name" json:"texture_name" bson:"texture_name"`
}

// Wall is a wall segment between two vertices.
type Wall struct {
	Start      int            `bson:"start"`
	End        int            `bson:"end"`
	Properties WallProperties `bson:"properties"`
}

// Endpoints returns the referenced vertex indices.
func (w Wall) Endpoints() (int, int) { return w.Start, w.End }

// WithEndpoints returns a copy of w referencing a and b.
func (w Wall) WithEndpoints(a, b int) Wall { w.Start, w.End = a, b; return w }

// MarshalYAML implements yaml.Marshaler.
func (w Wall) MarshalYAML() (any, error) { return flowSeq(w.Start, w.End, w.Properties) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Wall) UnmarshalYAML(node *yaml.Node) error {
	return decodeRefYAML(node, "wall", &w.Start, &w.End, &w.Properties)
}

// MarshalJSON implements json.Marshaler.
func (w Wall) MarshalJSON() ([]byte, error) { return json.Marshal([]any{w.Start, w.End, w.Properties}) }

// UnmarshalJSON implements json.Unmarshaler.
func (w *Wall) UnmarshalJSON(data []byte) error {
	return decodeRefJSON(data, "wall", &w.Start, &w.End, &w.Properties)
}

// MeasurementProperties are the auxiliary attributes of a measurement.
type MeasurementProperties struct {
	Distance Param[float64] `yaml:"distance" json:"distance" bson:"distance"`
}

// Measurement records a real-world distance between two vertices, used to
// scale the drawing.
type Measurement struct {
	Start      int                   `bson:"start"`
	End        int                   `bson:"end"`
	Properties MeasurementProperties `bson:"properties"`
}

// Endpoints returns the referenced vertex indices.
func (m Measurement) Endpoints() (int, int) { return m.Start, m.End }

// WithEndpoints returns a copy of m referencing a and b.
func (m Measurement) WithEndpoints(a, b int) Measurement { m.Start, m.End = a, b; return m }

// MarshalYAML implements yaml.Marshaler.
func (m Measurement) MarshalYAML() (any, error) { return flowSeq(m.Start, m.End, m.Properties) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Measurement) UnmarshalYAML(node *yaml.Node) error {
	return decodeRefYAML(node, "measurement", &m.Start, &m.End, &m.Properties)
}

// MarshalJSON implements json.Marshaler.
func (m Measurement) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{m.Start, m.End, m.Properties})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	return decodeRefJSON(data, "measurement", &m.Start, &m.End, &m.Properties)
}

// decodeRefYAML decodes [a, b, props]; props may be absent.
func decodeRefYAML(node *yaml.Node, kind string, a, b *int, props any) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) < 2 || len(node.Content) > 3 {
		return fmt.Errorf("line %d: %s must be [start, end, properties]", node.Line, kind)
	}
	if err := node.Content[0].Decode(a); err != nil {
		return fmt.Errorf("line %d: %s start: %w", node.Line, kind, err)
	}
	if err := node.Content[1].Decode(b); err != nil {
		return fmt.Errorf("line %d: %s end: %w", node.Line, kind, err)
	}
	if len(node.Content) == 3 {
		if err := node.Content[2].Decode(props); err != nil {
			return fmt.Errorf("line %d: %s properties: %w", node.Line, kind, err)
		}
	}
	return nil
}

// decodeRefJSON decodes [a, b, props]; props may be absent.
func decodeRefJSON(data []byte, kind string, a, b *int, props any) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 || len(raw) > 3 {
		return fmt.Errorf("%s must be [start, end, properties], got %d elements", kind, len(raw))
	}
	if err := json.Unmarshal(raw[0], a); err != nil {
		return fmt.Errorf("%s start: %w", kind, err)
	}
	if err := json.Unmarshal(raw[1], b); err != nil {
		return fmt.Errorf("%s end: %w", kind, err)
	}
	if len(raw) == 3 {
		if err := json.Unmarshal(raw[2], props); err != nil {
			return fmt.Errorf("%s properties: %w", kind, err)
		}
	}
	return nil
}
