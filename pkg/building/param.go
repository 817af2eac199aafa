package building

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParamKind is the type code stored in front of every scalar property.
type ParamKind int

// Type codes of the building format.
const (
	ParamString ParamKind = 1
	ParamInt    ParamKind = 2
	ParamFloat  ParamKind = 3
	ParamBool   ParamKind = 4
)

// String returns the type name.
func (k ParamKind) String() string {
	switch k {
	case ParamString:
		return "string"
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamBool:
		return "bool"
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// Valid reports whether k is a known type code.
func (k ParamKind) Valid() bool { return k >= ParamString && k <= ParamBool }

// Scalar is the set of Go types a typed [Param] can hold.
type Scalar interface {
	string | int | float64 | bool
}

// Param is a typed property encoded as [type_code, value].
type Param[T Scalar] struct {
	Value T
}

// P returns a Param holding v.
func P[T Scalar](v T) Param[T] { return Param[T]{Value: v} }

// Kind returns the type code matching T.
func (p Param[T]) Kind() ParamKind {
	switch any(p.Value).(type) {
	case string:
		return ParamString
	case int:
		return ParamInt
	case float64:
		return ParamFloat
	default:
		return ParamBool
	}
}

// MarshalYAML implements yaml.Marshaler.
func (p Param[T]) MarshalYAML() (any, error) {
	return flowSeq(int(p.Kind()), p.Value)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Param[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: parameter must be [type, value]", node.Line)
	}
	var kind ParamKind
	if err := node.Content[0].Decode(&kind); err != nil {
		return fmt.Errorf("line %d: parameter type: %w", node.Line, err)
	}
	if !kind.Valid() {
		return fmt.Errorf("line %d: unknown parameter type %d", node.Line, kind)
	}
	return node.Content[1].Decode(&p.Value)
}

// MarshalJSON implements json.Marshaler.
func (p Param[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{int(p.Kind()), p.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Param[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("parameter must be [type, value], got %d elements", len(raw))
	}
	var kind ParamKind
	if err := json.Unmarshal(raw[0], &kind); err != nil {
		return fmt.Errorf("parameter type: %w", err)
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown parameter type %d", kind)
	}
	return json.Unmarshal(raw[1], &p.Value)
}

// Value is a dynamically typed property, used where the set of properties
// is open (vertex parameters).
type Value struct {
	Kind ParamKind
	Data any
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return flowSeq(int(v.Kind), v.Data)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: parameter must be [type, value]", node.Line)
	}
	if err := node.Content[0].Decode(&v.Kind); err != nil {
		return fmt.Errorf("line %d: parameter type: %w", node.Line, err)
	}
	switch v.Kind {
	case ParamString:
		var s string
		if err := node.Content[1].Decode(&s); err != nil {
			return err
		}
		v.Data = s
	case ParamInt:
		var i int
		if err := node.Content[1].Decode(&i); err != nil {
			return err
		}
		v.Data = i
	case ParamFloat:
		var f float64
		if err := node.Content[1].Decode(&f); err != nil {
			return err
		}
		v.Data = f
	case ParamBool:
		var b bool
		if err := node.Content[1].Decode(&b); err != nil {
			return err
		}
		v.Data = b
	default:
		return fmt.Errorf("line %d: unknown parameter type %d", node.Line, v.Kind)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{int(v.Kind), v.Data})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("parameter must be [type, value], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &v.Kind); err != nil {
		return err
	}
	switch v.Kind {
	case ParamString:
		var s string
		err := json.Unmarshal(raw[1], &s)
		v.Data = s
		return err
	case ParamInt:
		var i int
		err := json.Unmarshal(raw[1], &i)
		v.Data = i
		return err
	case ParamFloat:
		var f float64
		err := json.Unmarshal(raw[1], &f)
		v.Data = f
		return err
	case ParamBool:
		var b bool
		err := json.Unmarshal(raw[1], &b)
		v.Data = b
		return err
	}
	return fmt.Errorf("unknown parameter type %d", v.Kind)
}

// flowSeq encodes values as a single-line YAML sequence, keeping tuples on
// one line the way hand-edited building files write them.
func flowSeq(values ...any) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		var item yaml.Node
		if err := item.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &item)
	}
	return node, nil
}
