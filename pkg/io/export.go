package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/buildingmap/pkg/building"
)

// yamlIndent matches the two-space indentation of hand-written building files.
const yamlIndent = 2

// WriteYAML encodes m as YAML and writes it to w. Level names and all other
// mapping keys are emitted in sorted order.
func WriteYAML(m *building.Map, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSON encodes m as indented JSON and writes it to w.
func WriteJSON(m *building.Map, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Encode writes m to w in the given format.
func Encode(m *building.Map, f Format, w io.Writer) error {
	if f == FormatJSON {
		return WriteJSON(m, w)
	}
	return WriteYAML(m, w)
}

// Marshal returns the encoded document.
func Marshal(m *building.Map, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(m, f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
