package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/buildingmap/pkg/building"
	"github.com/matzehuels/buildingmap/pkg/errors"
)

// ReadYAML decodes a building map from r.
//
// ReadYAML returns an error if the YAML is malformed, if a tuple entity has
// the wrong arity, or if the map has no name. A missing version is read as
// zero; missing levels decode as an empty collection. ReadYAML does not
// close r.
func ReadYAML(r io.Reader) (*building.Map, error) {
	var m building.Map
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty document")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	return finish(&m)
}

// ReadJSON decodes a building map from r. See [ReadYAML].
func ReadJSON(r io.Reader) (*building.Map, error) {
	var m building.Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty document")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	return finish(&m)
}

// Read decodes a building map from r in the given format.
func Read(r io.Reader, f Format) (*building.Map, error) {
	if f == FormatJSON {
		return ReadJSON(r)
	}
	return ReadYAML(r)
}

// ImportFile reads the document at path. The format follows the file
// extension, defaulting to YAML (".building.yaml" is the usual suffix).
func ImportFile(path string) (*building.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Read(f, FormatFromPath(path, FormatYAML))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func finish(m *building.Map) (*building.Map, error) {
	if err := errors.ValidateMapName(m.Name); err != nil {
		return nil, err
	}
	if m.Levels == nil {
		m.Levels = map[string]building.Level{}
	}
	if m.CrowdSim == nil {
		m.CrowdSim = building.DefaultCrowdSim()
	}
	return m, nil
}
