package save

import (
	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/scene"
)

// levelTables is a snapshot of one level's children in traversal order,
// references still in live identifiers.
type levelTables struct {
	name         string
	extra        scene.LevelExtra
	vertices     []VertexEntry
	lanes        []building.Lane
	measurements []building.Measurement
	walls        []building.Wall
	models       []building.Model
}

// levelReader is the part of the scene a level snapshot reads.
type levelReader interface {
	Name(e scene.Entity) (string, bool)
	LevelExtra(e scene.Entity) (scene.LevelExtra, bool)
	Children(e scene.Entity) []scene.Entity
	Kind(e scene.Entity) scene.Kind
	VertexID(e scene.Entity) (int, bool)
	Vertex(e scene.Entity) (building.Vertex, bool)
	Lane(e scene.Entity) (building.Lane, bool)
	Measurement(e scene.Entity) (building.Measurement, bool)
	Wall(e scene.Entity) (building.Wall, bool)
	Model(e scene.Entity) (building.Model, bool)
}

func readLevel(s levelReader, level scene.Entity) (*levelTables, error) {
	name, ok := s.Name(level)
	if !ok {
		return nil, bmerrors.New(bmerrors.ErrCodeMissingComponent, "level entity %d has no name", level)
	}
	extra, ok := s.LevelExtra(level)
	if !ok {
		return nil, bmerrors.New(bmerrors.ErrCodeMissingComponent, "level %q has no level metadata", name)
	}

	t := &levelTables{name: name, extra: extra}
	for _, c := range s.Children(level) {
		switch s.Kind(c) {
		case scene.KindVertex:
			id, ok := s.VertexID(c)
			if !ok {
				return nil, bmerrors.New(bmerrors.ErrCodeMissingComponent, "level %q: vertex entity %d has no identifier", name, c)
			}
			v, ok := s.Vertex(c)
			if !ok {
				return nil, bmerrors.New(bmerrors.ErrCodeMissingComponent, "level %q: vertex %d has no geometry", name, id)
			}
			t.vertices = append(t.vertices, VertexEntry{ID: id, Vertex: v})
		case scene.KindLane:
			l, ok := s.Lane(c)
			if !ok {
				return nil, missing(name, scene.KindLane, c)
			}
			t.lanes = append(t.lanes, l)
		case scene.KindMeasurement:
			m, ok := s.Measurement(c)
			if !ok {
				return nil, missing(name, scene.KindMeasurement, c)
			}
			t.measurements = append(t.measurements, m)
		case scene.KindWall:
			w, ok := s.Wall(c)
			if !ok {
				return nil, missing(name, scene.KindWall, c)
			}
			t.walls = append(t.walls, w)
		case scene.KindModel:
			m, ok := s.Model(c)
			if !ok {
				return nil, missing(name, scene.KindModel, c)
			}
			t.models = append(t.models, m)
		}
	}
	return t, nil
}

func missing(level string, kind scene.Kind, e scene.Entity) error {
	return bmerrors.New(bmerrors.ErrCodeMissingComponent, "level %q: %s entity %d has no %s component", level, kind, e, kind)
}

// AssembleLevel builds the persisted form of one level. It returns the level
// name, the document value and the mapping that was applied.
func AssembleLevel(s *scene.Scene, level scene.Entity) (string, building.Level, Rekey, error) {
	t, err := readLevel(s, level)
	if err != nil {
		return "", building.Level{}, nil, err
	}

	vertices, rk, err := RekeyVertices(t.name, t.vertices)
	if err != nil {
		return "", building.Level{}, nil, err
	}
	lanes, err := Rewrite(rk, t.name, "lane", t.lanes)
	if err != nil {
		return "", building.Level{}, nil, err
	}
	measurements, err := Rewrite(rk, t.name, "measurement", t.measurements)
	if err != nil {
		return "", building.Level{}, nil, err
	}
	walls, err := Rewrite(rk, t.name, "wall", t.walls)
	if err != nil {
		return "", building.Level{}, nil, err
	}

	models := make([]building.Model, len(t.models))
	copy(models, t.models)

	return t.name, building.Level{
		Vertices:         vertices,
		Lanes:            lanes,
		Measurements:     measurements,
		Walls:            walls,
		Models:           models,
		Drawing:          t.extra.Drawing,
		Elevation:        t.extra.Elevation,
		FlattenedXOffset: t.extra.FlattenedXOffset,
		FlattenedYOffset: t.extra.FlattenedYOffset,
	}, rk, nil
}
