package scene

import (
	"fmt"

	"github.com/matzehuels/buildingmap/pkg/building"
)

// Spawn builds a root and its levels from m. Levels are spawned in name
// order; within a level vertices come first (their live identifiers equal
// their document indices), followed by lanes, measurements, walls and
// models in document order.
//
// Every reference must index an existing vertex of its own level. On error
// nothing is left behind in the scene.
func (s *Scene) Spawn(m *building.Map) (Entity, error) {
	root, err := s.AddRoot(m.Name, m.CrowdSim)
	if err != nil {
		return 0, err
	}
	for _, name := range m.LevelNames() {
		if err := s.spawnLevel(root, name, m.Levels[name]); err != nil {
			s.remove(root)
			return 0, fmt.Errorf("level %q: %w", name, err)
		}
	}
	return root, nil
}

func (s *Scene) spawnLevel(root Entity, name string, l building.Level) error {
	level, err := s.AddLevel(root, name, &LevelExtra{
		Drawing:          l.Drawing,
		Elevation:        l.Elevation,
		FlattenedXOffset: l.FlattenedXOffset,
		FlattenedYOffset: l.FlattenedYOffset,
	})
	if err != nil {
		return err
	}

	for _, v := range l.Vertices {
		if _, _, err := s.AddVertex(level, v); err != nil {
			return err
		}
	}

	n := len(l.Vertices)
	check := func(kind string, i, a, b int) error {
		if a < 0 || a >= n {
			return fmt.Errorf("%s %d: %w: %d", kind, i, ErrUnknownVertex, a)
		}
		if b < 0 || b >= n {
			return fmt.Errorf("%s %d: %w: %d", kind, i, ErrUnknownVertex, b)
		}
		return nil
	}

	for i, lane := range l.Lanes {
		if err := check("lane", i, lane.Start, lane.End); err != nil {
			return err
		}
		if _, err := s.AddLane(level, lane); err != nil {
			return err
		}
	}
	for i, m := range l.Measurements {
		if err := check("measurement", i, m.Start, m.End); err != nil {
			return err
		}
		if _, err := s.AddMeasurement(level, m); err != nil {
			return err
		}
	}
	for i, w := range l.Walls {
		if err := check("wall", i, w.Start, w.End); err != nil {
			return err
		}
		if _, err := s.AddWall(level, w); err != nil {
			return err
		}
	}
	for _, m := range l.Models {
		if _, err := s.AddModel(level, m); err != nil {
			return err
		}
	}
	return nil
}
