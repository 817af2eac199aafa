package scene

import (
	"fmt"
	"slices"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
)

// AddRoot creates a map root holding a copy of cs. A nil crowd simulation
// leaves the component absent.
func (s *Scene) AddRoot(name string, cs building.CrowdSim) (Entity, error) {
	if err := bmerrors.ValidateMapName(name); err != nil {
		return 0, err
	}
	e := s.spawn(KindRoot, 0)
	s.roots = append(s.roots, e)
	s.names[e] = name
	if cs != nil {
		s.crowdSims[e] = cs.Clone()
	}
	return e, nil
}

// AddLevel creates a level under root with an empty vertex table. A nil
// extra leaves the metadata component absent.
func (s *Scene) AddLevel(root Entity, name string, extra *LevelExtra) (Entity, error) {
	if err := s.expect(root, KindRoot); err != nil {
		return 0, err
	}
	if err := bmerrors.ValidateLevelName(name); err != nil {
		return 0, err
	}
	e := s.spawn(KindLevel, root)
	s.names[e] = name
	if extra != nil {
		s.levelExtras[e] = *extra
	}
	s.managers[e] = NewLevelVertices()
	return e, nil
}

// AddVertex appends a vertex to level and returns its entity and live
// identifier.
func (s *Scene) AddVertex(level Entity, v building.Vertex) (Entity, int, error) {
	if err := s.expect(level, KindLevel); err != nil {
		return 0, 0, err
	}
	lv, ok := s.managers[level]
	if !ok {
		lv = NewLevelVertices()
		s.managers[level] = lv
	}
	e := s.spawn(KindVertex, level)
	s.vertices[e] = v
	id := lv.Add(e)
	s.ids[e] = id
	return e, id, nil
}

// AddLane appends a lane whose endpoints are live vertex identifiers.
// References are stored as given; a save pass rejects dangling ones.
func (s *Scene) AddLane(level Entity, l building.Lane) (Entity, error) {
	if err := s.expect(level, KindLevel); err != nil {
		return 0, err
	}
	e := s.spawn(KindLane, level)
	s.lanes[e] = l
	return e, nil
}

// AddWall appends a wall. See [Scene.AddLane].
func (s *Scene) AddWall(level Entity, w building.Wall) (Entity, error) {
	if err := s.expect(level, KindLevel); err != nil {
		return 0, err
	}
	e := s.spawn(KindWall, level)
	s.walls[e] = w
	return e, nil
}

// AddMeasurement appends a measurement. See [Scene.AddLane].
func (s *Scene) AddMeasurement(level Entity, m building.Measurement) (Entity, error) {
	if err := s.expect(level, KindLevel); err != nil {
		return 0, err
	}
	e := s.spawn(KindMeasurement, level)
	s.measurements[e] = m
	return e, nil
}

// AddModel appends a model.
func (s *Scene) AddModel(level Entity, m building.Model) (Entity, error) {
	if err := s.expect(level, KindLevel); err != nil {
		return 0, err
	}
	e := s.spawn(KindModel, level)
	s.models[e] = m
	return e, nil
}

// VertexEntity resolves a live vertex identifier within a level.
func (s *Scene) VertexEntity(level Entity, id int) (Entity, error) {
	lv, ok := s.managers[level]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	e, ok := lv.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	return e, nil
}

// Despawn removes e and its descendants. Despawning a vertex also despawns
// the lanes, walls and measurements of its level that reference it, and
// releases its identifier.
func (s *Scene) Despawn(e Entity) error {
	if !s.Exists(e) {
		return ErrUnknownEntity
	}

	if s.kinds[e] == KindVertex {
		level := s.parents[e]
		id := s.ids[e]
		for _, c := range s.Children(level) {
			if a, b, ok := s.Endpoints(c); ok && (a == id || b == id) {
				s.remove(c)
			}
		}
		if lv, ok := s.managers[level]; ok {
			lv.Remove(id)
		}
	}

	s.remove(e)
	return nil
}

func (s *Scene) remove(e Entity) {
	for _, c := range slices.Clone(s.children[e]) {
		s.remove(c)
	}
	if p, ok := s.parents[e]; ok {
		s.children[p] = slices.DeleteFunc(s.children[p], func(c Entity) bool { return c == e })
	}
	if s.kinds[e] == KindRoot {
		s.roots = slices.DeleteFunc(s.roots, func(r Entity) bool { return r == e })
	}

	delete(s.kinds, e)
	delete(s.parents, e)
	delete(s.children, e)
	delete(s.names, e)
	delete(s.ids, e)
	delete(s.crowdSims, e)
	delete(s.levelExtras, e)
	delete(s.vertices, e)
	delete(s.lanes, e)
	delete(s.measurements, e)
	delete(s.walls, e)
	delete(s.models, e)
	delete(s.managers, e)
}

// Relabel replaces the live vertex identifiers of a level using mapping
// (old identifier to new identifier). Vertex identifier components,
// dependent references and the level's bookkeeping are all rewritten. The
// mapping must cover every vertex and every referenced identifier; nothing
// is modified if it does not.
func (s *Scene) Relabel(level Entity, mapping map[int]int) error {
	if err := s.expect(level, KindLevel); err != nil {
		return err
	}

	children := s.children[level]
	lv := &LevelVertices{byID: make(map[int]Entity, len(mapping))}
	for _, c := range children {
		switch s.kinds[c] {
		case KindVertex:
			newID, ok := mapping[s.ids[c]]
			if !ok {
				return fmt.Errorf("%w: vertex %d not in mapping", ErrUnknownVertex, s.ids[c])
			}
			if _, dup := lv.byID[newID]; dup {
				return fmt.Errorf("relabel: identifier %d assigned twice", newID)
			}
			lv.byID[newID] = c
			lv.next = max(lv.next, newID+1)
		case KindLane, KindWall, KindMeasurement:
			a, b, _ := s.Endpoints(c)
			if _, ok := mapping[a]; !ok {
				return fmt.Errorf("%w: %s references %d", ErrUnknownVertex, s.kinds[c], a)
			}
			if _, ok := mapping[b]; !ok {
				return fmt.Errorf("%w: %s references %d", ErrUnknownVertex, s.kinds[c], b)
			}
		}
	}

	for _, c := range children {
		switch s.kinds[c] {
		case KindVertex:
			s.ids[c] = mapping[s.ids[c]]
		case KindLane, KindWall, KindMeasurement:
			a, b, _ := s.Endpoints(c)
			_ = s.SetEndpoints(c, mapping[a], mapping[b])
		}
	}
	return s.ReplaceVertices(level, lv)
}
