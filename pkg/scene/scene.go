package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
)

var (
	// ErrUnknownEntity is returned when an entity handle does not exist,
	// typically because it was despawned.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrWrongKind is returned when an operation expects a different kind of
	// entity (e.g. adding a vertex to something that is not a level).
	ErrWrongKind = errors.New("wrong entity kind")

	// ErrUnknownVertex is returned when a vertex identifier is not live in
	// the level it is looked up in.
	ErrUnknownVertex = errors.New("unknown vertex identifier")
)

// Entity is an opaque handle to a node of the scene tree.
// The zero Entity is never assigned.
type Entity uint32

// Kind distinguishes entity types.
type Kind uint8

// Entity kinds.
const (
	KindRoot Kind = iota + 1
	KindLevel
	KindVertex
	KindLane
	KindMeasurement
	KindWall
	KindModel
)

var kindNames = map[Kind]string{
	KindRoot:        "root",
	KindLevel:       "level",
	KindVertex:      "vertex",
	KindLane:        "lane",
	KindMeasurement: "measurement",
	KindWall:        "wall",
	KindModel:       "model",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsDependent reports whether entities of this kind reference two vertices.
func (k Kind) IsDependent() bool {
	return k == KindLane || k == KindMeasurement || k == KindWall
}

// LevelExtra is the per-level metadata carried verbatim into the document.
type LevelExtra struct {
	Drawing          building.Drawing
	Elevation        float64
	FlattenedXOffset float64
	FlattenedYOffset float64
}

// Scene is the live building map. See the package documentation.
type Scene struct {
	next     Entity
	kinds    map[Entity]Kind
	parents  map[Entity]Entity
	children map[Entity][]Entity
	roots    []Entity

	names        map[Entity]string
	ids          map[Entity]int
	crowdSims    map[Entity]building.CrowdSim
	levelExtras  map[Entity]LevelExtra
	vertices     map[Entity]building.Vertex
	lanes        map[Entity]building.Lane
	measurements map[Entity]building.Measurement
	walls        map[Entity]building.Wall
	models       map[Entity]building.Model
	managers     map[Entity]*LevelVertices
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		kinds:        make(map[Entity]Kind),
		parents:      make(map[Entity]Entity),
		children:     make(map[Entity][]Entity),
		names:        make(map[Entity]string),
		ids:          make(map[Entity]int),
		crowdSims:    make(map[Entity]building.CrowdSim),
		levelExtras:  make(map[Entity]LevelExtra),
		vertices:     make(map[Entity]building.Vertex),
		lanes:        make(map[Entity]building.Lane),
		measurements: make(map[Entity]building.Measurement),
		walls:        make(map[Entity]building.Wall),
		models:       make(map[Entity]building.Model),
		managers:     make(map[Entity]*LevelVertices),
	}
}

// =============================================================================
// Hierarchy
// =============================================================================

func (s *Scene) spawn(kind Kind, parent Entity) Entity {
	s.next++
	e := s.next
	s.kinds[e] = kind
	if parent != 0 {
		s.parents[e] = parent
		s.children[parent] = append(s.children[parent], e)
	}
	return e
}

// Roots returns the map-root entities in creation order. A saveable scene
// has exactly one.
func (s *Scene) Roots() []Entity { return slices.Clone(s.roots) }

// Children returns e's children in insertion order.
func (s *Scene) Children(e Entity) []Entity { return slices.Clone(s.children[e]) }

// Parent returns e's parent.
func (s *Scene) Parent(e Entity) (Entity, bool) {
	p, ok := s.parents[e]
	return p, ok
}

// Kind returns e's kind, or zero if e does not exist.
func (s *Scene) Kind(e Entity) Kind { return s.kinds[e] }

// Exists reports whether e is live.
func (s *Scene) Exists(e Entity) bool {
	_, ok := s.kinds[e]
	return ok
}

// Levels returns the level children of root.
func (s *Scene) Levels(root Entity) []Entity {
	var out []Entity
	for _, c := range s.children[root] {
		if s.kinds[c] == KindLevel {
			out = append(out, c)
		}
	}
	return out
}

// LevelByName returns the first level of root with the given name.
func (s *Scene) LevelByName(root Entity, name string) (Entity, bool) {
	for _, l := range s.Levels(root) {
		if s.names[l] == name {
			return l, true
		}
	}
	return 0, false
}

// =============================================================================
// Components
// =============================================================================

// Name returns the name component of a root or level.
func (s *Scene) Name(e Entity) (string, bool) {
	n, ok := s.names[e]
	return n, ok
}

// SetName replaces the name component of a root or level.
func (s *Scene) SetName(e Entity, name string) error {
	switch s.kinds[e] {
	case KindRoot:
		if err := bmerrors.ValidateMapName(name); err != nil {
			return err
		}
	case KindLevel:
		if err := bmerrors.ValidateLevelName(name); err != nil {
			return err
		}
	case 0:
		return ErrUnknownEntity
	default:
		return fmt.Errorf("%w: %s has no name", ErrWrongKind, s.kinds[e])
	}
	s.names[e] = name
	return nil
}

// VertexID returns the live identifier of a vertex entity.
func (s *Scene) VertexID(e Entity) (int, bool) {
	id, ok := s.ids[e]
	return id, ok
}

// CrowdSim returns the crowd simulation component of a root.
func (s *Scene) CrowdSim(e Entity) (building.CrowdSim, bool) {
	c, ok := s.crowdSims[e]
	return c, ok
}

// LevelExtra returns the metadata component of a level.
func (s *Scene) LevelExtra(e Entity) (LevelExtra, bool) {
	x, ok := s.levelExtras[e]
	return x, ok
}

// Vertex returns the geometry of a vertex entity.
func (s *Scene) Vertex(e Entity) (building.Vertex, bool) {
	v, ok := s.vertices[e]
	return v, ok
}

// Lane returns a lane entity's component, references in live identifiers.
func (s *Scene) Lane(e Entity) (building.Lane, bool) {
	l, ok := s.lanes[e]
	return l, ok
}

// Measurement returns a measurement entity's component.
func (s *Scene) Measurement(e Entity) (building.Measurement, bool) {
	m, ok := s.measurements[e]
	return m, ok
}

// Wall returns a wall entity's component.
func (s *Scene) Wall(e Entity) (building.Wall, bool) {
	w, ok := s.walls[e]
	return w, ok
}

// Model returns a model entity's component.
func (s *Scene) Model(e Entity) (building.Model, bool) {
	m, ok := s.models[e]
	return m, ok
}

// Endpoints returns the live vertex identifiers referenced by a lane, wall
// or measurement.
func (s *Scene) Endpoints(e Entity) (int, int, bool) {
	switch s.kinds[e] {
	case KindLane:
		a, b := s.lanes[e].Endpoints()
		return a, b, true
	case KindWall:
		a, b := s.walls[e].Endpoints()
		return a, b, true
	case KindMeasurement:
		a, b := s.measurements[e].Endpoints()
		return a, b, true
	}
	return 0, 0, false
}

// SetEndpoints rewrites the reference pair of a lane, wall or measurement.
// The identifiers are not checked against the level.
func (s *Scene) SetEndpoints(e Entity, a, b int) error {
	switch s.kinds[e] {
	case KindLane:
		s.lanes[e] = s.lanes[e].WithEndpoints(a, b)
	case KindWall:
		s.walls[e] = s.walls[e].WithEndpoints(a, b)
	case KindMeasurement:
		s.measurements[e] = s.measurements[e].WithEndpoints(a, b)
	case 0:
		return ErrUnknownEntity
	default:
		return fmt.Errorf("%w: %s has no vertex references", ErrWrongKind, s.kinds[e])
	}
	return nil
}

// Vertices returns the vertex bookkeeping of a level.
func (s *Scene) Vertices(level Entity) (*LevelVertices, bool) {
	lv, ok := s.managers[level]
	return lv, ok
}

// ReplaceVertices installs lv as the vertex bookkeeping of a level.
func (s *Scene) ReplaceVertices(level Entity, lv *LevelVertices) error {
	if err := s.expect(level, KindLevel); err != nil {
		return err
	}
	s.managers[level] = lv
	return nil
}

func (s *Scene) expect(e Entity, kind Kind) error {
	k, ok := s.kinds[e]
	if !ok {
		return ErrUnknownEntity
	}
	if k != kind {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongKind, kind, k)
	}
	return nil
}
