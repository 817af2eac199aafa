package scene

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/buildingmap/pkg/building"
)

func newLevel(t *testing.T) (*Scene, Entity, Entity) {
	t.Helper()
	s := New()
	root, err := s.AddRoot("office", building.DefaultCrowdSim())
	if err != nil {
		t.Fatalf("AddRoot: %v", err)
	}
	level, err := s.AddLevel(root, "L1", &LevelExtra{Elevation: 1})
	if err != nil {
		t.Fatalf("AddLevel: %v", err)
	}
	return s, root, level
}

func addVertices(t *testing.T, s *Scene, level Entity, n int) []Entity {
	t.Helper()
	out := make([]Entity, n)
	for i := range out {
		e, id, err := s.AddVertex(level, building.Vertex{X: float64(i)})
		if err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
		if id != i {
			t.Fatalf("AddVertex id = %d, want %d", id, i)
		}
		out[i] = e
	}
	return out
}

func TestAddAndRead(t *testing.T) {
	s, root, level := newLevel(t)
	vs := addVertices(t, s, level, 2)
	lane, err := s.AddLane(level, building.Lane{Start: 1, End: 0})
	if err != nil {
		t.Fatalf("AddLane: %v", err)
	}

	if got := s.Roots(); !reflect.DeepEqual(got, []Entity{root}) {
		t.Errorf("Roots() = %v", got)
	}
	if got := s.Levels(root); !reflect.DeepEqual(got, []Entity{level}) {
		t.Errorf("Levels() = %v", got)
	}
	if got := s.Children(level); !reflect.DeepEqual(got, []Entity{vs[0], vs[1], lane}) {
		t.Errorf("Children() = %v", got)
	}
	if name, ok := s.Name(level); !ok || name != "L1" {
		t.Errorf("Name(level) = %q, %v", name, ok)
	}
	if k := s.Kind(lane); k != KindLane || !k.IsDependent() {
		t.Errorf("Kind(lane) = %v", k)
	}
	if a, b, ok := s.Endpoints(lane); !ok || a != 1 || b != 0 {
		t.Errorf("Endpoints(lane) = %d, %d, %v", a, b, ok)
	}
	if _, _, ok := s.Endpoints(vs[0]); ok {
		t.Error("vertex should have no endpoints")
	}
	if x, ok := s.LevelExtra(level); !ok || x.Elevation != 1 {
		t.Errorf("LevelExtra = %+v, %v", x, ok)
	}
	if p, ok := s.Parent(lane); !ok || p != level {
		t.Errorf("Parent(lane) = %v, %v", p, ok)
	}
	if l, ok := s.LevelByName(root, "L1"); !ok || l != level {
		t.Errorf("LevelByName = %v, %v", l, ok)
	}
}

func TestAddWrongKind(t *testing.T) {
	s, root, level := newLevel(t)
	if _, _, err := s.AddVertex(root, building.Vertex{}); !errors.Is(err, ErrWrongKind) {
		t.Errorf("AddVertex(root) error = %v, want ErrWrongKind", err)
	}
	if _, err := s.AddLevel(level, "L2", nil); !errors.Is(err, ErrWrongKind) {
		t.Errorf("AddLevel(level) error = %v, want ErrWrongKind", err)
	}
	if _, err := s.AddLane(Entity(999), building.Lane{}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("AddLane(unknown) error = %v, want ErrUnknownEntity", err)
	}
	if _, err := s.AddLevel(root, "", nil); err == nil {
		t.Error("AddLevel with empty name should fail")
	}
}

func TestDespawnVertexLeavesGapAndCascades(t *testing.T) {
	s, _, level := newLevel(t)
	vs := addVertices(t, s, level, 4)
	keep, _ := s.AddLane(level, building.Lane{Start: 0, End: 2})
	drop, _ := s.AddWall(level, building.Wall{Start: 1, End: 3})
	model, _ := s.AddModel(level, building.Model{Name: "desk"})

	if err := s.Despawn(vs[1]); err != nil {
		t.Fatalf("Despawn: %v", err)
	}

	if s.Exists(drop) {
		t.Error("wall referencing the despawned vertex should be despawned")
	}
	if !s.Exists(keep) || !s.Exists(model) {
		t.Error("unrelated entities must survive")
	}

	lv, _ := s.Vertices(level)
	if got := lv.IDs(); !reflect.DeepEqual(got, []int{0, 2, 3}) {
		t.Errorf("IDs() = %v, want [0 2 3]", got)
	}
	if lv.Dense() {
		t.Error("identifiers should be sparse after deletion")
	}
	if want := []Entity{vs[0], vs[2], vs[3], keep, model}; !reflect.DeepEqual(s.Children(level), want) {
		t.Errorf("Children() = %v, want %v", s.Children(level), want)
	}

	_, id, _ := s.AddVertex(level, building.Vertex{})
	if id != 4 {
		t.Errorf("next identifier = %d, want 4 (identifiers are not reused)", id)
	}

	if err := s.Despawn(vs[1]); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("second Despawn error = %v, want ErrUnknownEntity", err)
	}
}

func TestDespawnRoot(t *testing.T) {
	s, root, level := newLevel(t)
	v := addVertices(t, s, level, 1)[0]
	if err := s.Despawn(root); err != nil {
		t.Fatalf("Despawn(root): %v", err)
	}
	if len(s.Roots()) != 0 {
		t.Error("root should be gone")
	}
	if s.Exists(level) || s.Exists(v) {
		t.Error("descendants should be gone")
	}
}

func TestRelabel(t *testing.T) {
	s, _, level := newLevel(t)
	vs := addVertices(t, s, level, 3)
	lane, _ := s.AddLane(level, building.Lane{Start: 2, End: 0})
	_ = s.Despawn(vs[1])

	if err := s.Relabel(level, map[int]int{0: 0, 2: 1}); err != nil {
		t.Fatalf("Relabel: %v", err)
	}

	if id, _ := s.VertexID(vs[2]); id != 1 {
		t.Errorf("VertexID = %d, want 1", id)
	}
	if a, b, _ := s.Endpoints(lane); a != 1 || b != 0 {
		t.Errorf("lane = (%d, %d), want (1, 0)", a, b)
	}
	lv, _ := s.Vertices(level)
	if !lv.Dense() || lv.Next() != 2 {
		t.Errorf("bookkeeping not dense: ids %v next %d", lv.IDs(), lv.Next())
	}
	if e, err := s.VertexEntity(level, 1); err != nil || e != vs[2] {
		t.Errorf("VertexEntity(1) = %v, %v", e, err)
	}
}

func TestRelabelIncompleteMappingChangesNothing(t *testing.T) {
	s, _, level := newLevel(t)
	vs := addVertices(t, s, level, 2)
	lane, _ := s.AddLane(level, building.Lane{Start: 0, End: 5})

	err := s.Relabel(level, map[int]int{0: 1, 1: 0})
	if !errors.Is(err, ErrUnknownVertex) {
		t.Fatalf("Relabel error = %v, want ErrUnknownVertex", err)
	}
	if id, _ := s.VertexID(vs[0]); id != 0 {
		t.Errorf("vertex relabelled despite failure: %d", id)
	}
	if a, b, _ := s.Endpoints(lane); a != 0 || b != 5 {
		t.Errorf("lane modified despite failure: (%d, %d)", a, b)
	}
}

func TestReplaceVertices(t *testing.T) {
	s, _, level := newLevel(t)
	v := addVertices(t, s, level, 1)[0]

	lv := NewLevelVertices()
	lv.Add(v)
	lv.Add(v)
	if err := s.ReplaceVertices(level, lv); err != nil {
		t.Fatalf("ReplaceVertices: %v", err)
	}
	if got, _ := s.Vertices(level); got != lv {
		t.Error("Vertices() should return the installed bookkeeping")
	}
	if got, _ := s.Vertices(level); got.Next() != 2 {
		t.Errorf("Next() = %d, want 2", got.Next())
	}

	if err := s.ReplaceVertices(v, NewLevelVertices()); !errors.Is(err, ErrWrongKind) {
		t.Errorf("ReplaceVertices(vertex) error = %v, want ErrWrongKind", err)
	}
	if err := s.ReplaceVertices(Entity(9999), NewLevelVertices()); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("ReplaceVertices(unknown) error = %v, want ErrUnknownEntity", err)
	}
}

func TestSetName(t *testing.T) {
	s, root, level := newLevel(t)
	if err := s.SetName(level, "L2"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if n, _ := s.Name(level); n != "L2" {
		t.Errorf("Name = %q", n)
	}
	if err := s.SetName(root, ""); err == nil {
		t.Error("empty map name should fail")
	}
	v := addVertices(t, s, level, 1)[0]
	if err := s.SetName(v, "x"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("SetName(vertex) error = %v, want ErrWrongKind", err)
	}
}

func TestLevelVertices(t *testing.T) {
	lv := NewLevelVertices()
	if !lv.Dense() || lv.Len() != 0 {
		t.Error("empty table should be dense")
	}
	lv.Add(10)
	lv.Add(11)
	c := lv.Clone()
	lv.Remove(0)
	if _, ok := c.Get(0); !ok {
		t.Error("Clone should be independent")
	}
	if lv.Len() != 1 || lv.Next() != 2 {
		t.Errorf("Len = %d Next = %d", lv.Len(), lv.Next())
	}
}

func TestKindString(t *testing.T) {
	if KindMeasurement.String() != "measurement" {
		t.Errorf("String() = %q", KindMeasurement.String())
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("String() = %q", Kind(42).String())
	}
}
