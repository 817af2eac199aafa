package save

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
	"github.com/matzehuels/buildingmap/pkg/scene"
)

// recordingSink collects every document handed to it.
type recordingSink struct {
	mu        sync.Mutex
	locations []string
	maps      []*building.Map
	err       error
}

func (r *recordingSink) Write(_ context.Context, m *building.Map, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.locations = append(r.locations, location)
	r.maps = append(r.maps, m)
	return nil
}

func (r *recordingSink) written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.locations...)
}

// sparseLevel builds a one-level scene whose live vertex identifiers are keep,
// allocated from 0..max(keep) with the rest despawned.
func sparseLevel(t *testing.T, keep ...int) (*scene.Scene, scene.Entity) {
	t.Helper()
	s := scene.New()
	root, err := s.AddRoot("office", building.DefaultCrowdSim())
	if err != nil {
		t.Fatalf("AddRoot: %v", err)
	}
	level, err := s.AddLevel(root, "L1", &scene.LevelExtra{Elevation: 2})
	if err != nil {
		t.Fatalf("AddLevel: %v", err)
	}
	top := 0
	for _, id := range keep {
		top = max(top, id)
	}
	kept := make(map[int]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	var drop []scene.Entity
	for i := 0; i <= top; i++ {
		e, _, err := s.AddVertex(level, building.Vertex{X: float64(i), Name: fmt.Sprintf("v%d", i)})
		if err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
		if !kept[i] {
			drop = append(drop, e)
		}
	}
	for _, e := range drop {
		if err := s.Despawn(e); err != nil {
			t.Fatalf("Despawn: %v", err)
		}
	}
	return s, level
}

func mustSave(t *testing.T, s *scene.Scene) (*building.Map, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	out, err := NewSaver(sink, nil).Save(context.Background(), s, "out.building.yaml")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return out.Map, sink
}

// =============================================================================
// Re-keying
// =============================================================================

func TestRekeyVertices(t *testing.T) {
	entries := []VertexEntry{
		{ID: 3, Vertex: building.Vertex{Name: "a"}},
		{ID: 7, Vertex: building.Vertex{Name: "b"}},
		{ID: 1, Vertex: building.Vertex{Name: "c"}},
	}
	vs, rk, err := RekeyVertices("L1", entries)
	if err != nil {
		t.Fatalf("RekeyVertices: %v", err)
	}
	if want := (Rekey{3: 0, 7: 1, 1: 2}); !reflect.DeepEqual(rk, want) {
		t.Errorf("rekey = %v, want %v", rk, want)
	}
	var names []string
	for _, v := range vs {
		names = append(names, v.Name)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(names, want) {
		t.Errorf("vertex order = %v, want %v", names, want)
	}
}

func TestRekeyVerticesDuplicateID(t *testing.T) {
	_, _, err := RekeyVertices("L1", []VertexEntry{{ID: 2}, {ID: 2}})
	if !bmerrors.Is(err, bmerrors.ErrCodeDanglingReference) {
		t.Errorf("err = %v, want DANGLING_REFERENCE", err)
	}
}

func TestRekeyIdentity(t *testing.T) {
	tests := []struct {
		rk   Rekey
		want bool
	}{
		{Rekey{}, true},
		{Rekey{0: 0, 1: 1}, true},
		{Rekey{0: 0, 2: 1}, false},
	}
	for _, tt := range tests {
		if got := tt.rk.Identity(); got != tt.want {
			t.Errorf("%v.Identity() = %v, want %v", tt.rk, got, tt.want)
		}
	}
}

func TestRewrite(t *testing.T) {
	in := []building.Wall{
		{Start: 5, End: 0, Properties: building.WallProperties{Alpha: building.P(0.5)}},
		{Start: 2, End: 5},
	}
	out, err := Rewrite(Rekey{0: 0, 2: 1, 5: 2}, "L1", "wall", in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out[0].Start != 2 || out[0].End != 0 || out[1].Start != 1 || out[1].End != 2 {
		t.Errorf("Rewrite = %+v", out)
	}
	if out[0].Properties.Alpha.Value != 0.5 {
		t.Errorf("properties not carried: %+v", out[0].Properties)
	}
	if in[0].Start != 5 {
		t.Errorf("input modified: %+v", in[0])
	}
}

func TestRewriteDangling(t *testing.T) {
	_, err := Rewrite(Rekey{0: 0}, "L1", "lane", []building.Lane{{Start: 0, End: 4}})
	if !bmerrors.Is(err, bmerrors.ErrCodeDanglingReference) {
		t.Fatalf("err = %v, want DANGLING_REFERENCE", err)
	}
	if msg := bmerrors.UserMessage(err); msg != `level "L1": lane 0 references vertex 4 which is not in the level` {
		t.Errorf("message = %q", msg)
	}
}

// =============================================================================
// Save pass
// =============================================================================

func TestSaveEndToEndExample(t *testing.T) {
	s, level := sparseLevel(t, 3, 7)
	if _, err := s.AddLane(level, building.Lane{Start: 7, End: 3}); err != nil {
		t.Fatalf("AddLane: %v", err)
	}

	m, _ := mustSave(t, s)
	l := m.Levels["L1"]
	if len(l.Vertices) != 2 || l.Vertices[0].X != 3 || l.Vertices[1].X != 7 {
		t.Errorf("vertices = %+v, want [v3 v7]", l.Vertices)
	}
	if len(l.Lanes) != 1 || l.Lanes[0].Start != 1 || l.Lanes[0].End != 0 {
		t.Errorf("lanes = %+v, want [(1, 0)]", l.Lanes)
	}
}

func TestSaveSparseIdentifiers(t *testing.T) {
	s, level := sparseLevel(t, 0, 2, 5)
	for _, pair := range [][2]int{{0, 5}, {5, 2}} {
		if _, err := s.AddLane(level, building.Lane{Start: pair[0], End: pair[1]}); err != nil {
			t.Fatalf("AddLane: %v", err)
		}
	}
	if _, err := s.AddMeasurement(level, building.Measurement{Start: 2, End: 0}); err != nil {
		t.Fatalf("AddMeasurement: %v", err)
	}

	m, _ := mustSave(t, s)
	l := m.Levels["L1"]

	var xs []float64
	for _, v := range l.Vertices {
		xs = append(xs, v.X)
	}
	if want := []float64{0, 2, 5}; !reflect.DeepEqual(xs, want) {
		t.Errorf("vertex order = %v, want %v", xs, want)
	}
	if got := [2]int{l.Lanes[0].Start, l.Lanes[0].End}; got != [2]int{0, 2} {
		t.Errorf("lane 0 = %v, want [0 2]", got)
	}
	if got := [2]int{l.Lanes[1].Start, l.Lanes[1].End}; got != [2]int{2, 1} {
		t.Errorf("lane 1 = %v, want [2 1]", got)
	}
	if got := [2]int{l.Measurements[0].Start, l.Measurements[0].End}; got != [2]int{1, 0} {
		t.Errorf("measurement = %v, want [1 0]", got)
	}
}

func TestSaveDensityAndPreservation(t *testing.T) {
	s, level := sparseLevel(t, 1, 4, 6, 9)
	before := map[[2]float64]bool{}
	pairs := [][2]int{{1, 9}, {9, 4}, {6, 1}, {4, 6}}
	for _, p := range pairs {
		if _, err := s.AddWall(level, building.Wall{Start: p[0], End: p[1]}); err != nil {
			t.Fatalf("AddWall: %v", err)
		}
		// vertex X equals its original live identifier
		before[[2]float64{float64(p[0]), float64(p[1])}] = true
	}

	m, _ := mustSave(t, s)
	l := m.Levels["L1"]
	n := len(l.Vertices)
	if n != 4 {
		t.Fatalf("len(vertices) = %d, want 4", n)
	}
	for i, w := range l.Walls {
		if w.Start < 0 || w.Start >= n || w.End < 0 || w.End >= n {
			t.Fatalf("wall %d = (%d, %d) out of range", i, w.Start, w.End)
		}
		got := [2]float64{l.Vertices[w.Start].X, l.Vertices[w.End].X}
		if !before[got] {
			t.Errorf("wall %d connects %v, not a pre-save relationship", i, got)
		}
	}
}

func TestSaveCommitsDenseNumbering(t *testing.T) {
	s, level := sparseLevel(t, 0, 2, 5)
	if _, err := s.AddLane(level, building.Lane{Start: 5, End: 0}); err != nil {
		t.Fatalf("AddLane: %v", err)
	}
	first, _ := mustSave(t, s)

	lv, _ := s.Vertices(level)
	if !lv.Dense() {
		t.Errorf("vertex ids after save = %v, want dense", lv.IDs())
	}
	if lv.Next() != 3 {
		t.Errorf("Next() = %d, want 3", lv.Next())
	}

	second, _ := mustSave(t, s)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second save differs:\n%+v\n%+v", first, second)
	}

	// Editing after a save continues from the dense numbering.
	if _, id, _ := s.AddVertex(level, building.Vertex{}); id != 3 {
		t.Errorf("next id = %d, want 3", id)
	}
}

func TestSaveRoundTripCounts(t *testing.T) {
	orig, err := bmio.ImportFile("../io/testdata/office.building.yaml")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	s := scene.New()
	if _, err := s.Spawn(orig); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	m, _ := mustSave(t, s)
	if !reflect.DeepEqual(m.LevelNames(), orig.LevelNames()) {
		t.Fatalf("levels = %v, want %v", m.LevelNames(), orig.LevelNames())
	}
	for _, name := range orig.LevelNames() {
		want := orig.Levels[name]
		got := m.Levels[name]
		if got.Counts() != want.Counts() {
			t.Errorf("level %s counts = %+v, want %+v", name, got.Counts(), want.Counts())
		}
		if got.Elevation != want.Elevation || got.Drawing != want.Drawing {
			t.Errorf("level %s metadata = %v/%v, want %v/%v", name, got.Elevation, got.Drawing, want.Elevation, want.Drawing)
		}
	}
	if m.Name != orig.Name || m.Version != building.FormatVersion {
		t.Errorf("header = %q v%d", m.Name, m.Version)
	}
	if !reflect.DeepEqual(m.CrowdSim, orig.CrowdSim) {
		t.Errorf("crowd_sim = %v, want %v", m.CrowdSim, orig.CrowdSim)
	}
}

func TestSaveRootPrecondition(t *testing.T) {
	tests := []struct {
		name  string
		roots int
	}{
		{"no root", 0},
		{"two roots", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scene.New()
			for i := 0; i < tt.roots; i++ {
				if _, err := s.AddRoot("office", building.DefaultCrowdSim()); err != nil {
					t.Fatalf("AddRoot: %v", err)
				}
			}
			sink := &recordingSink{}
			_, err := NewSaver(sink, nil).Save(context.Background(), s, "out.yaml")
			if !bmerrors.Is(err, bmerrors.ErrCodePrecondition) {
				t.Errorf("err = %v, want PRECONDITION", err)
			}
			if len(sink.written()) != 0 {
				t.Errorf("sink written = %v, want nothing", sink.written())
			}
		})
	}
}

func TestSaveAborts(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *scene.Scene
		code  bmerrors.Code
	}{
		{
			name: "duplicate level name",
			build: func(t *testing.T) *scene.Scene {
				s := scene.New()
				root, _ := s.AddRoot("office", building.DefaultCrowdSim())
				_, _ = s.AddLevel(root, "L1", &scene.LevelExtra{})
				_, _ = s.AddLevel(root, "L1", &scene.LevelExtra{Elevation: 3})
				return s
			},
			code: bmerrors.ErrCodeDuplicateLevel,
		},
		{
			name: "no crowd sim",
			build: func(t *testing.T) *scene.Scene {
				s := scene.New()
				_, _ = s.AddRoot("office", nil)
				return s
			},
			code: bmerrors.ErrCodeMissingComponent,
		},
		{
			name: "no level metadata",
			build: func(t *testing.T) *scene.Scene {
				s := scene.New()
				root, _ := s.AddRoot("office", building.DefaultCrowdSim())
				_, _ = s.AddLevel(root, "L1", nil)
				return s
			},
			code: bmerrors.ErrCodeMissingComponent,
		},
		{
			name: "dangling lane",
			build: func(t *testing.T) *scene.Scene {
				s, level := sparseLevel(t, 0, 1)
				_, _ = s.AddLane(level, building.Lane{Start: 0, End: 9})
				return s
			},
			code: bmerrors.ErrCodeDanglingReference,
		},
		{
			name: "reference into another level",
			build: func(t *testing.T) *scene.Scene {
				s, _ := sparseLevel(t, 0, 1, 2)
				root := s.Roots()[0]
				l2, _ := s.AddLevel(root, "L2", &scene.LevelExtra{})
				_, _, _ = s.AddVertex(l2, building.Vertex{})
				_, _ = s.AddWall(l2, building.Wall{Start: 0, End: 2})
				return s
			},
			code: bmerrors.ErrCodeDanglingReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.build(t)
			sink := &recordingSink{}
			_, err := NewSaver(sink, nil).Save(context.Background(), s, "out.yaml")
			if !bmerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
			if !bmerrors.IsSaveAbort(err) {
				t.Errorf("IsSaveAbort(%v) = false", err)
			}
			if len(sink.written()) != 0 {
				t.Errorf("sink written = %v, want nothing", sink.written())
			}
		})
	}
}

// strippedScene hides one component kind, as a scene whose entity carries a
// kind but lost its component row would.
type strippedScene struct {
	*scene.Scene
	kind scene.Kind
}

func (s strippedScene) Lane(e scene.Entity) (building.Lane, bool) {
	if s.kind == scene.KindLane {
		return building.Lane{}, false
	}
	return s.Scene.Lane(e)
}

func (s strippedScene) Measurement(e scene.Entity) (building.Measurement, bool) {
	if s.kind == scene.KindMeasurement {
		return building.Measurement{}, false
	}
	return s.Scene.Measurement(e)
}

func (s strippedScene) Wall(e scene.Entity) (building.Wall, bool) {
	if s.kind == scene.KindWall {
		return building.Wall{}, false
	}
	return s.Scene.Wall(e)
}

func (s strippedScene) Model(e scene.Entity) (building.Model, bool) {
	if s.kind == scene.KindModel {
		return building.Model{}, false
	}
	return s.Scene.Model(e)
}

func TestReadLevelMissingDependentComponent(t *testing.T) {
	s, level := sparseLevel(t, 0, 1)
	_, _ = s.AddLane(level, building.Lane{Start: 0, End: 1})
	_, _ = s.AddMeasurement(level, building.Measurement{Start: 1, End: 0})
	_, _ = s.AddWall(level, building.Wall{Start: 0, End: 1})
	_, _ = s.AddModel(level, building.Model{Name: "desk"})

	if _, err := readLevel(strippedScene{Scene: s}, level); err != nil {
		t.Fatalf("readLevel(complete) error: %v", err)
	}

	for _, kind := range []scene.Kind{scene.KindLane, scene.KindMeasurement, scene.KindWall, scene.KindModel} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := readLevel(strippedScene{Scene: s, kind: kind}, level)
			if !bmerrors.Is(err, bmerrors.ErrCodeMissingComponent) {
				t.Fatalf("err = %v, want %s", err, bmerrors.ErrCodeMissingComponent)
			}
			if msg := err.Error(); !strings.Contains(msg, `level "L1"`) || !strings.Contains(msg, kind.String()) {
				t.Errorf("message = %q, want level and %s named", msg, kind)
			}
		})
	}
}

func TestSaveCopiesCrowdSim(t *testing.T) {
	cs := building.CrowdSim{
		"enable":         1,
		"agent_profiles": []any{map[string]any{"name": "human", "max_speed": 1.5}},
	}
	s := scene.New()
	root, _ := s.AddRoot("office", cs)
	_, _ = s.AddLevel(root, "L1", &scene.LevelExtra{})

	first, _ := mustSave(t, s)
	first.CrowdSim["agent_profiles"].([]any)[0].(map[string]any)["max_speed"] = 9.0
	cs["agent_profiles"].([]any)[0].(map[string]any)["name"] = "robot"

	second, _ := mustSave(t, s)
	profile := second.CrowdSim["agent_profiles"].([]any)[0].(map[string]any)
	if profile["max_speed"] != 1.5 || profile["name"] != "human" {
		t.Errorf("profile = %v, want the value the scene was built with", profile)
	}
}

func TestSaveAbortLeavesSceneUntouched(t *testing.T) {
	s, level := sparseLevel(t, 0, 2, 5)
	_, _ = s.AddLane(level, building.Lane{Start: 0, End: 9})

	if _, err := NewSaver(&recordingSink{}, nil).Save(context.Background(), s, "out.yaml"); err == nil {
		t.Fatal("expected error")
	}
	lv, _ := s.Vertices(level)
	if got := lv.IDs(); !reflect.DeepEqual(got, []int{0, 2, 5}) {
		t.Errorf("ids = %v, want [0 2 5]", got)
	}
}

func TestSaveWriteFailure(t *testing.T) {
	s, _ := sparseLevel(t, 0)
	sink := &recordingSink{err: errors.New("permission denied")}
	_, err := NewSaver(sink, nil).Save(context.Background(), s, "/readonly/out.yaml")
	if !bmerrors.Is(err, bmerrors.ErrCodeWriteFailed) {
		t.Errorf("err = %v, want WRITE_FAILED", err)
	}
}

func TestSaveInvalidLocation(t *testing.T) {
	s, _ := sparseLevel(t, 0)
	sink := &recordingSink{}
	_, err := NewSaver(sink, nil).Save(context.Background(), s, "  ")
	if !bmerrors.Is(err, bmerrors.ErrCodeInvalidLocation) {
		t.Errorf("err = %v, want INVALID_LOCATION", err)
	}
}

// =============================================================================
// Scheduling
// =============================================================================

func TestSlotLastWins(t *testing.T) {
	slot := NewSlot()
	if _, replaced := slot.Put(NewRequest("a.yaml")); replaced {
		t.Error("first Put replaced something")
	}
	prev, replaced := slot.Put(NewRequest("b.yaml"))
	if !replaced || prev.Location != "a.yaml" {
		t.Errorf("Put replaced %v %q, want a.yaml", replaced, prev.Location)
	}
	r, ok := slot.Take()
	if !ok || r.Location != "b.yaml" {
		t.Errorf("Take = %q %v, want b.yaml", r.Location, ok)
	}
	if _, ok := slot.Take(); ok {
		t.Error("slot not empty after Take")
	}
}

func TestSchedulerCoalescesRequests(t *testing.T) {
	s, _ := sparseLevel(t, 0, 1)
	sink := &recordingSink{}
	sc := NewScheduler(s, NewSaver(sink, nil))
	ctx := context.Background()

	if _, err := sc.Request(ctx, "first.yaml"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	second, err := sc.Request(ctx, "second.yaml")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	rep, ok := sc.RunPending(ctx)
	if !ok {
		t.Fatal("RunPending found nothing")
	}
	if rep.Err != nil || rep.Request.ID != second.ID {
		t.Errorf("report = %+v", rep)
	}
	if got := sink.written(); !reflect.DeepEqual(got, []string{"second.yaml"}) {
		t.Errorf("written = %v, want [second.yaml]", got)
	}
	if _, ok := sc.RunPending(ctx); ok {
		t.Error("second RunPending ran a pass")
	}
}

func TestSchedulerStatus(t *testing.T) {
	s, _ := sparseLevel(t, 0)
	sink := &recordingSink{}
	sc := NewScheduler(s, NewSaver(sink, nil))
	ctx := context.Background()

	if _, ok := sc.Last(); ok {
		t.Error("Last() before any pass should report nothing")
	}

	first, _ := sc.Request(ctx, "first.yaml")
	second, _ := sc.Request(ctx, "second.yaml")
	if _, st := sc.Status(second.ID); st != StatePending {
		t.Errorf("Status(second) = %s, want %s", st, StatePending)
	}
	if _, st := sc.Status(first.ID); st != StateUnknown {
		t.Errorf("Status(superseded) = %s, want %s", st, StateUnknown)
	}

	sc.RunPending(ctx)
	rep, st := sc.Status(second.ID)
	if st != StateSaved || rep.Outcome == nil || rep.Outcome.Location != "second.yaml" {
		t.Errorf("Status(second) = %s %+v, want saved to second.yaml", st, rep)
	}

	sink.err = errors.New("permission denied")
	third, _ := sc.Request(ctx, "third.yaml")
	sc.RunPending(ctx)
	rep, st = sc.Status(third.ID)
	if st != StateFailed || !bmerrors.Is(rep.Err, bmerrors.ErrCodeWriteFailed) {
		t.Errorf("Status(third) = %s %v, want failed with %s", st, rep.Err, bmerrors.ErrCodeWriteFailed)
	}
	if _, st := sc.Status(second.ID); st != StateUnknown {
		t.Errorf("Status(second) after a later pass = %s, want %s", st, StateUnknown)
	}
	if last, _ := sc.Last(); last.Request.ID != third.ID {
		t.Errorf("Last().Request = %v, want %v", last.Request.ID, third.ID)
	}
}

func TestSchedulerDo(t *testing.T) {
	s, level := sparseLevel(t, 0)
	sc := NewScheduler(s, NewSaver(&recordingSink{}, nil))

	var id int
	err := sc.Do(func(s *scene.Scene) error {
		var err error
		_, id, err = s.AddVertex(level, building.Vertex{})
		return err
	})
	if err != nil || id != 1 {
		t.Errorf("Do = %d, %v", id, err)
	}
}

func TestSchedulerRequestRejectsEmptyLocation(t *testing.T) {
	sc := NewScheduler(scene.New(), NewSaver(&recordingSink{}, nil))
	if _, err := sc.Request(context.Background(), ""); !bmerrors.Is(err, bmerrors.ErrCodeInvalidLocation) {
		t.Errorf("err = %v, want INVALID_LOCATION", err)
	}
	if sc.Pending() {
		t.Error("rejected request left pending")
	}
}

func TestSchedulerRun(t *testing.T) {
	s, _ := sparseLevel(t, 0)
	sink := &recordingSink{}
	sc := NewScheduler(s, NewSaver(sink, nil))

	reports := make(chan Report, 1)
	sc.OnReport = func(r Report) { reports <- r }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()

	if _, err := sc.Request(ctx, "run.yaml"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	select {
	case rep := <-reports:
		if rep.Err != nil || rep.Outcome.Location != "run.yaml" {
			t.Errorf("report = %+v", rep)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no report")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
