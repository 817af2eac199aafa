package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/save"
	"github.com/matzehuels/buildingmap/pkg/scene"
	"github.com/matzehuels/buildingmap/pkg/storage"
)

type saveRequest struct {
	Location string `json:"location"`
}

type saveResponse struct {
	ID       uuid.UUID `json:"id"`
	Location string    `json:"location"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var body saveRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if s.sinks != nil {
		loc, err := storage.ParseLocation(body.Location)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if !s.sinks.Has(loc.Scheme) {
			s.writeError(w, bmerrors.Wrap(bmerrors.ErrCodeInvalidLocation, storage.ErrUnsupportedScheme, "%s", loc.Scheme))
			return
		}
	}
	req, err := s.sched.Request(r.Context(), body.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("save requested", "id", req.ID, "location", req.Location)
	writeJSON(w, http.StatusAccepted, saveResponse{ID: req.ID, Location: req.Location})
}

// saveStatus is the state of one save request. Error fields are set for
// failed passes, Levels for successful ones.
type saveStatus struct {
	ID       uuid.UUID     `json:"id"`
	Location string        `json:"location"`
	State    save.State    `json:"state"`
	Levels   int           `json:"levels,omitempty"`
	Duration string        `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
	Code     bmerrors.Code `json:"code,omitempty"`
}

func stateOf(rep save.Report) save.State {
	if rep.Err != nil {
		return save.StateFailed
	}
	return save.StateSaved
}

func newSaveStatus(rep save.Report, st save.State) saveStatus {
	out := saveStatus{ID: rep.Request.ID, Location: rep.Request.Location, State: st}
	if rep.Err != nil {
		out.Error = bmerrors.UserMessage(rep.Err)
		out.Code = bmerrors.GetCode(rep.Err)
	}
	if rep.Outcome != nil {
		out.Levels = len(rep.Outcome.Map.Levels)
		out.Duration = rep.Outcome.Duration.String()
	}
	return out
}

func (s *Server) handleSaveStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, bmerrors.Wrap(bmerrors.ErrCodeInvalidInput, err, "save request id"))
		return
	}
	rep, st := s.sched.Status(id)
	if st == save.StateUnknown {
		s.writeError(w, bmerrors.New(bmerrors.ErrCodeNotFound, "save request %s is unknown or was superseded", id))
		return
	}
	writeJSON(w, http.StatusOK, newSaveStatus(rep, st))
}

func (s *Server) handleSavedKeys(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		s.writeError(w, bmerrors.New(bmerrors.ErrCodeNotFound, "no memory sink"))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": s.memory.Keys()})
}

func (s *Server) handleSavedDocument(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if s.memory == nil {
		s.writeError(w, bmerrors.New(bmerrors.ErrCodeNotFound, "no memory sink"))
		return
	}
	data, ok := s.memory.Get(key)
	if !ok {
		s.writeError(w, bmerrors.New(bmerrors.ErrCodeNotFound, "nothing saved under %q", key))
		return
	}
	w.Header().Set("Content-Type", s.memory.Format(key).ContentType())
	_, _ = w.Write(data)
}

type levelSummary struct {
	Name string `json:"name"`
	building.Counts
	NextVertexID int `json:"next_vertex_id"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	var out []levelSummary
	err := s.sched.Do(func(sc *scene.Scene) error {
		root, err := save.FindRoot(sc)
		if err != nil {
			return err
		}
		for _, level := range sc.Levels(root) {
			name, _ := sc.Name(level)
			sum := levelSummary{Name: name, Counts: countLevel(sc, level)}
			if lv, ok := sc.Vertices(level); ok {
				sum.NextVertexID = lv.Next()
			}
			out = append(out, sum)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func countLevel(sc *scene.Scene, level scene.Entity) building.Counts {
	var c building.Counts
	for _, e := range sc.Children(level) {
		switch sc.Kind(e) {
		case scene.KindVertex:
			c.Vertices++
		case scene.KindLane:
			c.Lanes++
		case scene.KindMeasurement:
			c.Measurements++
		case scene.KindWall:
			c.Walls++
		case scene.KindModel:
			c.Models++
		}
	}
	return c
}

// withLevel resolves the {level} URL parameter under the scheduler lock.
func (s *Server) withLevel(r *http.Request, fn func(sc *scene.Scene, level scene.Entity) error) error {
	name := chi.URLParam(r, "level")
	return s.sched.Do(func(sc *scene.Scene) error {
		root, err := save.FindRoot(sc)
		if err != nil {
			return err
		}
		level, ok := sc.LevelByName(root, name)
		if !ok {
			return bmerrors.New(bmerrors.ErrCodeNotFound, "level %q not found", name)
		}
		return fn(sc, level)
	})
}

type vertexRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Name string  `json:"name"`
}

type idResponse struct {
	ID int `json:"id"`
}

func (s *Server) handleAddVertex(w http.ResponseWriter, r *http.Request) {
	var body vertexRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	var id int
	err := s.withLevel(r, func(sc *scene.Scene, level scene.Entity) error {
		var err error
		_, id, err = sc.AddVertex(level, building.Vertex{X: body.X, Y: body.Y, Z: body.Z, Name: body.Name})
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleDeleteVertex(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, bmerrors.Wrap(bmerrors.ErrCodeInvalidInput, err, "vertex id"))
		return
	}
	err = s.withLevel(r, func(sc *scene.Scene, level scene.Entity) error {
		e, err := sc.VertexEntity(level, id)
		if err != nil {
			return bmerrors.Wrap(bmerrors.ErrCodeNotFound, err, "vertex %d", id)
		}
		return sc.Despawn(e)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type laneRequest struct {
	Start         int  `json:"start"`
	End           int  `json:"end"`
	Bidirectional bool `json:"bidirectional"`
}

func (s *Server) handleAddLane(w http.ResponseWriter, r *http.Request) {
	var body laneRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	err := s.withLevel(r, func(sc *scene.Scene, level scene.Entity) error {
		for _, id := range []int{body.Start, body.End} {
			if _, err := sc.VertexEntity(level, id); err != nil {
				return bmerrors.Wrap(bmerrors.ErrCodeInvalidInput, err, "lane endpoint %d", id)
			}
		}
		_, err := sc.AddLane(level, building.Lane{
			Start: body.Start,
			End:   body.End,
			Properties: building.LaneProperties{
				Bidirectional: building.P(body.Bidirectional),
			},
		})
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
