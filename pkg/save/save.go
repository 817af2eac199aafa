package save

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/observability"
	"github.com/matzehuels/buildingmap/pkg/scene"
)

// Sink persists an assembled document at a location.
type Sink interface {
	Write(ctx context.Context, m *building.Map, location string) error
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ctx context.Context, m *building.Map, location string) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, m *building.Map, location string) error {
	return f(ctx, m, location)
}

// Outcome describes a successful save pass.
type Outcome struct {
	Location string
	Map      *building.Map
	Duration time.Duration
}

// Saver runs save passes against a sink.
//
// A Saver holds no scene state; callers must guarantee that nothing else
// mutates the scene while Save runs. [Scheduler] does this.
type Saver struct {
	Sink   Sink
	Logger *log.Logger
}

// NewSaver returns a saver writing to sink. A nil logger discards output.
func NewSaver(sink Sink, logger *log.Logger) *Saver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Saver{Sink: sink, Logger: logger}
}

// Save assembles s, commits the dense vertex numbering back into s and
// writes the document to location. Nothing is written when assembly fails.
func (sv *Saver) Save(ctx context.Context, s *scene.Scene, location string) (out *Outcome, err error) {
	start := time.Now()
	hooks := observability.Save()
	hooks.OnSaveStart(ctx, location)
	defer func() {
		hooks.OnSaveComplete(ctx, location, time.Since(start), err)
		if err != nil {
			sv.Logger.Error("save failed", "location", location, "err", err)
		}
	}()

	if err := bmerrors.ValidateLocation(location); err != nil {
		return nil, err
	}
	sv.Logger.Info("saving map", "location", location)

	a, err := Assemble(s)
	if err != nil {
		return nil, err
	}
	for _, name := range a.Map.LevelNames() {
		level := a.Map.Levels[name]
		c := level.Counts()
		sv.Logger.Debug("assembled level",
			"level", name,
			"vertices", c.Vertices,
			"lanes", c.Lanes,
			"measurements", c.Measurements,
			"walls", c.Walls,
			"models", c.Models)
		hooks.OnLevelAssembled(ctx, name, c.Vertices, c.Lanes+c.Measurements+c.Walls)
	}

	if err := a.Commit(s); err != nil {
		return nil, err
	}

	if err := sv.Sink.Write(ctx, a.Map, location); err != nil {
		if code := bmerrors.GetCode(err); code == bmerrors.ErrCodeInvalidLocation || code == bmerrors.ErrCodeWriteFailed {
			return nil, err
		}
		return nil, bmerrors.Wrap(bmerrors.ErrCodeWriteFailed, err, "write %s", location)
	}

	out = &Outcome{Location: location, Map: a.Map, Duration: time.Since(start)}
	sv.Logger.Info("saved map", "location", location, "levels", len(a.Map.Levels), "duration", out.Duration)
	return out, nil
}
