package save

import (
	"context"
	"sync"

	"github.com/google/uuid"

	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/observability"
	"github.com/matzehuels/buildingmap/pkg/scene"
)

// Report is the result of one scheduled pass.
type Report struct {
	Request Request
	Outcome *Outcome
	Err     error
}

// Scheduler serialises scene edits and save passes.
type Scheduler struct {
	mu    sync.Mutex
	scene *scene.Scene
	saver *Saver
	slot  *Slot

	lastMu sync.Mutex
	last   *Report

	// OnReport, if set, receives every pass result. It is called without
	// the scene lock held.
	OnReport func(Report)
}

// NewScheduler takes ownership of s.
func NewScheduler(s *scene.Scene, saver *Saver) *Scheduler {
	return &Scheduler{scene: s, saver: saver, slot: NewSlot()}
}

// Do runs fn with exclusive access to the scene. fn must not retain s.
func (sc *Scheduler) Do(fn func(s *scene.Scene) error) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return fn(sc.scene)
}

// Request queues a save to location, replacing any pending request.
func (sc *Scheduler) Request(ctx context.Context, location string) (Request, error) {
	if err := bmerrors.ValidateLocation(location); err != nil {
		return Request{}, err
	}
	r := NewRequest(location)
	if prev, ok := sc.slot.Put(r); ok {
		sc.saver.Logger.Debug("save request superseded", "id", prev.ID, "location", prev.Location, "by", r.ID)
		observability.Save().OnRequestSuperseded(ctx, prev.Location)
	}
	return r, nil
}

// Pending reports whether a save request is waiting.
func (sc *Scheduler) Pending() bool { return sc.slot.Pending() }

// Last returns the report of the most recent pass.
func (sc *Scheduler) Last() (Report, bool) {
	sc.lastMu.Lock()
	defer sc.lastMu.Unlock()
	if sc.last == nil {
		return Report{}, false
	}
	return *sc.last, true
}

// State is what the scheduler knows about one request.
type State string

const (
	StatePending State = "pending"
	StateSaved   State = "saved"
	StateFailed  State = "failed"
	// StateUnknown covers requests that were superseded, are older than the
	// last pass, or never existed.
	StateUnknown State = "unknown"
)

// Status looks up request id. The report is set for saved and failed
// requests; for a pending one only its Request field is.
func (sc *Scheduler) Status(id uuid.UUID) (Report, State) {
	if r, ok := sc.slot.Peek(); ok && r.ID == id {
		return Report{Request: r}, StatePending
	}
	if rep, ok := sc.Last(); ok && rep.Request.ID == id {
		if rep.Err != nil {
			return rep, StateFailed
		}
		return rep, StateSaved
	}
	return Report{}, StateUnknown
}

// RunPending executes one pass for the pending request, if any.
func (sc *Scheduler) RunPending(ctx context.Context) (Report, bool) {
	r, ok := sc.slot.Take()
	if !ok {
		return Report{}, false
	}

	sc.mu.Lock()
	out, err := sc.saver.Save(ctx, sc.scene, r.Location)
	sc.mu.Unlock()

	rep := Report{Request: r, Outcome: out, Err: err}
	sc.lastMu.Lock()
	sc.last = &rep
	sc.lastMu.Unlock()
	if sc.OnReport != nil {
		sc.OnReport(rep)
	}
	return rep, true
}

// Run executes passes as requests arrive until ctx is cancelled. A request
// pending at cancellation is not saved.
func (sc *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sc.slot.Ready():
			sc.RunPending(ctx)
		}
	}
}
