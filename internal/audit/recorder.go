package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"smarthire/internal/logger"
)

// DefaultCapacity bounds the in-memory event log.
const DefaultCapacity = 1000

const (
	ActionCandidateIngested      = "candidate_ingested"
	ActionCandidateStatusUpdated = "candidate_status_updated"
	ActionCandidateDeleted       = "candidate_deleted"
	ActionCandidateBulkDelete    = "candidate_bulk_delete"
)

// Event is one audited domain action.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Metadata  map[string]string `json:"metadata"`
}

// Sink receives a copy of every recorded event. Write must not block the caller.
type Sink interface {
	Write(e Event)
}

// Reader is implemented by sinks that keep their own history.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Recorder keeps the most recent events in a fixed-size ring. Older events are
// overwritten once the ring is full.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	sink   Sink
	now    func() time.Time
	log    zerolog.Logger
}

// NewRecorder creates a recorder holding up to capacity events. sink may be nil.
func NewRecorder(capacity int, sink Sink) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		events: make([]Event, capacity),
		sink:   sink,
		now:    time.Now,
		log:    logger.Component("audit"),
	}
}

// Record appends an event. It never fails; a panicking sink is logged and
// ignored, and a nil Recorder records nothing.
func (r *Recorder) Record(action string, metadata map[string]string) {
	if r == nil {
		return
	}
	e := Event{
		Timestamp: r.now().UTC(),
		Action:    action,
		Metadata:  make(map[string]string, len(metadata)),
	}
	for k, v := range metadata {
		e.Metadata[k] = v
	}

	r.mu.Lock()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()

	r.log.Debug().Str("action", action).Interface("metadata", e.Metadata).Msg("audit event")

	if r.sink != nil {
		r.writeSink(e)
	}
}

func (r *Recorder) writeSink(e Event) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Str("action", e.Action).Msg("audit sink panicked")
		}
	}()
	r.sink.Write(e)
}

// Recent returns up to limit events, most recent first. limit <= 0 returns all.
func (r *Recorder) Recent(limit int) []Event {
	if r == nil {
		return []Event{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Event, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.next - 1 - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out
}

// History serves events from the sink when it is a Reader and from the ring
// otherwise. A failing read falls back to the ring. Sink writes are queued, so
// the newest events can lag behind the ring.
func (r *Recorder) History(ctx context.Context, limit int) []Event {
	if r == nil {
		return []Event{}
	}
	if reader, ok := r.sink.(Reader); ok {
		events, err := reader.Recent(ctx, limit)
		if err == nil {
			return events
		}
		r.log.Warn().Err(err).Msg("audit history unavailable, serving in-memory events")
	}
	return r.Recent(limit)
}
