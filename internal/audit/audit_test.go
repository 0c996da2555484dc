package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"smarthire/internal/storage"
)

type memSink struct {
	mu     sync.Mutex
	events []Event
}

func (m *memSink) Write(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

type panicSink struct{}

func (panicSink) Write(Event) { panic("sink exploded") }

func TestRecorder_RecentNewestFirst(t *testing.T) {
	r := NewRecorder(10, nil)
	for i := 0; i < 3; i++ {
		r.Record(ActionCandidateIngested, map[string]string{"n": fmt.Sprint(i)})
	}

	got := r.Recent(2)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Metadata["n"])
	assert.Equal(t, "1", got[1].Metadata["n"])
	assert.Len(t, r.Recent(0), 3)
	assert.Len(t, r.Recent(50), 3)
}

func TestRecorder_RingOverwritesOldest(t *testing.T) {
	r := NewRecorder(3, nil)
	for i := 0; i < 5; i++ {
		r.Record(ActionCandidateDeleted, map[string]string{"n": fmt.Sprint(i)})
	}

	got := r.Recent(10)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"4", "3", "2"}, []string{got[0].Metadata["n"], got[1].Metadata["n"], got[2].Metadata["n"]})
}

func TestRecorder_CopiesMetadata(t *testing.T) {
	r := NewRecorder(0, nil)
	meta := map[string]string{"candidate_id": "a"}
	r.Record(ActionCandidateStatusUpdated, meta)
	meta["candidate_id"] = "mutated"

	assert.Equal(t, "a", r.Recent(1)[0].Metadata["candidate_id"])
	assert.Equal(t, DefaultCapacity, len(r.events))
}

func TestRecorder_SinkReceivesEventsAndPanicsAreContained(t *testing.T) {
	sink := &memSink{}
	r := NewRecorder(5, sink)
	r.Record(ActionCandidateBulkDelete, map[string]string{"status": "rejected", "count": "2"})
	require.Len(t, sink.events, 1)
	assert.Equal(t, ActionCandidateBulkDelete, sink.events[0].Action)

	bad := NewRecorder(5, panicSink{})
	assert.NotPanics(t, func() { bad.Record(ActionCandidateDeleted, nil) })
	assert.Len(t, bad.Recent(1), 1)
}

func newTestSink(t *testing.T) *SQLSink {
	t.Helper()
	db, err := storage.OpenDB("sqlite", filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	sink := NewSQLSink(db.GetConnection(), 4)
	require.NoError(t, sink.Init(context.Background()))
	return sink
}

func TestSQLSink_PersistsEvents(t *testing.T) {
	sink := newTestSink(t)
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	sink.Write(Event{Timestamp: base, Action: ActionCandidateIngested, Metadata: map[string]string{"email": "jane@example.com"}})
	sink.Write(Event{Timestamp: base.Add(100 * time.Millisecond), Action: ActionCandidateDeleted, Metadata: map[string]string{"candidate_id": "x"}})
	sink.Close()

	got, err := sink.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ActionCandidateDeleted, got[0].Action)
	assert.Equal(t, "x", got[0].Metadata["candidate_id"])
	assert.True(t, got[1].Timestamp.Equal(base))
	assert.Equal(t, "jane@example.com", got[1].Metadata["email"])
}

func TestSQLSink_InitIsIdempotent(t *testing.T) {
	sink := newTestSink(t)
	defer sink.Close()
	assert.NoError(t, sink.Init(context.Background()))
}

func TestRecorderWithSQLSink(t *testing.T) {
	sink := newTestSink(t)
	r := NewRecorder(2, sink)
	for i := 0; i < 3; i++ {
		r.Record(ActionCandidateStatusUpdated, map[string]string{"candidate_id": fmt.Sprint(i), "status": "approved"})
	}
	sink.Close()

	assert.Len(t, r.Recent(10), 2, "memory ring is bounded")
	persisted, err := sink.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, persisted, 3, "durable sink keeps everything")
}

type failingReader struct{ memSink }

func (*failingReader) Recent(context.Context, int) ([]Event, error) {
	return nil, errors.New("database unavailable")
}

func TestRecorder_HistoryPrefersDurableSink(t *testing.T) {
	sink := newTestSink(t)
	r := NewRecorder(1, sink)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	r.Record(ActionCandidateIngested, map[string]string{"candidate_id": "a"})
	r.Record(ActionCandidateDeleted, map[string]string{"candidate_id": "b"})
	sink.Close()

	got := r.History(context.Background(), 10)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Metadata["candidate_id"])
	assert.Equal(t, "a", got[1].Metadata["candidate_id"])
}

func TestRecorder_HistoryFallsBackToRing(t *testing.T) {
	plain := NewRecorder(5, &memSink{})
	plain.Record(ActionCandidateIngested, nil)
	assert.Len(t, plain.History(context.Background(), 10), 1)

	broken := NewRecorder(5, &failingReader{})
	broken.Record(ActionCandidateDeleted, nil)
	got := broken.History(context.Background(), 10)
	require.Len(t, got, 1)
	assert.Equal(t, ActionCandidateDeleted, got[0].Action)
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Record(ActionCandidateDeleted, map[string]string{"candidate_id": "a"}) })
	assert.Empty(t, r.Recent(10))
	assert.Empty(t, r.History(context.Background(), 10))
}
