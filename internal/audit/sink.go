package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smarthire/internal/logger"
)

// timestampLayout is fixed-width so the text column sorts chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const createTableSQL = `CREATE TABLE IF NOT EXISTS audit_events (
	event_id    TEXT PRIMARY KEY,
	occurred_at TEXT NOT NULL,
	action      TEXT NOT NULL,
	metadata    TEXT NOT NULL
)`

// SQLSink persists audit events into the audit_events table. Writes are queued
// and flushed by a background goroutine; a full queue falls back to a
// synchronous insert.
type SQLSink struct {
	db   *sql.DB
	ch   chan Event
	done chan struct{}
	log  zerolog.Logger
}

// NewSQLSink starts the flush goroutine. Call Init before the first Write and
// Close on shutdown.
func NewSQLSink(db *sql.DB, bufferSize int) *SQLSink {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	s := &SQLSink{
		db:   db,
		ch:   make(chan Event, bufferSize),
		done: make(chan struct{}),
		log:  logger.Component("audit_sink"),
	}
	go s.flushLoop()
	return s
}

// Init creates the audit_events table if it does not exist.
func (s *SQLSink) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create audit_events: %w", err)
	}
	return nil
}

func (s *SQLSink) Write(e Event) {
	select {
	case s.ch <- e:
	default:
		s.log.Warn().Str("action", e.Action).Msg("audit queue full, writing synchronously")
		if err := s.insert(context.Background(), e); err != nil {
			s.log.Error().Err(err).Str("action", e.Action).Msg("audit insert failed")
		}
	}
}

func (s *SQLSink) flushLoop() {
	defer close(s.done)
	for e := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.insert(ctx, e); err != nil {
			s.log.Error().Err(err).Str("action", e.Action).Msg("audit insert failed")
		}
		cancel()
	}
}

func (s *SQLSink) insert(ctx context.Context, e Event) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_events (event_id, occurred_at, action, metadata) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), e.Timestamp.UTC().Format(timestampLayout), e.Action, string(meta))
	return err
}

// Recent reads up to limit persisted events, most recent first.
func (s *SQLSink) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT occurred_at, action, metadata FROM audit_events ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit_events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var ts, action, meta string
		if err := rows.Scan(&ts, &action, &meta); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e := Event{Action: action}
		if e.Timestamp, err = time.Parse(timestampLayout, ts); err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode audit metadata: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close drains queued events and stops the flush goroutine. Write must not be
// called after Close.
func (s *SQLSink) Close() {
	close(s.ch)
	<-s.done
}
