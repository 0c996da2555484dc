package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"smarthire/internal/logger"
)

// fileRow is one object of the local JSON array document.
type fileRow struct {
	Timestamp    string   `json:"timestamp"`
	FullName     *string  `json:"full_name"`
	Email        *string  `json:"email"`
	Phone        *string  `json:"phone"`
	Location     *string  `json:"location"`
	Skills       []string `json:"skills"`
	Education    *string  `json:"education"`
	Experience   *string  `json:"experience"`
	LastJobTitle *string  `json:"last_job_title"`
	Source       string   `json:"source"`
	Confidence   *float64 `json:"confidence"`
	CandidateID  string   `json:"candidate_id"`
	Status       string   `json:"status"`
}

// FileStore persists candidates in a single JSON array document, rewritten in
// full on every mutation. There is no mutual exclusion between callers.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore creates the parent directory and an empty document when missing.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialise store file: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	return &FileStore{path: path, log: logger.Component("file_store")}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Append(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := s.read()
	if err != nil {
		return err
	}
	rows = append(rows, toFileRow(c))
	return s.write(rows)
}

func (s *FileStore) List(ctx context.Context, opts ListOptions) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, records, err := s.loadRepaired()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return applyListOptions(records, opts), nil
}

func (s *FileStore) Get(ctx context.Context, candidateID string) (Candidate, error) {
	records, err := s.List(ctx, ListOptions{})
	if err != nil {
		return Candidate{}, err
	}
	if c, ok := findByID(records, candidateID); ok {
		return c, nil
	}
	return Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
}

func (s *FileStore) UpdateStatus(ctx context.Context, candidateID string, status Status) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	if !status.Valid() {
		return Candidate{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	rows, records, err := s.loadRepaired()
	if err != nil {
		return Candidate{}, err
	}
	for i := range records {
		if records[i].CandidateID != candidateID {
			continue
		}
		rows[i].Status = string(status)
		if err := s.write(rows); err != nil {
			return Candidate{}, err
		}
		records[i].Status = status
		return records[i], nil
	}
	return Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
}

func (s *FileStore) Delete(ctx context.Context, candidateID string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	rows, records, err := s.loadRepaired()
	if err != nil {
		return Candidate{}, err
	}
	for i := range records {
		if records[i].CandidateID != candidateID {
			continue
		}
		rows = append(rows[:i], rows[i+1:]...)
		if err := s.write(rows); err != nil {
			return Candidate{}, err
		}
		return records[i], nil
	}
	return Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
}

func (s *FileStore) DeleteByStatus(ctx context.Context, status Status) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rows, records, err := s.loadRepaired()
	if err != nil {
		return 0, err
	}
	kept := rows[:0:0]
	removed := 0
	for i := range records {
		if records[i].Status == status {
			removed++
			continue
		}
		kept = append(kept, rows[i])
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// loadRepaired reads the document, runs the repair pass, and persists the
// deferred fixes before returning. rows and records share indexes.
func (s *FileStore) loadRepaired() ([]fileRow, []Candidate, error) {
	rows, err := s.read()
	if err != nil {
		return nil, nil, err
	}

	records := make([]Candidate, 0, len(rows))
	var fixes []rowFix
	for i, row := range rows {
		id, status, fix := repairIdentity(i, row.CandidateID, row.Status)
		if fix != nil {
			fixes = append(fixes, *fix)
		}
		c := fromFileRow(row)
		c.CandidateID = id
		c.Status = status
		records = append(records, c)
	}

	if len(fixes) > 0 {
		for _, f := range fixes {
			if f.SetID {
				rows[f.Index].CandidateID = f.CandidateID
			}
			if f.SetStatus {
				rows[f.Index].Status = string(f.Status)
			}
		}
		if err := s.write(rows); err != nil {
			return nil, nil, err
		}
		s.log.Info().Int("rows", len(fixes)).Msg("backfilled legacy candidate rows")
	}
	return rows, records, nil
}

func (s *FileStore) read() ([]fileRow, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}
	// Unmarshal rejects trailing values, so a concatenated document cannot be
	// read as its first array and truncated by the next write.
	var rows []fileRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorruption, s.path, err)
	}
	return rows, nil
}

// write replaces the document through a temp file in the same directory so a
// crash mid-write never leaves a truncated array behind.
func (s *FileStore) write(rows []fileRow) error {
	if rows == nil {
		rows = []fileRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".candidates-*.json")
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func toFileRow(c Candidate) fileRow {
	conf := ClampConfidence(c.Confidence)
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	return fileRow{
		Timestamp:    formatTimestamp(c.ReceivedAt),
		FullName:     optional(c.FullName),
		Email:        optional(c.Email),
		Phone:        optional(c.Phone),
		Location:     optional(c.Location),
		Skills:       skills,
		Education:    optional(c.Education),
		Experience:   optional(c.Experience),
		LastJobTitle: optional(c.LastJobTitle),
		Source:       c.Source,
		Confidence:   &conf,
		CandidateID:  c.CandidateID,
		Status:       string(c.Status),
	}
}

func fromFileRow(r fileRow) Candidate {
	source := r.Source
	if source == "" {
		source = "unknown"
	}
	c := Candidate{
		FullName:     deref(r.FullName),
		Email:        deref(r.Email),
		Phone:        deref(r.Phone),
		Location:     deref(r.Location),
		Skills:       r.Skills,
		Education:    deref(r.Education),
		Experience:   deref(r.Experience),
		LastJobTitle: deref(r.LastJobTitle),
		Source:       source,
		ReceivedAt:   parseTimestamp(r.Timestamp),
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if r.Confidence != nil {
		c.Confidence = ClampConfidence(*r.Confidence)
	}
	return c
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
