package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"smarthire/internal/logger"
)

// SheetStore keeps candidates as rows of a worksheet whose first row is SheetHeader.
// Records are addressed by row position, so a delete running concurrently with a
// list-then-update can shift the row an update targets.
type SheetStore struct {
	ws  Worksheet
	log zerolog.Logger
}

// NewSheetStore rewrites the header row when it does not match SheetHeader.
func NewSheetStore(ctx context.Context, ws Worksheet) (*SheetStore, error) {
	rows, err := ws.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read worksheet header: %w", err)
	}
	if len(rows) == 0 || !headerMatches(rows[0]) {
		if err := ws.SetHeader(ctx, SheetHeader); err != nil {
			return nil, fmt.Errorf("write worksheet header: %w", err)
		}
	}
	return &SheetStore{ws: ws, log: logger.Component("sheet_store")}, nil
}

func (s *SheetStore) Append(ctx context.Context, c Candidate) error {
	conf := ClampConfidence(c.Confidence)
	row := []string{
		formatTimestamp(c.ReceivedAt),
		c.FullName,
		c.Email,
		c.Phone,
		c.Location,
		strings.Join(c.Skills, ", "),
		c.Education,
		c.Experience,
		c.LastJobTitle,
		c.Source,
		strconv.FormatFloat(conf, 'f', -1, 64),
		c.CandidateID,
		string(c.Status),
	}
	if err := s.ws.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append candidate row: %w", err)
	}
	return nil
}

func (s *SheetStore) List(ctx context.Context, opts ListOptions) ([]Candidate, error) {
	records, _, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	return applyListOptions(records, opts), nil
}

func (s *SheetStore) Get(ctx context.Context, candidateID string) (Candidate, error) {
	records, _, err := s.scan(ctx)
	if err != nil {
		return Candidate{}, err
	}
	if c, ok := findByID(records, candidateID); ok {
		return c, nil
	}
	return Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
}

func (s *SheetStore) UpdateStatus(ctx context.Context, candidateID string, status Status) (Candidate, error) {
	if !status.Valid() {
		return Candidate{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	records, columns, err := s.scan(ctx)
	if err != nil {
		return Candidate{}, err
	}
	c, ok := findByID(records, candidateID)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
	}
	col, ok := columns["Status"]
	if !ok {
		return Candidate{}, fmt.Errorf("worksheet has no Status column")
	}
	if err := s.ws.UpdateCell(ctx, c.SheetRow, col+1, string(status)); err != nil {
		return Candidate{}, fmt.Errorf("update status cell: %w", err)
	}
	c.Status = status
	return c, nil
}

func (s *SheetStore) Delete(ctx context.Context, candidateID string) (Candidate, error) {
	records, _, err := s.scan(ctx)
	if err != nil {
		return Candidate{}, err
	}
	c, ok := findByID(records, candidateID)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
	}
	if err := s.ws.DeleteRow(ctx, c.SheetRow); err != nil {
		return Candidate{}, fmt.Errorf("delete candidate row: %w", err)
	}
	return c, nil
}

// DeleteByStatus removes rows from the bottom up so earlier deletes never shift
// the position of a row still waiting to be removed.
func (s *SheetStore) DeleteByStatus(ctx context.Context, status Status) (int, error) {
	records, _, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	var rows []int
	for _, r := range records {
		if r.Status == status {
			rows = append(rows, r.SheetRow)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	for i, row := range rows {
		if err := s.ws.DeleteRow(ctx, row); err != nil {
			return i, fmt.Errorf("delete candidate row %d: %w", row, err)
		}
	}
	return len(rows), nil
}

// scan reads every data row, runs the repair pass, applies the deferred writes
// and returns the records newest first together with the header column index.
func (s *SheetStore) scan(ctx context.Context) ([]Candidate, map[string]int, error) {
	values, err := s.ws.Rows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read worksheet: %w", err)
	}
	if len(values) == 0 {
		return []Candidate{}, headerIndex(SheetHeader), nil
	}

	columns := headerIndex(values[0])
	records := make([]Candidate, 0, len(values)-1)
	var fixes []rowFix
	for i, raw := range values[1:] {
		if blankRow(raw) {
			continue
		}
		rowNumber := i + 2
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}

		id, status, fix := repairIdentity(rowNumber, cell("Candidate ID"), cell("Status"))
		if fix != nil {
			fixes = append(fixes, *fix)
		}
		records = append(records, candidateFromCells(cell, id, status, rowNumber))
	}

	if len(fixes) > 0 {
		if err := s.applyFixes(ctx, fixes, columns); err != nil {
			return nil, nil, err
		}
		s.log.Info().Int("rows", len(fixes)).Msg("backfilled legacy candidate rows")
	}

	sortNewestFirst(records)
	return records, columns, nil
}

func (s *SheetStore) applyFixes(ctx context.Context, fixes []rowFix, columns map[string]int) error {
	for _, f := range fixes {
		if col, ok := columns["Candidate ID"]; ok && f.SetID {
			if err := s.ws.UpdateCell(ctx, f.Index, col+1, f.CandidateID); err != nil {
				return fmt.Errorf("backfill candidate id on row %d: %w", f.Index, err)
			}
		}
		if col, ok := columns["Status"]; ok && f.SetStatus {
			if err := s.ws.UpdateCell(ctx, f.Index, col+1, string(f.Status)); err != nil {
				return fmt.Errorf("backfill status on row %d: %w", f.Index, err)
			}
		}
	}
	return nil
}

func candidateFromCells(cell func(string) string, id string, status Status, row int) Candidate {
	source := cell("Source")
	if source == "" {
		source = "unknown"
	}
	c := Candidate{
		CandidateID:  id,
		FullName:     cell("Full Name"),
		Email:        cell("Email"),
		Phone:        cell("Phone"),
		Location:     cell("Location"),
		Skills:       splitAndTrim(cell("Skills")),
		Education:    cell("Education"),
		Experience:   cell("Experience"),
		LastJobTitle: cell("Last Job Title"),
		Source:       source,
		ReceivedAt:   parseTimestamp(cell("Timestamp")),
		Status:       status,
		SheetRow:     row,
	}
	if v, err := strconv.ParseFloat(cell("Confidence"), 64); err == nil {
		c.Confidence = ClampConfidence(v)
	}
	return c
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
