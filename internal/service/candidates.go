package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"smarthire/internal/audit"
	"smarthire/internal/logger"
	"smarthire/internal/storage"
)

// Candidates wraps store mutations with audit events.
type Candidates struct {
	store storage.Store
	audit *audit.Recorder
	log   zerolog.Logger
}

func NewCandidates(store storage.Store, rec *audit.Recorder) *Candidates {
	return &Candidates{store: store, audit: rec, log: logger.Component("candidates")}
}

func (s *Candidates) List(ctx context.Context, status *storage.Status, limit int) ([]storage.Candidate, error) {
	return s.store.List(ctx, storage.ListOptions{Status: status, Limit: limit})
}

// Board groups every candidate by status, newest first within each column.
// Archived candidates are left off the board.
func (s *Candidates) Board(ctx context.Context) (*storage.Board, error) {
	all, err := s.store.List(ctx, storage.ListOptions{})
	if err != nil {
		return nil, err
	}
	b := &storage.Board{
		New:       []storage.Candidate{},
		Approved:  []storage.Candidate{},
		Interview: []storage.Candidate{},
		Selected:  []storage.Candidate{},
		Rejected:  []storage.Candidate{},
	}
	for _, c := range all {
		switch c.Status {
		case storage.StatusNew:
			b.New = append(b.New, c)
		case storage.StatusApproved:
			b.Approved = append(b.Approved, c)
		case storage.StatusInterview:
			b.Interview = append(b.Interview, c)
		case storage.StatusSelected:
			b.Selected = append(b.Selected, c)
		case storage.StatusRejected:
			b.Rejected = append(b.Rejected, c)
		}
	}
	return b, nil
}

func (s *Candidates) Get(ctx context.Context, candidateID string) (storage.Candidate, error) {
	return s.store.Get(ctx, candidateID)
}

func (s *Candidates) UpdateStatus(ctx context.Context, candidateID string, status storage.Status) (storage.Candidate, error) {
	c, err := s.store.UpdateStatus(ctx, candidateID, status)
	if err != nil {
		return storage.Candidate{}, err
	}
	s.audit.Record(audit.ActionCandidateStatusUpdated, map[string]string{
		"candidate_id": candidateID,
		"status":       string(status),
	})
	return c, nil
}

func (s *Candidates) Delete(ctx context.Context, candidateID string) (storage.Candidate, error) {
	c, err := s.store.Delete(ctx, candidateID)
	if err != nil {
		return storage.Candidate{}, err
	}
	s.audit.Record(audit.ActionCandidateDeleted, map[string]string{
		"candidate_id": candidateID,
		"email":        c.Email,
	})
	return c, nil
}

// DeleteByStatus audits only when something was removed.
func (s *Candidates) DeleteByStatus(ctx context.Context, status storage.Status) (int, error) {
	n, err := s.store.DeleteByStatus(ctx, status)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.audit.Record(audit.ActionCandidateBulkDelete, map[string]string{
			"status": string(status),
			"count":  strconv.Itoa(n),
		})
		s.log.Info().Str("status", string(status)).Int("count", n).Msg("bulk deleted candidates")
	}
	return n, nil
}

// SkillCount is how many stored candidates list a skill.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// PopularSkills ranks skills by candidate count, ties broken alphabetically.
func (s *Candidates) PopularSkills(ctx context.Context, limit int) ([]SkillCount, error) {
	all, err := s.store.List(ctx, storage.ListOptions{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, c := range all {
		seen := make(map[string]bool, len(c.Skills))
		for _, sk := range c.Skills {
			sk = strings.ToLower(strings.TrimSpace(sk))
			if sk == "" || seen[sk] {
				continue
			}
			seen[sk] = true
			counts[sk]++
		}
	}

	out := make([]SkillCount, 0, len(counts))
	for sk, n := range counts {
		out = append(out, SkillCount{Skill: sk, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
