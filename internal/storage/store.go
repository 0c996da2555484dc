package storage

import (
	"context"
	"sort"
)

// Store is the backend-agnostic candidate persistence contract.
//
// Neither backend serialises concurrent mutations: each mutation is a read of the
// full data set followed by a write, so two concurrent writers can lose one
// update (whole-file granularity locally, row-position granularity remotely).
type Store interface {
	Append(ctx context.Context, c Candidate) error
	List(ctx context.Context, opts ListOptions) ([]Candidate, error)
	Get(ctx context.Context, candidateID string) (Candidate, error)
	UpdateStatus(ctx context.Context, candidateID string, status Status) (Candidate, error)
	Delete(ctx context.Context, candidateID string) (Candidate, error)
	DeleteByStatus(ctx context.Context, status Status) (int, error)
}

// sortNewestFirst orders records by received time, descending.
func sortNewestFirst(records []Candidate) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReceivedAt.After(records[j].ReceivedAt)
	})
}

func applyListOptions(records []Candidate, opts ListOptions) []Candidate {
	if opts.Status != nil {
		filtered := records[:0:0]
		for _, r := range records {
			if r.Status == *opts.Status {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records
}

func findByID(records []Candidate, candidateID string) (Candidate, bool) {
	for _, r := range records {
		if r.CandidateID == candidateID {
			return r, true
		}
	}
	return Candidate{}, false
}
