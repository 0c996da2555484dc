package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("candidate not found")
	ErrStoreCorruption = errors.New("candidate store corrupted")
	ErrInvalidStatus   = errors.New("invalid candidate status")
)

// Status is the recruiting workflow state of a candidate. Any status may be set to any other.
type Status string

const (
	StatusNew       Status = "new"
	StatusApproved  Status = "approved"
	StatusInterview Status = "interview"
	StatusSelected  Status = "selected"
	StatusRejected  Status = "rejected"
	StatusArchived  Status = "archived"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusNew, StatusApproved, StatusInterview, StatusSelected, StatusRejected, StatusArchived}

// ParseStatus accepts the lowercase wire value or the uppercase enumeration name.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Candidate is the structured record produced by the extraction pipeline.
// Note: SheetRow is a positional handle for the tabular backend and never leaves the storage layer.
type Candidate struct {
	CandidateID  string    `json:"candidate_id"`
	FullName     string    `json:"full_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	Skills       []string  `json:"skills"`
	Education    string    `json:"education,omitempty"`
	Experience   string    `json:"experience,omitempty"`
	LastJobTitle string    `json:"last_job_title,omitempty"`
	Source       string    `json:"source"`
	ReceivedAt   time.Time `json:"received_at"`
	Confidence   float64   `json:"confidence"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"status"`

	SheetRow int `json:"-"`
}

// ListOptions filters a listing. A nil Status returns every record; Limit <= 0 means no limit.
type ListOptions struct {
	Status *Status
	Limit  int
}

// NewCandidateID returns a fresh opaque identifier (32 lowercase hex characters).
func NewCandidateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ClampConfidence keeps a confidence value inside [0, 1].
func ClampConfidence(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Board groups candidates per status for the recruiter dashboard.
type Board struct {
	New       []Candidate `json:"new"`
	Approved  []Candidate `json:"approved"`
	Interview []Candidate `json:"interview"`
	Selected  []Candidate `json:"selected"`
	Rejected  []Candidate `json:"rejected"`
}

const timestampLayoutNoZone = "2006-01-02T15:04:05.999999999"

// parseTimestamp reads ISO-8601 forms written by either backend. Unparsable values fall back to now.
func parseTimestamp(v string) time.Time {
	v = strings.TrimSpace(v)
	if v != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, timestampLayoutNoZone, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Now().UTC()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// helper to split comma-separated skills
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
