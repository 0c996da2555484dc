package cv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"smarthire/internal/llm"
	"smarthire/internal/logger"
	"smarthire/internal/storage"
)

// DefaultEnrichmentMaxChars caps the text sent for enrichment.
const DefaultEnrichmentMaxChars = 8000

var ErrEnrichment = errors.New("enrichment failed")

// Enricher fills candidate fields from resume text using an external model.
type Enricher interface {
	ExtractCandidate(ctx context.Context, text string, draft llm.CandidateFields) (*llm.CandidateFields, error)
}

// EnrichmentMerger calls the Enricher when contact details are missing and
// merges its answer into the heuristic record. Failures are logged and dropped.
type EnrichmentMerger struct {
	enricher Enricher
	maxChars int
	log      zerolog.Logger
}

// NewEnrichmentMerger accepts a nil enricher, which disables enrichment.
func NewEnrichmentMerger(enricher Enricher, maxChars int) *EnrichmentMerger {
	if maxChars <= 0 {
		maxChars = DefaultEnrichmentMaxChars
	}
	return &EnrichmentMerger{enricher: enricher, maxChars: maxChars, log: logger.Component("enrichment")}
}

// Needed reports whether enrichment is configured and name, email or phone is missing.
func (m *EnrichmentMerger) Needed(c *storage.Candidate) bool {
	if m == nil || m.enricher == nil {
		return false
	}
	return c.FullName == "" || c.Email == "" || c.Phone == ""
}

// Apply enriches c in place and reports whether anything was merged.
func (m *EnrichmentMerger) Apply(ctx context.Context, text string, c *storage.Candidate) bool {
	if !m.Needed(c) {
		return false
	}
	fields, err := m.fetch(ctx, text, c)
	if err != nil {
		m.log.Warn().Err(err).Str("candidate_id", c.CandidateID).Msg("enrichment skipped")
		return false
	}
	if fields == nil {
		return false
	}
	Merge(c, fields)
	return true
}

func (m *EnrichmentMerger) fetch(ctx context.Context, text string, c *storage.Candidate) (*llm.CandidateFields, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	fields, err := m.enricher.ExtractCandidate(ctx, truncateRunes(text, m.maxChars), draftOf(c))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnrichment, err)
	}
	return fields, nil
}

// Merge overwrites every field the enrichment returned non-empty. Skills become
// the sorted union of both sets.
func Merge(c *storage.Candidate, f *llm.CandidateFields) {
	overwrite(&c.FullName, f.FullName)
	overwrite(&c.Email, f.Email)
	overwrite(&c.Phone, f.Phone)
	overwrite(&c.Location, f.Location)
	overwrite(&c.Education, f.Education)
	overwrite(&c.Experience, f.Experience)
	overwrite(&c.LastJobTitle, f.LastJobTitle)

	if len(f.Skills) == 0 {
		return
	}
	set := make(map[string]struct{}, len(c.Skills)+len(f.Skills))
	for _, s := range c.Skills {
		set[s] = struct{}{}
	}
	for _, s := range f.Skills {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = struct{}{}
		}
	}
	skills := make([]string, 0, len(set))
	for s := range set {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	c.Skills = skills
}

func overwrite(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func draftOf(c *storage.Candidate) llm.CandidateFields {
	return llm.CandidateFields{
		FullName:     c.FullName,
		Email:        c.Email,
		Phone:        c.Phone,
		Location:     c.Location,
		Skills:       llm.StringList(c.Skills),
		Education:    c.Education,
		Experience:   c.Experience,
		LastJobTitle: c.LastJobTitle,
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
