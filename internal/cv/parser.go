package cv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smarthire/internal/logger"
	"smarthire/internal/storage"
)

// ExtractionResult is the text pulled from one attachment.
type ExtractionResult struct {
	Filename    string
	ContentType string
	Text        string
	Confidence  float64
}

// ParseResult is a candidate draft plus what happened to each attachment.
// FetchErrors holds one *AttachmentFetchError per attachment that could not be obtained.
type ParseResult struct {
	Candidate   storage.Candidate
	Attachments []ExtractionResult
	FetchErrors []error
	Enriched    bool
}

type ParserOptions struct {
	// Skills replaces DefaultSkills when non-empty.
	Skills []string
}

// Parser turns a message body and its attachments into a candidate record.
// Attachments are processed one after another.
type Parser struct {
	materializer *Materializer
	extractor    *TextExtractor
	entities     EntityAnalyzer
	merger       *EnrichmentMerger
	skills       []string
	log          zerolog.Logger
}

func NewParser(m *Materializer, x *TextExtractor, entities EntityAnalyzer, merger *EnrichmentMerger, opts ParserOptions) *Parser {
	skills := DefaultSkills
	if len(opts.Skills) > 0 {
		skills = append([]string(nil), opts.Skills...)
	}
	return &Parser{
		materializer: m,
		extractor:    x,
		entities:     entities,
		merger:       merger,
		skills:       skills,
		log:          logger.Component("parser"),
	}
}

// Parse builds a NEW candidate. Unreadable or unfetchable attachments are
// skipped; only context cancellation aborts the call.
func (p *Parser) Parse(ctx context.Context, body string, attachments []AttachmentDescriptor, source string) (*ParseResult, error) {
	res := &ParseResult{}

	for _, d := range attachments {
		r, err := p.extractAttachment(ctx, d)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var fetchErr *AttachmentFetchError
		switch {
		case errors.As(err, &fetchErr):
			p.log.Warn().Err(err).Str("filename", d.Filename).Msg("attachment could not be fetched")
			res.FetchErrors = append(res.FetchErrors, err)
		case err != nil:
			p.log.Warn().Err(err).Str("filename", d.Filename).Msg("attachment skipped")
		default:
			res.Attachments = append(res.Attachments, *r)
		}
	}

	cleanBody := Sanitize(body)
	combined := combineText(cleanBody, res.Attachments)

	c := storage.Candidate{
		CandidateID: storage.NewCandidateID(),
		Email:       ExtractEmail(combined),
		Phone:       ExtractPhone(combined),
		Skills:      FindSkills(combined, p.skills),
		Education:   FindEducation(combined),
		Experience:  FindExperience(combined),
		Source:      source,
		ReceivedAt:  time.Now().UTC(),
		Status:      storage.StatusNew,
		Notes:       attachmentNotes(res.Attachments),
	}
	if c.Source == "" {
		c.Source = "unknown"
	}

	p.applyEntities(ctx, combined, &c)

	contributions := make([]float64, len(res.Attachments))
	for i, a := range res.Attachments {
		contributions[i] = a.Confidence
	}
	c.Confidence = storage.ClampConfidence(Score(cleanBody, contributions))

	res.Enriched = p.merger.Apply(ctx, combined, &c)
	res.Candidate = c

	p.log.Info().
		Str("candidate_id", c.CandidateID).
		Int("attachments", len(res.Attachments)).
		Int("fetch_errors", len(res.FetchErrors)).
		Int("skills", len(c.Skills)).
		Float64("confidence", c.Confidence).
		Bool("enriched", res.Enriched).
		Msg("parsed candidate")
	return res, nil
}

func (p *Parser) extractAttachment(ctx context.Context, d AttachmentDescriptor) (*ExtractionResult, error) {
	var r *ExtractionResult
	err := p.materializer.Materialize(ctx, d, func(path string, _ []byte) error {
		raw, err := p.extractor.Extract(ctx, path, d.ContentType)
		if err != nil {
			return err
		}
		name := d.Filename
		if name == "" {
			name = filepath.Base(path)
		}
		r = &ExtractionResult{
			Filename:    name,
			ContentType: d.ContentType,
			Text:        Sanitize(raw),
			Confidence:  AttachmentConfidence(raw),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// applyEntities fills name, location and last job title from the first entity
// of each kind, after spans are cut to one sentence and greetings and skills
// are discarded. A failing analyzer leaves them to the fallbacks.
func (p *Parser) applyEntities(ctx context.Context, text string, c *storage.Candidate) {
	var entities []Entity
	if p.entities != nil && text != "" {
		var err error
		entities, err = p.entities.Analyze(ctx, text)
		if err != nil {
			p.log.Warn().Err(err).Msg("entity analysis failed")
		}
	}
	entities = cleanEntities(entities, p.skills)
	c.FullName = firstEntity(entities, EntityPerson)
	if c.FullName == "" {
		c.FullName = introducedName(text)
	}
	c.Location = firstEntity(entities, EntityLocation)
	c.LastJobTitle = firstEntity(entities, EntityOrg)
}

func combineText(body string, results []ExtractionResult) string {
	segments := make([]string, 0, len(results)+1)
	if body != "" {
		segments = append(segments, body)
	}
	for _, r := range results {
		if r.Text != "" {
			segments = append(segments, r.Text)
		}
	}
	return strings.TrimSpace(strings.Join(segments, "\n"))
}

func attachmentNotes(results []ExtractionResult) string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Filename
	}
	return fmt.Sprintf("attachments: %v", names)
}
