package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"smarthire/internal/archive"
	"smarthire/internal/audit"
	"smarthire/internal/cv"
	"smarthire/internal/logger"
	"smarthire/internal/storage"
)

// Parser is the extraction pipeline as seen by ingestion.
type Parser interface {
	Parse(ctx context.Context, body string, attachments []cv.AttachmentDescriptor, source string) (*cv.ParseResult, error)
}

// IngestResult is what one ingestion produced. AttachmentErrors lists the
// attachments that could not be fetched; the record is stored regardless.
type IngestResult struct {
	Candidate        storage.Candidate `json:"candidate"`
	ArchivedFiles    []string          `json:"archived_files"`
	AttachmentErrors []string          `json:"attachment_errors,omitempty"`
	Enriched         bool              `json:"enriched"`
}

// Ingestion runs parse, persist, archive and audit for one inbound message.
type Ingestion struct {
	parser       Parser
	materializer *cv.Materializer
	store        storage.Store
	archive      archive.Archive
	audit        *audit.Recorder
	log          zerolog.Logger
}

func NewIngestion(parser Parser, materializer *cv.Materializer, store storage.Store, arch archive.Archive, rec *audit.Recorder) *Ingestion {
	return &Ingestion{
		parser:       parser,
		materializer: materializer,
		store:        store,
		archive:      arch,
		audit:        rec,
		log:          logger.Component("ingestion"),
	}
}

// Ingest builds a candidate from body and attachments and stores it. Store
// failures are returned; archive failures are logged per attachment.
func (s *Ingestion) Ingest(ctx context.Context, source, body string, attachments []cv.AttachmentDescriptor) (*IngestResult, error) {
	parsed, err := s.parser.Parse(ctx, body, attachments, source)
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	c := parsed.Candidate
	c.Status = storage.StatusNew
	if err := s.store.Append(ctx, c); err != nil {
		return nil, fmt.Errorf("store candidate: %w", err)
	}

	res := &IngestResult{Candidate: c, Enriched: parsed.Enriched, ArchivedFiles: []string{}}
	for _, fe := range parsed.FetchErrors {
		res.AttachmentErrors = append(res.AttachmentErrors, fe.Error())
	}

	res.ArchivedFiles = s.archiveAll(ctx, c.CandidateID, attachments)

	s.audit.Record(audit.ActionCandidateIngested, map[string]string{
		"candidate_id": c.CandidateID,
		"email":        c.Email,
		"source":       c.Source,
		"attachments":  strings.Join(res.ArchivedFiles, ", "),
	})

	s.log.Info().
		Str("candidate_id", c.CandidateID).
		Str("source", c.Source).
		Int("archived", len(res.ArchivedFiles)).
		Int("attachment_errors", len(res.AttachmentErrors)).
		Msg("candidate ingested")
	return res, nil
}

func (s *Ingestion) archiveAll(ctx context.Context, candidateID string, attachments []cv.AttachmentDescriptor) []string {
	refs := []string{}
	if s.archive == nil {
		return refs
	}
	for _, d := range attachments {
		err := s.materializer.Materialize(ctx, d, func(_ string, data []byte) error {
			ref, err := s.archive.Archive(ctx, archiveName(d), data, d.ContentType)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
			return nil
		})
		if err != nil {
			ev := s.log.Warn()
			if !errors.Is(err, cv.ErrAttachmentFetch) {
				ev = s.log.Error()
			}
			ev.Err(err).Str("candidate_id", candidateID).Str("filename", d.Filename).Msg("attachment not archived")
		}
	}
	return refs
}

func archiveName(d cv.AttachmentDescriptor) string {
	if d.Filename != "" {
		return d.Filename
	}
	if i := strings.LastIndexByte(d.URL, '/'); i >= 0 && i < len(d.URL)-1 {
		name := d.URL[i+1:]
		if q := strings.IndexAny(name, "?#"); q >= 0 {
			name = name[:q]
		}
		if name != "" {
			return name
		}
	}
	return "attachment"
}
