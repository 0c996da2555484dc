package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"smarthire/internal/cv"
)

// IngestRequest is an inbound message: free text plus attachments.
type IngestRequest struct {
	Source      string                    `json:"source"`
	Body        string                    `json:"body"`
	Attachments []cv.AttachmentDescriptor `json:"attachments"`
}

func (r *IngestRequest) normalize() string {
	r.Source = strings.TrimSpace(r.Source)
	if r.Source == "" {
		r.Source = "manual"
	}
	if strings.TrimSpace(r.Body) == "" && len(r.Attachments) == 0 {
		return "body or attachments required"
	}
	for _, d := range r.Attachments {
		if d.URL == "" && d.Content == "" {
			return "each attachment needs a url or content"
		}
	}
	return ""
}

func (a *API) decodeIngestRequest(w http.ResponseWriter, r *http.Request) (*IngestRequest, bool) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, false
	}
	var req IngestRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes*2)).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, false
	}
	if msg := req.normalize(); msg != "" {
		a.writeError(w, http.StatusBadRequest, msg)
		return nil, false
	}
	return &req, true
}

// IngestHandler parses and stores a candidate synchronously
// @Summary Ingest a message
// @Description Extract a candidate record from a message body and its attachments (URL or base64 content)
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body IngestRequest true "Message and attachments"
// @Success 201 {object} service.IngestResult
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /ingest [post]
func (a *API) IngestHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeIngestRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res, err := a.ingestion.Ingest(r.Context(), req.Source, req.Body, req.Attachments)
	if err != nil {
		a.log.Error().Err(err).Str("source", req.Source).Msg("ingestion failed")
		a.writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	a.log.Info().
		Str("candidate_id", res.Candidate.CandidateID).
		Int64("processing_time_ms", time.Since(start).Milliseconds()).
		Msg("ingest request served")
	a.writeJSON(w, http.StatusCreated, res)
}

const maxUploadBytes = 10 << 20

var uploadExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".txt": true, ".md": true,
	".png": true, ".jpg": true, ".jpeg": true, ".tiff": true, ".tif": true,
}

// UploadHandler ingests a single uploaded resume file
// @Summary Upload a resume
// @Description Upload a resume file (PDF/DOCX/TXT/image) with an optional message body
// @Tags ingest
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file"
// @Param body formData string false "Accompanying message"
// @Param source formData string false "Origin tag" default(upload)
// @Success 201 {object} service.IngestResult
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /ingest/upload [post]
func (a *API) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.writeError(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !uploadExtensions[ext] {
		a.writeError(w, http.StatusBadRequest, "invalid file type (supported: PDF, DOCX, TXT, images)")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	source := strings.TrimSpace(r.FormValue("source"))
	if source == "" {
		source = "upload"
	}
	attachment := cv.AttachmentDescriptor{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     base64.StdEncoding.EncodeToString(data),
	}

	res, err := a.ingestion.Ingest(r.Context(), source, r.FormValue("body"), []cv.AttachmentDescriptor{attachment})
	if err != nil {
		a.log.Error().Err(err).Str("filename", header.Filename).Msg("upload ingestion failed")
		a.writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}
	a.writeJSON(w, http.StatusCreated, res)
}
