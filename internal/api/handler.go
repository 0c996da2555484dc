package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"smarthire/internal/audit"
	"smarthire/internal/logger"
	"smarthire/internal/service"
	"smarthire/internal/storage"
)

type API struct {
	ingestion  *service.Ingestion
	candidates *service.Candidates
	audit      *audit.Recorder

	ingestQueue chan IngestJob // background queue for async ingestion
	queueMu     sync.Mutex
	queueClosed bool
	jobs        *jobTracker
	workers     sync.WaitGroup
	log         zerolog.Logger
}

// NewAPI wires the handlers and starts the background ingestion worker. Call
// Shutdown to drain the queue.
func NewAPI(ctx context.Context, ingestion *service.Ingestion, candidates *service.Candidates, rec *audit.Recorder, queueSize int) *API {
	if queueSize <= 0 {
		queueSize = 50
	}
	a := &API{
		ingestion:   ingestion,
		candidates:  candidates,
		audit:       rec,
		ingestQueue: make(chan IngestJob, queueSize),
		jobs:        newJobTracker(defaultJobHistory),
		log:         logger.Component("api"),
	}
	a.StartBackgroundWorkers(ctx)
	return a
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps store errors onto HTTP statuses.
func (a *API) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidStatus):
		a.writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error().Err(err).Msg("store operation failed")
		a.writeError(w, http.StatusInternalServerError, "storage error")
	}
}
