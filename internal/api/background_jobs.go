package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IngestJob is a queued ingestion request.
type IngestJob struct {
	ID        string
	Request   IngestRequest
	Timestamp time.Time
}

const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// JobStatus is the externally visible state of an async ingestion.
type JobStatus struct {
	ID               string   `json:"id"`
	Status           string   `json:"status"`
	CandidateID      string   `json:"candidate_id,omitempty"`
	AttachmentErrors []string `json:"attachment_errors,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// defaultJobHistory bounds how many job statuses are remembered.
const defaultJobHistory = 1000

var (
	errQueueFull    = errors.New("ingestion queue full")
	errShuttingDown = errors.New("server shutting down")
)

func (s JobStatus) finished() bool {
	return s.Status == JobCompleted || s.Status == JobFailed
}

// jobTracker remembers up to limit jobs. Once over the limit the oldest
// finished jobs are forgotten; queued and processing jobs are always kept.
type jobTracker struct {
	mu    sync.Mutex
	limit int
	jobs  map[string]*JobStatus
	order []string // insertion order
}

func newJobTracker(limit int) *jobTracker {
	if limit <= 0 {
		limit = defaultJobHistory
	}
	return &jobTracker{limit: limit, jobs: make(map[string]*JobStatus)}
}

func (t *jobTracker) set(s JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.jobs[s.ID]; !ok {
		t.order = append(t.order, s.ID)
	}
	t.jobs[s.ID] = &s
	t.evict()
}

func (t *jobTracker) evict() {
	for len(t.jobs) > t.limit {
		i := slices.IndexFunc(t.order, func(id string) bool { return t.jobs[id].finished() })
		if i < 0 {
			return
		}
		delete(t.jobs, t.order[i])
		t.order = slices.Delete(t.order, i, i+1)
	}
}

func (t *jobTracker) get(id string) (JobStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return *s, true
}

// StartBackgroundWorkers starts the single ingestion worker. Attachments are
// processed sequentially inside each job, so one worker keeps ordering simple.
func (a *API) StartBackgroundWorkers(ctx context.Context) {
	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		a.ingestWorker(ctx)
	}()
	a.log.Info().Int("queue_size", cap(a.ingestQueue)).Msg("background ingestion worker started")
}

// Shutdown stops accepting jobs and waits for queued ones to finish. Handlers
// still running afterwards get errShuttingDown instead of a closed channel.
func (a *API) Shutdown() {
	a.queueMu.Lock()
	if !a.queueClosed {
		a.queueClosed = true
		close(a.ingestQueue)
	}
	a.queueMu.Unlock()
	a.workers.Wait()
}

func (a *API) ingestWorker(ctx context.Context) {
	for job := range a.ingestQueue {
		a.jobs.set(JobStatus{ID: job.ID, Status: JobProcessing})

		res, err := a.ingestion.Ingest(ctx, job.Request.Source, job.Request.Body, job.Request.Attachments)
		if err != nil {
			a.log.Error().Err(err).Str("job_id", job.ID).Msg("async ingestion failed")
			a.jobs.set(JobStatus{ID: job.ID, Status: JobFailed, Error: err.Error()})
			continue
		}

		a.jobs.set(JobStatus{
			ID:               job.ID,
			Status:           JobCompleted,
			CandidateID:      res.Candidate.CandidateID,
			AttachmentErrors: res.AttachmentErrors,
		})
		a.log.Info().
			Str("job_id", job.ID).
			Str("candidate_id", res.Candidate.CandidateID).
			Dur("took", time.Since(job.Timestamp)).
			Msg("async ingestion completed")
	}
}

// queueIngestJob is a non-blocking send. It fails with errQueueFull when the
// queue is full and errShuttingDown once Shutdown has been called.
func (a *API) queueIngestJob(req IngestRequest) (string, error) {
	job := IngestJob{ID: uuid.NewString(), Request: req, Timestamp: time.Now()}
	a.jobs.set(JobStatus{ID: job.ID, Status: JobQueued})

	a.queueMu.Lock()
	defer a.queueMu.Unlock()
	if a.queueClosed {
		a.jobs.set(JobStatus{ID: job.ID, Status: JobFailed, Error: errShuttingDown.Error()})
		return job.ID, errShuttingDown
	}

	select {
	case a.ingestQueue <- job:
		a.log.Debug().Str("job_id", job.ID).Msg("queued ingestion job")
		return job.ID, nil
	default:
		a.log.Warn().Str("job_id", job.ID).Msg("ingestion queue full, dropping job")
		a.jobs.set(JobStatus{ID: job.ID, Status: JobFailed, Error: "queue full, job dropped"})
		return job.ID, errQueueFull
	}
}

// IngestAsyncHandler queues an ingestion and returns immediately
// @Summary Queue a message for ingestion
// @Description Accepts the same payload as /ingest and processes it in the background
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body IngestRequest true "Message and attachments"
// @Success 202 {object} JobStatus
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /ingest/async [post]
func (a *API) IngestAsyncHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeIngestRequest(w, r)
	if !ok {
		return
	}
	id, err := a.queueIngestJob(*req)
	if err != nil {
		a.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	a.writeJSON(w, http.StatusAccepted, JobStatus{ID: id, Status: JobQueued})
}

// IngestJobHandler reports the state of an async ingestion
// @Summary Async ingestion status
// @Tags ingest
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobStatus
// @Failure 404 {object} errorResponse
// @Router /ingest/jobs/{id} [get]
func (a *API) IngestJobHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := a.jobs.get(r.PathValue("id"))
	if !ok {
		a.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	a.writeJSON(w, http.StatusOK, s)
}
