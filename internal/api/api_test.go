package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarthire/internal/archive"
	"smarthire/internal/audit"
	"smarthire/internal/cv"
	"smarthire/internal/service"
	"smarthire/internal/storage"
)

const janeDoe = "Hello, I am Jane Doe. Contact me at jane@example.com or +1 222 333 4444. I have 5 years of experience in Python and AWS."

type testEnv struct {
	api    *API
	server *httptest.Server
	store  *storage.FileStore
	audit  *audit.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(filepath.Join(dir, "candidates.json"))
	require.NoError(t, err)

	rec := audit.NewRecorder(100, nil)
	materializer := cv.NewMaterializer(nil)
	parser := cv.NewParser(materializer, cv.NewTextExtractor(cv.DocconvConverter{}, cv.NewPopplerOCR(), 0),
		nil, cv.NewEnrichmentMerger(nil, 0), cv.ParserOptions{})

	ingestion := service.NewIngestion(parser, materializer, store, archive.NewLocal(filepath.Join(dir, "uploads")), rec)
	a := NewAPI(context.Background(), ingestion, service.NewCandidates(store, rec), rec, 4)
	srv := httptest.NewServer(NewRouter(a))
	t.Cleanup(func() {
		srv.Close()
		a.Shutdown()
	})
	return &testEnv{api: a, server: srv, store: store, audit: rec}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) ingest(t *testing.T, body string) storage.Candidate {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/ingest", IngestRequest{Source: "email", Body: body})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[service.IngestResult](t, resp).Candidate
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decode[map[string]string](t, resp)["status"])
}

func TestIngest_ExtractsCandidate(t *testing.T) {
	env := newTestEnv(t)

	attachment := cv.AttachmentDescriptor{
		Filename:    "cv.txt",
		ContentType: "text/plain",
		Content:     base64.StdEncoding.EncodeToString([]byte("Docker\nKubernetes")),
	}
	resp := env.do(t, http.MethodPost, "/api/ingest", IngestRequest{
		Body:        janeDoe,
		Attachments: []cv.AttachmentDescriptor{attachment, {Filename: "broken.pdf", Content: "!!!"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := decode[service.IngestResult](t, resp)
	assert.Equal(t, "Jane Doe", res.Candidate.FullName)
	assert.Equal(t, "jane@example.com", res.Candidate.Email)
	assert.Equal(t, "manual", res.Candidate.Source)
	assert.Equal(t, storage.StatusNew, res.Candidate.Status)
	assert.Equal(t, []string{"aws", "docker", "kubernetes", "python"}, res.Candidate.Skills)
	assert.Len(t, res.ArchivedFiles, 1)
	assert.Len(t, res.AttachmentErrors, 1)
	assert.Equal(t, audit.ActionCandidateIngested, env.audit.Recent(1)[0].Action)
}

func TestIngest_Validation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body interface{}
	}{
		{"invalid json", "{"},
		{"empty message", IngestRequest{Source: "email"}},
		{"attachment without payload", IngestRequest{Body: "hi", Attachments: []cv.AttachmentDescriptor{{Filename: "a.pdf"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/ingest", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp := env.do(t, http.MethodGet, "/api/ingest", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(janeDoe))
	require.NoError(t, mw.WriteField("source", "career-site"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/api/ingest/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := decode[service.IngestResult](t, resp)
	assert.Equal(t, "career-site", res.Candidate.Source)
	assert.Equal(t, "jane@example.com", res.Candidate.Email)
	assert.Equal(t, "attachments: [resume.txt]", res.Candidate.Notes)
}

func TestUpload_RejectsUnknownExtension(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "payload.exe")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("MZ"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/api/ingest/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIngestAsync(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/ingest/async", IngestRequest{Body: janeDoe})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	job := decode[JobStatus](t, resp)
	require.NotEmpty(t, job.ID)

	var final JobStatus
	require.Eventually(t, func() bool {
		r := env.do(t, http.MethodGet, "/api/ingest/jobs/"+job.ID, nil)
		final = decode[JobStatus](t, r)
		return final.Status == JobCompleted
	}, 5*time.Second, 20*time.Millisecond)

	c, err := env.store.Get(context.Background(), final.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.FullName)

	resp = env.do(t, http.MethodGet, "/api/ingest/jobs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCandidateLifecycle(t *testing.T) {
	env := newTestEnv(t)
	first := env.ingest(t, janeDoe)
	second := env.ingest(t, "My name is Omar Farouk, omar@example.com, Docker and SQL")

	resp := env.do(t, http.MethodGet, "/api/candidates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]storage.Candidate](t, resp)
	require.Len(t, list, 2)

	resp = env.do(t, http.MethodGet, "/api/candidates/"+first.CandidateID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first.Email, decode[storage.Candidate](t, resp).Email)

	resp = env.do(t, http.MethodPatch, "/api/candidates/"+second.CandidateID+"/status", map[string]string{"status": "REJECTED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, storage.StatusRejected, decode[storage.Candidate](t, resp).Status)

	resp = env.do(t, http.MethodGet, "/api/candidates?status=rejected", nil)
	rejected := decode[[]storage.Candidate](t, resp)
	require.Len(t, rejected, 1)
	assert.Equal(t, second.CandidateID, rejected[0].CandidateID)

	resp = env.do(t, http.MethodGet, "/api/candidates/board", nil)
	board := decode[storage.Board](t, resp)
	assert.Len(t, board.New, 1)
	assert.Len(t, board.Rejected, 1)

	resp = env.do(t, http.MethodGet, "/api/candidates/skills?limit=1", nil)
	skills := decode[struct {
		Total  int                  `json:"total"`
		Skills []service.SkillCount `json:"skills"`
	}](t, resp)
	assert.Equal(t, 1, skills.Total)

	resp = env.do(t, http.MethodDelete, "/api/candidates?status=rejected", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[map[string]int](t, resp)["deleted"])

	resp = env.do(t, http.MethodDelete, "/api/candidates/"+first.CandidateID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/candidates/"+first.CandidateID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/audit?limit=10", nil)
	events := decode[[]audit.Event](t, resp)
	actions := make([]string, len(events))
	for i, e := range events {
		actions[i] = e.Action
	}
	assert.Equal(t, []string{
		audit.ActionCandidateDeleted,
		audit.ActionCandidateBulkDelete,
		audit.ActionCandidateStatusUpdated,
		audit.ActionCandidateIngested,
		audit.ActionCandidateIngested,
	}, actions)
}

func TestCandidateErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.ingest(t, janeDoe)

	tests := []struct {
		name, method, path string
		body               interface{}
		want               int
	}{
		{"limit too large", http.MethodGet, "/api/candidates?limit=500", nil, http.StatusBadRequest},
		{"limit not a number", http.MethodGet, "/api/candidates?limit=abc", nil, http.StatusBadRequest},
		{"unknown status filter", http.MethodGet, "/api/candidates?status=hired", nil, http.StatusBadRequest},
		{"unknown candidate", http.MethodGet, "/api/candidates/nope", nil, http.StatusNotFound},
		{"bad status value", http.MethodPatch, "/api/candidates/" + c.CandidateID + "/status", map[string]string{"status": "hired"}, http.StatusBadRequest},
		{"status update for unknown", http.MethodPatch, "/api/candidates/nope/status", map[string]string{"status": "new"}, http.StatusNotFound},
		{"bulk delete without status", http.MethodDelete, "/api/candidates", nil, http.StatusBadRequest},
		{"delete unknown", http.MethodDelete, "/api/candidates/nope", nil, http.StatusNotFound},
		{"audit limit", http.MethodGet, "/api/audit?limit=0", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
		})
	}
}

func TestIngestAsync_AfterShutdown(t *testing.T) {
	env := newTestEnv(t)
	env.api.Shutdown()

	resp := env.do(t, http.MethodPost, "/api/ingest/async", IngestRequest{Body: janeDoe})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, errShuttingDown.Error(), decode[errorResponse](t, resp).Error)
}

func TestQueueIngestJob_ConcurrentShutdown(t *testing.T) {
	env := newTestEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := env.api.queueIngestJob(IngestRequest{Source: "manual", Body: "I am Jane Doe"})
				if err != nil {
					assert.True(t, errors.Is(err, errQueueFull) || errors.Is(err, errShuttingDown), "unexpected error %v", err)
				}
			}
		}()
	}
	env.api.Shutdown()
	wg.Wait()

	_, err := env.api.queueIngestJob(IngestRequest{Body: "late"})
	assert.ErrorIs(t, err, errShuttingDown)
}

func TestJobTracker_ForgetsOldestFinishedJobs(t *testing.T) {
	tr := newJobTracker(2)
	tr.set(JobStatus{ID: "a", Status: JobQueued})
	tr.set(JobStatus{ID: "b", Status: JobCompleted})
	tr.set(JobStatus{ID: "c", Status: JobFailed})

	_, ok := tr.get("a")
	assert.True(t, ok, "queued jobs are never evicted")
	_, ok = tr.get("b")
	assert.False(t, ok)
	_, ok = tr.get("c")
	assert.True(t, ok)

	tr.set(JobStatus{ID: "a", Status: JobCompleted})
	tr.set(JobStatus{ID: "d", Status: JobQueued})
	_, ok = tr.get("a")
	assert.False(t, ok)
	assert.Len(t, tr.jobs, 2)
	assert.Len(t, tr.order, 2)
}
