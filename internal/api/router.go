package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Ingestion
	mux.HandleFunc("/api/ingest", a.IngestHandler)
	mux.HandleFunc("/api/ingest/upload", a.UploadHandler)
	mux.HandleFunc("/api/ingest/async", a.IngestAsyncHandler)
	mux.HandleFunc("GET /api/ingest/jobs/{id}", a.IngestJobHandler)

	// Candidates
	mux.HandleFunc("GET /api/candidates", a.ListCandidatesHandler)
	mux.HandleFunc("DELETE /api/candidates", a.DeleteByStatusHandler)
	mux.HandleFunc("GET /api/candidates/board", a.BoardHandler)
	mux.HandleFunc("GET /api/candidates/skills", a.PopularSkillsHandler)
	mux.HandleFunc("GET /api/candidates/{id}", a.GetCandidateHandler)
	mux.HandleFunc("DELETE /api/candidates/{id}", a.DeleteCandidateHandler)
	mux.HandleFunc("PATCH /api/candidates/{id}/status", a.UpdateStatusHandler)

	// Audit trail
	mux.HandleFunc("GET /api/audit", a.AuditHandler)

	return mux
}
