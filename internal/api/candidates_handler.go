package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"smarthire/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// parseLimit reads ?limit=, enforcing 1..upper.
func parseLimit(r *http.Request, def, upper int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > upper {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", upper)
	}
	return n, nil
}

// ListCandidatesHandler lists candidates, newest first
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Limit results (1-200)" default(20)
// @Success 200 {array} storage.Candidate
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /candidates [get]
func (a *API) ListCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultListLimit, maxListLimit)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var status *storage.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := storage.ParseStatus(raw)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = &st
	}

	list, err := a.candidates.List(r.Context(), status, limit)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []storage.Candidate{}
	}
	a.writeJSON(w, http.StatusOK, list)
}

// BoardHandler groups candidates by status
// @Summary Recruiting board
// @Tags candidates
// @Produce json
// @Success 200 {object} storage.Board
// @Failure 500 {object} errorResponse
// @Router /candidates/board [get]
func (a *API) BoardHandler(w http.ResponseWriter, r *http.Request) {
	board, err := a.candidates.Board(r.Context())
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, board)
}

// PopularSkillsHandler returns the most common skills across candidates
// @Summary Get popular skills
// @Tags candidates
// @Produce json
// @Param limit query int false "Limit results" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /candidates/skills [get]
func (a *API) PopularSkillsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultListLimit, maxListLimit)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skills, err := a.candidates.PopularSkills(r.Context(), limit)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":  len(skills),
		"skills": skills,
	})
}

// GetCandidateHandler returns one candidate
// @Summary Get candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} storage.Candidate
// @Failure 404 {object} errorResponse
// @Router /candidates/{id} [get]
func (a *API) GetCandidateHandler(w http.ResponseWriter, r *http.Request) {
	c, err := a.candidates.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, c)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatusHandler moves a candidate to another status
// @Summary Update candidate status
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body statusUpdateRequest true "New status"
// @Success 200 {object} storage.Candidate
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /candidates/{id}/status [patch]
func (a *API) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	status, err := storage.ParseStatus(req.Status)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := a.candidates.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, c)
}

// DeleteCandidateHandler removes one candidate
// @Summary Delete candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} storage.Candidate
// @Failure 404 {object} errorResponse
// @Router /candidates/{id} [delete]
func (a *API) DeleteCandidateHandler(w http.ResponseWriter, r *http.Request) {
	c, err := a.candidates.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, c)
}

// DeleteByStatusHandler removes every candidate with the given status
// @Summary Bulk delete by status
// @Tags candidates
// @Produce json
// @Param status query string true "Status to delete"
// @Success 200 {object} map[string]int
// @Failure 400 {object} errorResponse
// @Router /candidates [delete]
func (a *API) DeleteByStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := storage.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "status query parameter required: "+err.Error())
		return
	}
	n, err := a.candidates.DeleteByStatus(r.Context(), status)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
