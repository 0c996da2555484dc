package api

import (
	"net/http"

	"smarthire/internal/audit"
)

// AuditHandler returns recent audit events, most recent first. With a durable
// sink configured the events are read from it.
// @Summary Recent audit events
// @Tags audit
// @Produce json
// @Param limit query int false "Limit results (1-1000)" default(50)
// @Success 200 {array} audit.Event
// @Failure 400 {object} errorResponse
// @Router /audit [get]
func (a *API) AuditHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 50, audit.DefaultCapacity)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, a.audit.History(r.Context(), limit))
}
