package handlers

import (
	"net/http"

	"crosspost/utils"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DB.Ping(); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"scheduled_jobs": len(h.scheduler.ScheduledJobs()),
	})
}
