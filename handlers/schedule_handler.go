package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"crosspost/logger"
	"crosspost/models"
	"crosspost/services"
	"crosspost/utils"

	"github.com/gorilla/mux"
)

// PublishPostNow runs the fan-out immediately, regardless of any schedule.
// An armed trigger for the post is cancelled first so it cannot fire a
// second publish later.
func (h *Handler) PublishPostNow(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	postID := mux.Vars(r)["id"]

	post, err := h.db.GetPost(postID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching post")
		return
	}
	if post == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.scheduler.UnschedulePost(postID); err != nil && !errors.Is(err, services.ErrJobNotFound) {
		logger.Warnf("cancelling trigger before manual publish failed post_id=%s err=%v", postID, err)
	}

	outcome := h.publisher.PublishPost(postID)
	utils.RespondWithJSON(w, http.StatusOK, outcome)
}

// ReschedulePost moves an existing post to a new fire time.
func (h *Handler) ReschedulePost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	postID := mux.Vars(r)["id"]

	var req models.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.db.GetPost(postID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching post")
		return
	}
	if post == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	result, err := h.scheduler.ReschedulePost(postID, req.ScheduledFor, req.Timezone)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, services.ErrInvalidSchedule):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Errorf("rescheduling failed post_id=%s err=%v", postID, err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Error rescheduling post")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// UnschedulePost cancels a pending trigger and reverts the post to draft.
// Unscheduling a post with no armed trigger reports not-found rather than
// erroring loudly.
func (h *Handler) UnschedulePost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	postID := mux.Vars(r)["id"]

	post, err := h.db.GetPost(postID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching post")
		return
	}
	if post == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.scheduler.UnschedulePost(postID); err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error unscheduling post")
		return
	}

	if err := h.db.ClearPostSchedule(postID); err != nil {
		logger.Errorf("clearing post schedule failed post_id=%s err=%v", postID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Post unscheduled"})
}

// GetScheduledJobs exposes the scheduler's job table for observability.
func (h *Handler) GetScheduledJobs(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, h.scheduler.ScheduledJobs())
}
