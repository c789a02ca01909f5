package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"crosspost/logger"
	"crosspost/models"
	"crosspost/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type createPostRequest struct {
	Title            string                                    `json:"title"`
	Content          string                                    `json:"content" validate:"required"`
	PostType         models.PostType                           `json:"post_type"`
	MediaIDs         []string                                  `json:"media_ids"`
	Platforms        []models.Platform                         `json:"platforms" validate:"required,min=1"`
	Hashtags         []string                                  `json:"hashtags"`
	PlatformSpecific map[models.Platform]map[string]any        `json:"platform_specific"`
	ScheduledFor     *time.Time                                `json:"scheduled_for"`
	Timezone         string                                    `json:"timezone"`
}

// CreatePost creates a post and routes it by schedule: a future
// scheduled_for arms a trigger, anything else publishes immediately.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid timezone")
			return
		}
	}

	post := models.Post{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            req.Title,
		Content:          req.Content,
		PostType:         req.PostType,
		MediaIDs:         req.MediaIDs,
		Platforms:        req.Platforms,
		Hashtags:         req.Hashtags,
		PlatformSpecific: req.PlatformSpecific,
		ScheduledFor:     req.ScheduledFor,
		Timezone:         req.Timezone,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if post.PostType == "" {
		post.PostType = models.PostTypeNormal
	}

	if len(post.MediaIDs) > 0 {
		mediaList, err := h.db.GetMediaByIDs(post.MediaIDs)
		if err != nil || len(mediaList) != len(post.MediaIDs) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid media IDs")
			return
		}
		for _, media := range mediaList {
			if media.UserID != userID {
				utils.RespondWithError(w, http.StatusForbidden, "Access denied to media")
				return
			}
		}
		post.Media = mediaList
	}

	if post.ScheduledFor != nil && post.ScheduledFor.After(time.Now()) {
		post.Status = models.StatusScheduled
		if err := h.db.CreatePost(&post); err != nil {
			logger.Errorf("creating post failed user_id=%s err=%v", userID, err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Error creating post")
			return
		}

		result, err := h.scheduler.SchedulePost(&post)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
			"post":     post,
			"schedule": result,
		})
		return
	}

	post.Status = models.StatusDraft
	if err := h.db.CreatePost(&post); err != nil {
		logger.Errorf("creating post failed user_id=%s err=%v", userID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating post")
		return
	}

	outcome := h.publisher.PublishPost(post.ID)
	utils.RespondWithJSON(w, http.StatusCreated, outcome)
}

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	posts, err := h.db.GetUserPosts(userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	vars := mux.Vars(r)
	postID := vars["id"]

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

	utils.RespondWithJSON(w, http.StatusOK, post)
}
