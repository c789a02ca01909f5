package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"crosspost/models"
	"crosspost/utils"

	"github.com/google/uuid"
)

type saveCredentialsRequest struct {
	Platform       models.Platform `json:"platform" validate:"required"`
	AccessToken    string          `json:"access_token" validate:"required"`
	RefreshToken   string          `json:"refresh_token"`
	Secret         string          `json:"secret"`
	TokenType      string          `json:"token_type"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	PlatformUserID string          `json:"platform_user_id"`
	PlatformPageID string          `json:"platform_page_id"`
}

func (h *Handler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req saveCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokenType := req.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	cred := models.PlatformCredentials{
		ID:             uuid.New().String(),
		UserID:         userID,
		Platform:       req.Platform,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
		Secret:         req.Secret,
		TokenType:      tokenType,
		ExpiresAt:      req.ExpiresAt,
		PlatformUserID: req.PlatformUserID,
		PlatformPageID: req.PlatformPageID,
		CreatedAt:      time.Now(),
	}

	if err := h.db.SaveCredentials(&cred); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving credentials")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Credentials saved successfully"})
}

func (h *Handler) GetConnectedPlatforms(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	platforms, err := h.db.GetConnectedPlatforms(userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching connected platforms")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"platforms": platforms})
}

// VerifyCredentials reports whether the stored credentials for one platform
// still look usable.
func (h *Handler) VerifyCredentials(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	platform := models.Platform(r.URL.Query().Get("platform"))
	if platform == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "platform query parameter is required")
		return
	}

	status := h.publisher.VerifyCredentials(userID, platform)
	utils.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) DisconnectPlatform(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	platform := models.Platform(r.URL.Query().Get("platform"))
	if platform == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "platform query parameter is required")
		return
	}

	if err := h.db.DeleteCredentials(userID, platform); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error disconnecting platform")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Platform disconnected"})
}
