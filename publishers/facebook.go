package publishers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crosspost/config"
	"crosspost/models"
	"crosspost/utils"
)

type FacebookPublisher struct {
	api *apiClient
}

type FacebookPageResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type FacebookPostResponse struct {
	ID string `json:"id"`
}

type FacebookPhotoResponse struct {
	ID string `json:"id"`
}

type FacebookErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// NewFacebookPublisher creates a FacebookPublisher with an injectable
// http.Client. If nil is passed, a default client with a sensible timeout
// is used.
func NewFacebookPublisher(client *http.Client) *FacebookPublisher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FacebookPublisher{api: newAPIClient("facebook", client)}
}

func (f *FacebookPublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	if missingCredentials(cred) {
		return models.PublishResult{
			Platform: models.Facebook,
			Success:  false,
			Message:  "Missing Facebook credentials",
		}
	}

	if utils.NewTokenValidator().IsTokenExpired(cred) {
		return models.PublishResult{
			Platform: models.Facebook,
			Success:  false,
			Message:  "Facebook token has expired. Please reconnect your account",
		}
	}

	// Posting happens as a page, so exchange the user token first.
	pageAccessToken, pageID, err := f.getPageAccessToken(cred.AccessToken)
	if err != nil {
		return models.PublishResult{
			Platform: models.Facebook,
			Success:  false,
			Message:  fmt.Sprintf("Error getting page access token: %v", err),
		}
	}

	message := payload.String("message")
	media := payload.Strings("media")

	var postID string
	if len(media) > 0 {
		postID, err = f.publishWithMedia(message, media, pageAccessToken, pageID)
	} else {
		postID, err = f.publishTextOnly(message, pageAccessToken, pageID)
	}

	if err != nil {
		return models.PublishResult{
			Platform: models.Facebook,
			Success:  false,
			Message:  fmt.Sprintf("Error publishing to Facebook: %v", err),
		}
	}

	return models.PublishResult{
		Platform: models.Facebook,
		Success:  true,
		Message:  "Published successfully on Facebook",
		PostID:   postID,
	}
}

func (f *FacebookPublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	status := verifyStoredCredentials(models.Facebook, cred)
	if !status.Valid {
		return status
	}

	// A page listing doubles as a liveness probe for the token.
	_, pageID, err := f.getPageAccessToken(cred.AccessToken)
	if err != nil {
		return models.CredentialStatus{
			Platform: models.Facebook,
			Valid:    false,
			Error:    err.Error(),
		}
	}
	status.User = pageID
	return status
}

func (f *FacebookPublisher) getPageAccessToken(userAccessToken string) (string, string, error) {
	cfg := config.Load()
	url := fmt.Sprintf("https://graph.facebook.com/%s/me/accounts", cfg.FacebookVersion)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+userAccessToken)
	resp, err := f.api.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var fbError FacebookErrorResponse
		json.Unmarshal(body, &fbError)

		if utils.NewTokenValidator().IsFacebookTokenExpiredError(body) {
			return "", "", fmt.Errorf("access token has expired (error code: %d)", fbError.Error.Code)
		}

		return "", "", fmt.Errorf("Facebook API error: %s (code: %d)", fbError.Error.Message, fbError.Error.Code)
	}

	var pageResp FacebookPageResponse
	if err := json.Unmarshal(body, &pageResp); err != nil {
		return "", "", err
	}

	if len(pageResp.Data) == 0 {
		return "", "", fmt.Errorf("no Facebook pages found for this account")
	}

	// Use the first page
	page := pageResp.Data[0]
	return page.AccessToken, page.ID, nil
}

func (f *FacebookPublisher) publishTextOnly(message, pageAccessToken, pageID string) (string, error) {
	cfg := config.Load()
	url := fmt.Sprintf("https://graph.facebook.com/%s/%s/feed", cfg.FacebookVersion, pageID)

	payload := map[string]string{
		"message": message,
	}

	return f.postJSON(url, pageAccessToken, payload)
}

// publishWithMedia uploads every attachment by URL as an unpublished photo,
// then creates a single feed post referencing them all.
func (f *FacebookPublisher) publishWithMedia(message string, mediaURLs []string, pageAccessToken, pageID string) (string, error) {
	if len(mediaURLs) == 1 {
		return f.publishSinglePhoto(message, mediaURLs[0], pageAccessToken, pageID)
	}

	photoIDs := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		photoID, err := f.uploadPhotoByURL(mediaURL, pageAccessToken, pageID, false, "")
		if err != nil {
			return "", err
		}
		photoIDs = append(photoIDs, photoID)
	}

	cfg := config.Load()
	url := fmt.Sprintf("https://graph.facebook.com/%s/%s/feed", cfg.FacebookVersion, pageID)

	attachedMedia := make([]map[string]string, 0, len(photoIDs))
	for _, photoID := range photoIDs {
		attachedMedia = append(attachedMedia, map[string]string{
			"media_fbid": photoID,
		})
	}

	payload := map[string]interface{}{
		"message":        message,
		"attached_media": attachedMedia,
	}

	return f.postJSON(url, pageAccessToken, payload)
}

func (f *FacebookPublisher) publishSinglePhoto(message, mediaURL, pageAccessToken, pageID string) (string, error) {
	return f.uploadPhotoByURL(mediaURL, pageAccessToken, pageID, true, message)
}

// uploadPhotoByURL posts a photo to the page via the Graph API "url" field.
// If published is false the photo is uploaded unpublished for later
// attachment to a feed post.
func (f *FacebookPublisher) uploadPhotoByURL(mediaURL, pageAccessToken, pageID string, published bool, message string) (string, error) {
	cfg := config.Load()
	url := fmt.Sprintf("https://graph.facebook.com/%s/%s/photos", cfg.FacebookVersion, pageID)

	payload := map[string]interface{}{
		"url":       mediaURL,
		"published": published,
	}
	if message != "" {
		payload["message"] = message
	}

	return f.postJSON(url, pageAccessToken, payload)
}

func (f *FacebookPublisher) postJSON(url, accessToken string, payload interface{}) (string, error) {
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := f.api.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var fbError FacebookErrorResponse
		json.Unmarshal(body, &fbError)
		return "", fmt.Errorf("Facebook API error: %s", fbError.Error.Message)
	}

	var postResp FacebookPostResponse
	if err := json.Unmarshal(body, &postResp); err != nil {
		return "", err
	}

	return postResp.ID, nil
}
