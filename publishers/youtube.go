package publishers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crosspost/logger"
	"crosspost/models"
	"crosspost/utils"
)

// YouTubePublisher implements PlatformPublisher for the YouTube Data API v3.
type YouTubePublisher struct {
	api *apiClient
}

// youtubeErrorResponse represents a YouTube Data API error.
type youtubeErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// youtubeVideoSnippet holds the snippet part of a YouTube video resource.
type youtubeVideoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId"`
}

// youtubeVideoStatus holds the status part of a YouTube video resource.
type youtubeVideoStatus struct {
	PrivacyStatus           string `json:"privacyStatus"`
	SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
}

// youtubeVideoResource is the metadata sent when inserting a video.
type youtubeVideoResource struct {
	Snippet *youtubeVideoSnippet `json:"snippet"`
	Status  *youtubeVideoStatus  `json:"status"`
}

// youtubeInsertResponse is the response from a successful video insert.
type youtubeInsertResponse struct {
	ID      string `json:"id"`
	Snippet struct {
		Title string `json:"title"`
	} `json:"snippet"`
}

// NewYouTubePublisher creates a YouTubePublisher with an injectable
// http.Client. If nil is passed a default client with a generous timeout is
// used; video transfers are slow.
func NewYouTubePublisher(client *http.Client) *YouTubePublisher {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &YouTubePublisher{api: newAPIClient("youtube", client)}
}

// Publish implements PlatformPublisher. YouTube requires a video attachment
// for every post; the payload's videoUrl is fetched and re-uploaded via the
// resumable upload protocol.
func (y *YouTubePublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	if missingCredentials(cred) {
		return models.PublishResult{
			Platform: models.YouTube,
			Success:  false,
			Message:  "Missing YouTube credentials",
		}
	}

	if utils.NewTokenValidator().IsTokenExpired(cred) {
		return models.PublishResult{
			Platform: models.YouTube,
			Success:  false,
			Message:  "YouTube token has expired. Please reconnect your account",
		}
	}

	videoURL := payload.String("videoUrl")
	if videoURL == "" {
		return models.PublishResult{
			Platform: models.YouTube,
			Success:  false,
			Message:  "YouTube requires a video attachment",
		}
	}

	videoID, err := y.uploadVideo(payload, videoURL, cred.AccessToken)
	if err != nil {
		logger.Errorf("youtube publish failed err=%v", err)
		return models.PublishResult{
			Platform: models.YouTube,
			Success:  false,
			Message:  fmt.Sprintf("Error publishing to YouTube: %v", err),
		}
	}

	logger.Infof("youtube publish succeeded video_id=%s", videoID)
	return models.PublishResult{
		Platform: models.YouTube,
		Success:  true,
		Message:  "Published successfully on YouTube",
		PostID:   videoID,
	}
}

func (y *YouTubePublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	return verifyStoredCredentials(models.YouTube, cred)
}

// uploadVideo inserts a video using the resumable upload protocol:
//  1. POST metadata to initiate a resumable upload -> get upload URI
//  2. PUT the video bytes to the upload URI -> get the completed resource
func (y *YouTubePublisher) uploadVideo(payload models.Payload, videoURL, accessToken string) (string, error) {
	title := payload.String("title")
	if len(title) > 100 {
		title = title[:100]
	}
	if title == "" {
		title = "Untitled"
	}

	category := payload.String("category")
	if category == "" {
		category = "22" // "People & Blogs", a safe default
	}
	privacy := payload.String("privacy")
	if privacy == "" {
		privacy = "public"
	}

	videoResource := youtubeVideoResource{
		Snippet: &youtubeVideoSnippet{
			Title:       title,
			Description: payload.String("description"),
			Tags:        payload.Strings("tags"),
			CategoryID:  category,
		},
		Status: &youtubeVideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	uploadURI, err := y.initiateResumableUpload(videoResource, accessToken)
	if err != nil {
		return "", fmt.Errorf("failed to initiate YouTube upload: %w", err)
	}
	logger.Debugf("youtube resumable upload initiated")

	videoID, err := y.uploadVideoFromURL(uploadURI, videoURL)
	if err != nil {
		return "", fmt.Errorf("failed to upload video to YouTube: %w", err)
	}

	return videoID, nil
}

// initiateResumableUpload sends the video metadata and returns the resumable upload URI.
func (y *YouTubePublisher) initiateResumableUpload(resource youtubeVideoResource, accessToken string) (string, error) {
	metadataJSON, err := json.Marshal(resource)
	if err != nil {
		return "", fmt.Errorf("failed to marshal video metadata: %w", err)
	}

	endpoint := "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=resumable&part=snippet,status"

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(metadataJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", "video/*")

	resp, err := y.api.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube initiate upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		errMsg := y.parseYouTubeError(body)
		return "", fmt.Errorf("YouTube API error (status %d): %s", resp.StatusCode, errMsg)
	}

	uploadURI := resp.Header.Get("Location")
	if uploadURI == "" {
		return "", fmt.Errorf("youtube did not return a resumable upload URI")
	}

	return uploadURI, nil
}

// uploadVideoFromURL streams the video at srcURL to the resumable upload URI.
func (y *YouTubePublisher) uploadVideoFromURL(uploadURI, srcURL string) (string, error) {
	srcReq, err := http.NewRequest("GET", srcURL, nil)
	if err != nil {
		return "", err
	}
	srcResp, err := y.api.Do(srcReq)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video source: %w", err)
	}
	defer srcResp.Body.Close()

	if srcResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("video source returned status %d", srcResp.StatusCode)
	}

	contentType := srcResp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	req, err := http.NewRequest("PUT", uploadURI, srcResp.Body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if srcResp.ContentLength > 0 {
		req.ContentLength = srcResp.ContentLength
	}

	resp, err := y.api.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube video upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		errMsg := y.parseYouTubeError(body)
		return "", fmt.Errorf("YouTube upload failed (status %d): %s", resp.StatusCode, errMsg)
	}

	var insertResp youtubeInsertResponse
	if err := json.Unmarshal(body, &insertResp); err != nil {
		return "", fmt.Errorf("failed to parse YouTube upload response: %w", err)
	}

	if insertResp.ID == "" {
		return "", fmt.Errorf("youtube returned empty video ID")
	}

	return insertResp.ID, nil
}

// parseYouTubeError extracts a human-readable error from a YouTube API error body.
func (y *YouTubePublisher) parseYouTubeError(body []byte) string {
	var errResp youtubeErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error.Message != "" {
			return errResp.Error.Message
		}
		if len(errResp.Error.Errors) > 0 {
			return errResp.Error.Errors[0].Message
		}
	}
	return string(body)
}
