package publishers

import (
	"fmt"

	"crosspost/models"

	"github.com/google/uuid"
)

type TikTokPublisher struct{}

func NewTikTokPublisher() *TikTokPublisher {
	return &TikTokPublisher{}
}

func (t *TikTokPublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	if missingCredentials(cred) {
		return models.PublishResult{
			Platform: models.TikTok,
			Success:  false,
			Message:  "Missing TikTok credentials",
		}
	}

	if payload.String("videoUrl") == "" {
		return models.PublishResult{
			Platform: models.TikTok,
			Success:  false,
			Message:  "TikTok requires a video",
		}
	}

	return models.PublishResult{
		Platform: models.TikTok,
		Success:  true,
		Message:  "Published successfully on TikTok",
		PostID:   fmt.Sprintf("tt_%s", uuid.New().String()[:8]),
	}
}

func (t *TikTokPublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	return verifyStoredCredentials(models.TikTok, cred)
}
