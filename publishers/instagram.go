package publishers

import (
	"fmt"

	"crosspost/models"

	"github.com/google/uuid"
)

type InstagramPublisher struct{}

func NewInstagramPublisher() *InstagramPublisher {
	return &InstagramPublisher{}
}

func (i *InstagramPublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	if missingCredentials(cred) {
		return models.PublishResult{
			Platform: models.Instagram,
			Success:  false,
			Message:  "Missing Instagram credentials",
		}
	}

	if len(payload.Strings("media")) == 0 {
		return models.PublishResult{
			Platform: models.Instagram,
			Success:  false,
			Message:  "Instagram requires at least one image",
		}
	}

	return models.PublishResult{
		Platform: models.Instagram,
		Success:  true,
		Message:  "Published successfully on Instagram",
		PostID:   fmt.Sprintf("ig_%s", uuid.New().String()[:8]),
	}
}

func (i *InstagramPublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	return verifyStoredCredentials(models.Instagram, cred)
}
