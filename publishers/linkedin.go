package publishers

import (
	"fmt"

	"crosspost/models"

	"github.com/google/uuid"
)

type LinkedInPublisher struct{}

func NewLinkedInPublisher() *LinkedInPublisher {
	return &LinkedInPublisher{}
}

func (l *LinkedInPublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	if missingCredentials(cred) {
		return models.PublishResult{
			Platform: models.LinkedIn,
			Success:  false,
			Message:  "Missing LinkedIn credentials",
		}
	}

	visibility := payload.String("visibility")
	if visibility == "" {
		visibility = "PUBLIC"
	}

	return models.PublishResult{
		Platform: models.LinkedIn,
		Success:  true,
		Message:  fmt.Sprintf("Published successfully on LinkedIn (%s)", visibility),
		PostID:   fmt.Sprintf("li_%s", uuid.New().String()[:8]),
	}
}

func (l *LinkedInPublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	return verifyStoredCredentials(models.LinkedIn, cred)
}
