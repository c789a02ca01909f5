package publishers

import (
	"fmt"

	"crosspost/models"

	"github.com/google/uuid"
)

type TwitterPublisher struct{}

func NewTwitterPublisher() *TwitterPublisher {
	return &TwitterPublisher{}
}

func (t *TwitterPublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	if missingCredentials(cred) {
		return models.PublishResult{
			Platform: models.Twitter,
			Success:  false,
			Message:  "Missing Twitter credentials",
		}
	}

	if payload.String("text") == "" && len(payload.Strings("media")) == 0 {
		return models.PublishResult{
			Platform: models.Twitter,
			Success:  false,
			Message:  "Twitter requires text or media",
		}
	}

	message := "Published successfully on Twitter"
	if payload.Bool("threadMode", false) {
		threadLen := 1 + len(payload.Strings("threadPosts"))
		message = fmt.Sprintf("Published thread of %d posts on Twitter", threadLen)
	}

	return models.PublishResult{
		Platform: models.Twitter,
		Success:  true,
		Message:  message,
		PostID:   fmt.Sprintf("tw_%s", uuid.New().String()[:8]),
	}
}

func (t *TwitterPublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	return verifyStoredCredentials(models.Twitter, cred)
}
