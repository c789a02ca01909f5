package publishers

import (
	"crosspost/models"
)

// PlatformPublisher publishes an already-formatted payload to one social
// platform. Implementations are stateless per call; credentials arrive with
// every invocation.
type PlatformPublisher interface {
	Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult
	VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus
}

// Registry maps platform names to their publisher implementations. Adding a
// platform means adding one implementation and one entry here.
type Registry map[models.Platform]PlatformPublisher

// NewRegistry builds the default registry with every supported platform.
func NewRegistry() Registry {
	return Registry{
		models.Twitter:   NewTwitterPublisher(),
		models.Facebook:  NewFacebookPublisher(nil),
		models.LinkedIn:  NewLinkedInPublisher(),
		models.Instagram: NewInstagramPublisher(),
		models.YouTube:   NewYouTubePublisher(nil),
		models.TikTok:    NewTikTokPublisher(),
	}
}

// Lookup returns the publisher registered for a platform.
func (r Registry) Lookup(platform models.Platform) (PlatformPublisher, bool) {
	p, ok := r[platform]
	return p, ok
}

func missingCredentials(cred *models.PlatformCredentials) bool {
	return cred == nil || cred.AccessToken == ""
}

func verifyStoredCredentials(platform models.Platform, cred *models.PlatformCredentials) models.CredentialStatus {
	if missingCredentials(cred) {
		return models.CredentialStatus{
			Platform: platform,
			Valid:    false,
			Error:    "No credentials stored",
		}
	}
	if cred.ExpiresAt != nil && cred.ExpiresAt.Before(timeNow()) {
		return models.CredentialStatus{
			Platform: platform,
			Valid:    false,
			User:     cred.PlatformUserID,
			Error:    "Token expired",
		}
	}
	return models.CredentialStatus{
		Platform: platform,
		Valid:    true,
		User:     cred.PlatformUserID,
	}
}
