package services

import (
	"fmt"
	"time"

	"crosspost/logger"
	"crosspost/models"
	"crosspost/publishers"
)

// PublishOutcome aggregates a fan-out across every platform on a post.
// Success means every platform succeeded; a post with at least one success
// still ends up published, so callers must inspect Errors even when the
// stored status is published.
type PublishOutcome struct {
	PostID  string                 `json:"post_id"`
	Success bool                   `json:"success"`
	Results []models.PublishResult `json:"results"`
	Errors  []models.PublishError  `json:"errors"`
}

// PublisherService fans a post out to all of its target platforms and
// persists the aggregated result. One platform's failure never aborts the
// others.
type PublisherService struct {
	store      PostStore
	publishers publishers.Registry
	now        func() time.Time
}

func NewPublisherService(store PostStore, registry publishers.Registry) *PublisherService {
	return &PublisherService{
		store:      store,
		publishers: registry,
		now:        time.Now,
	}
}

// PublishPost runs the full fan-out for one post. It always returns an
// outcome and never panics outward: scheduler fire callbacks rely on that to
// safely discard the trigger regardless of how publishing went.
func (ps *PublisherService) PublishPost(postID string) *PublishOutcome {
	outcome := &PublishOutcome{
		PostID:  postID,
		Results: []models.PublishResult{},
		Errors:  []models.PublishError{},
	}

	post, err := ps.store.GetPost(postID)
	if err != nil {
		logger.Errorf("loading post for publish failed post_id=%s err=%v", postID, err)
		outcome.Errors = append(outcome.Errors, models.PublishError{Error: fmt.Sprintf("loading post: %v", err)})
		// Best effort; the store that failed the read may fail this too.
		if err := ps.store.SetPostOutcome(postID, models.StatusFailed, ps.now(), outcome.Errors); err != nil {
			logger.Errorf("marking post failed after load error post_id=%s err=%v", postID, err)
		}
		return outcome
	}
	if post == nil {
		logger.Warnf("publish requested for missing post post_id=%s", postID)
		outcome.Errors = append(outcome.Errors, models.PublishError{Error: "Post not found"})
		return outcome
	}

	for _, platform := range post.Platforms {
		result := ps.publishTo(post, platform)

		if err := ps.store.SavePublishResult(post.ID, result); err != nil {
			logger.Errorf("saving publish result failed post_id=%s platform=%s err=%v", post.ID, platform, err)
		}

		if !result.Success {
			logger.Warnf("platform publish failed post_id=%s platform=%s err=%s", post.ID, platform, result.Message)
			outcome.Errors = append(outcome.Errors, models.PublishError{Platform: platform, Error: result.Message})
			continue
		}

		outcome.Results = append(outcome.Results, result)
		if result.PostID != "" {
			// Persist each external id before moving on so partial progress
			// survives a crash mid-fan-out.
			if err := ps.store.SetPostExternalID(post.ID, platform, result.PostID); err != nil {
				logger.Errorf("persisting external id failed post_id=%s platform=%s err=%v", post.ID, platform, err)
			}
		}
	}

	status := models.StatusPublished
	if len(outcome.Results) == 0 && len(outcome.Errors) > 0 {
		status = models.StatusFailed
	}

	if err := ps.store.SetPostOutcome(post.ID, status, ps.now(), outcome.Errors); err != nil {
		logger.Errorf("persisting publish outcome failed post_id=%s err=%v", post.ID, err)
	}

	outcome.Success = len(outcome.Errors) == 0
	logger.Infof("publish completed post_id=%s status=%s succeeded=%d failed=%d",
		post.ID, status, len(outcome.Results), len(outcome.Errors))
	return outcome
}

// publishTo formats and dispatches the post to one platform. A panicking
// adapter is converted into that platform's failure result.
func (ps *PublisherService) publishTo(post *models.Post, platform models.Platform) (result models.PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("publisher panicked post_id=%s platform=%s panic=%v", post.ID, platform, r)
			result = models.PublishResult{
				Platform: platform,
				Success:  false,
				Message:  fmt.Sprintf("publisher panic: %v", r),
			}
		}
	}()

	publisher, ok := ps.publishers.Lookup(platform)
	if !ok {
		return models.PublishResult{
			Platform: platform,
			Success:  false,
			Message:  "Platform not supported",
		}
	}

	payload := FormatPostForPlatform(post, platform)
	credentials, _ := ps.store.GetCredentials(post.UserID, platform)
	return publisher.Publish(payload, credentials)
}

// VerifyCredentials reports the stored credential status for one of a
// user's platforms. Used by the health surface.
func (ps *PublisherService) VerifyCredentials(userID string, platform models.Platform) models.CredentialStatus {
	publisher, ok := ps.publishers.Lookup(platform)
	if !ok {
		return models.CredentialStatus{Platform: platform, Valid: false, Error: "Platform not supported"}
	}
	credentials, _ := ps.store.GetCredentials(userID, platform)
	return publisher.VerifyCredentials(credentials)
}
