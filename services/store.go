package services

import (
	"time"

	"crosspost/models"
)

// PostStore is the slice of the persistence layer the scheduling core
// depends on. *database.Database satisfies it; tests substitute fakes.
type PostStore interface {
	// GetPost loads a post with media resolved, returning (nil, nil) when
	// no post exists with the given id.
	GetPost(id string) (*models.Post, error)
	// GetUpcomingScheduledPosts returns posts with status scheduled and a
	// fire time at or after now.
	GetUpcomingScheduledPosts() ([]*models.Post, error)
	// UpdatePostSchedule moves a post's fire time and re-marks it
	// scheduled. An empty timezone keeps the post's stored zone.
	UpdatePostSchedule(id string, scheduledFor time.Time, timezone string) error
	SetPostExternalID(id string, platform models.Platform, externalID string) error
	SetPostOutcome(id string, status models.PostStatus, publishedAt time.Time, publishErrors []models.PublishError) error
	SavePublishResult(postID string, result models.PublishResult) error
	GetCredentials(userID string, platform models.Platform) (*models.PlatformCredentials, error)
}
