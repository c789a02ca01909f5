package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/models"
)

func newTestPublisherService(store *fakeStore, registry map[models.Platform]*fakePublisher) *PublisherService {
	ps := NewPublisherService(store, registryWith(registry))
	ps.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return ps
}

func TestPublishPostAllPlatformsSucceed(t *testing.T) {
	store := newFakeStore()
	fb := &fakePublisher{result: models.PublishResult{Platform: models.Facebook, Success: true, PostID: "fb_123"}}
	tw := &fakePublisher{result: models.PublishResult{Platform: models.Twitter, Success: true, PostID: "tw_456"}}
	ps := newTestPublisherService(store, map[models.Platform]*fakePublisher{
		models.Facebook: fb,
		models.Twitter:  tw,
	})

	store.posts["post-1"] = &models.Post{
		ID:        "post-1",
		UserID:    "user-1",
		Content:   "launch day",
		Platforms: []models.Platform{models.Facebook, models.Twitter},
	}

	outcome := ps.PublishPost("post-1")

	assert.True(t, outcome.Success)
	assert.Len(t, outcome.Results, 2)
	assert.Empty(t, outcome.Errors)

	assert.Equal(t, "fb_123", store.externalIDs[models.Facebook])
	assert.Equal(t, "tw_456", store.externalIDs[models.Twitter])

	rec := store.lastOutcome()
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusPublished, rec.status)
	assert.Empty(t, rec.errors)
}

func TestPublishPostPartialFailureStillPublishes(t *testing.T) {
	store := newFakeStore()
	fb := &fakePublisher{result: models.PublishResult{Platform: models.Facebook, Success: true, PostID: "fb_123"}}
	tw := &fakePublisher{result: models.PublishResult{Platform: models.Twitter, Success: false, Message: "rate limited"}}
	ps := newTestPublisherService(store, map[models.Platform]*fakePublisher{
		models.Facebook: fb,
		models.Twitter:  tw,
	})

	store.posts["post-1"] = &models.Post{
		ID:        "post-1",
		UserID:    "user-1",
		Content:   "launch day",
		Platforms: []models.Platform{models.Facebook, models.Twitter},
	}

	outcome := ps.PublishPost("post-1")

	assert.False(t, outcome.Success)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, "fb_123", outcome.Results[0].PostID)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, models.Twitter, outcome.Errors[0].Platform)
	assert.Equal(t, "rate limited", outcome.Errors[0].Error)

	// One success is enough to land on published.
	rec := store.lastOutcome()
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusPublished, rec.status)
	require.Len(t, rec.errors, 1)

	assert.Equal(t, "fb_123", store.externalIDs[models.Facebook])
	assert.NotContains(t, store.externalIDs, models.Twitter)

	// Every dispatch is recorded, failures included.
	assert.Len(t, store.savedResults, 2)
}

func TestPublishPostAllPlatformsFail(t *testing.T) {
	store := newFakeStore()
	fb := &fakePublisher{result: models.PublishResult{Platform: models.Facebook, Success: false, Message: "token expired"}}
	tw := &fakePublisher{result: models.PublishResult{Platform: models.Twitter, Success: false, Message: "rate limited"}}
	ps := newTestPublisherService(store, map[models.Platform]*fakePublisher{
		models.Facebook: fb,
		models.Twitter:  tw,
	})

	store.posts["post-1"] = &models.Post{
		ID:        "post-1",
		Platforms: []models.Platform{models.Facebook, models.Twitter},
	}

	outcome := ps.PublishPost("post-1")

	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Results)
	assert.Len(t, outcome.Errors, 2)

	rec := store.lastOutcome()
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusFailed, rec.status)
}

func TestPublishPostMissingPost(t *testing.T) {
	store := newFakeStore()
	ps := newTestPublisherService(store, nil)

	outcome := ps.PublishPost("ghost")

	assert.False(t, outcome.Success)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Post not found", outcome.Errors[0].Error)

	// A missing post must not be mutated into failed.
	assert.Empty(t, store.outcomes)
	assert.Empty(t, store.savedResults)
}

func TestPublishPostStoreLoadError(t *testing.T) {
	store := newFakeStore()
	store.getPostErr = assert.AnError
	ps := newTestPublisherService(store, nil)

	outcome := ps.PublishPost("post-1")

	assert.False(t, outcome.Success)
	require.Len(t, outcome.Errors, 1)

	rec := store.lastOutcome()
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusFailed, rec.status)
}

func TestPublishPostPanickingAdapterBecomesFailure(t *testing.T) {
	store := newFakeStore()
	fb := &fakePublisher{result: models.PublishResult{Platform: models.Facebook, Success: true, PostID: "fb_123"}}
	tw := &fakePublisher{panicWith: "nil dereference"}
	ps := newTestPublisherService(store, map[models.Platform]*fakePublisher{
		models.Facebook: fb,
		models.Twitter:  tw,
	})

	store.posts["post-1"] = &models.Post{
		ID:        "post-1",
		Platforms: []models.Platform{models.Twitter, models.Facebook},
	}

	var outcome *PublishOutcome
	assert.NotPanics(t, func() { outcome = ps.PublishPost("post-1") })

	// The panicking platform fails; the next one still runs.
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, models.Twitter, outcome.Errors[0].Platform)
	assert.Contains(t, outcome.Errors[0].Error, "publisher panic")
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, "fb_123", outcome.Results[0].PostID)

	rec := store.lastOutcome()
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusPublished, rec.status)
}

func TestPublishPostUnsupportedPlatform(t *testing.T) {
	store := newFakeStore()
	ps := newTestPublisherService(store, nil)

	store.posts["post-1"] = &models.Post{
		ID:        "post-1",
		Platforms: []models.Platform{models.Platform("myspace")},
	}

	outcome := ps.PublishPost("post-1")

	assert.False(t, outcome.Success)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Platform not supported", outcome.Errors[0].Error)

	rec := store.lastOutcome()
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusFailed, rec.status)
}

func TestPublishPostFormatsPerPlatform(t *testing.T) {
	store := newFakeStore()
	tw := &fakePublisher{result: models.PublishResult{Platform: models.Twitter, Success: true, PostID: "tw_1"}}
	ps := newTestPublisherService(store, map[models.Platform]*fakePublisher{models.Twitter: tw})

	store.posts["post-1"] = &models.Post{
		ID:        "post-1",
		Content:   "formatted content",
		Platforms: []models.Platform{models.Twitter},
	}

	ps.PublishPost("post-1")

	require.Len(t, tw.payloads, 1)
	assert.Equal(t, "formatted content", tw.payloads[0].String("text"))
}

func TestVerifyCredentials(t *testing.T) {
	store := newFakeStore()
	tw := &fakePublisher{result: models.PublishResult{Platform: models.Twitter}}
	ps := newTestPublisherService(store, map[models.Platform]*fakePublisher{models.Twitter: tw})

	status := ps.VerifyCredentials("user-1", models.Twitter)
	assert.False(t, status.Valid)

	store.creds[models.Twitter] = &models.PlatformCredentials{
		UserID:      "user-1",
		Platform:    models.Twitter,
		AccessToken: "token",
	}
	status = ps.VerifyCredentials("user-1", models.Twitter)
	assert.True(t, status.Valid)

	status = ps.VerifyCredentials("user-1", models.Platform("myspace"))
	assert.False(t, status.Valid)
	assert.Equal(t, "Platform not supported", status.Error)
}
