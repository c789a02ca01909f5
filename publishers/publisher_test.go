package publishers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/models"
)

func validCredentials(platform models.Platform) *models.PlatformCredentials {
	return &models.PlatformCredentials{
		UserID:         "user-1",
		Platform:       platform,
		AccessToken:    "token",
		PlatformUserID: "pu-1",
	}
}

func TestRegistryCoversAllPlatforms(t *testing.T) {
	registry := NewRegistry()

	for _, platform := range []models.Platform{
		models.Twitter, models.Facebook, models.LinkedIn,
		models.Instagram, models.YouTube, models.TikTok,
	} {
		_, ok := registry.Lookup(platform)
		assert.True(t, ok, "missing publisher for %s", platform)
	}

	_, ok := registry.Lookup(models.Platform("myspace"))
	assert.False(t, ok)
}

func TestTwitterPublish(t *testing.T) {
	pub := NewTwitterPublisher()

	res := pub.Publish(models.Payload{"text": "hello"}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Missing Twitter credentials", res.Message)

	res = pub.Publish(models.Payload{"text": ""}, validCredentials(models.Twitter))
	assert.False(t, res.Success)
	assert.Equal(t, "Twitter requires text or media", res.Message)

	res = pub.Publish(models.Payload{"text": "hello"}, validCredentials(models.Twitter))
	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.PostID, "tw_"))

	// Media alone is enough.
	res = pub.Publish(models.Payload{"media": []string{"https://cdn/a.jpg"}}, validCredentials(models.Twitter))
	assert.True(t, res.Success)

	res = pub.Publish(models.Payload{
		"text":        "part one",
		"threadMode":  true,
		"threadPosts": []string{"part two", "part three"},
	}, validCredentials(models.Twitter))
	require.True(t, res.Success)
	assert.Equal(t, "Published thread of 3 posts on Twitter", res.Message)
}

func TestTikTokPublishRequiresVideo(t *testing.T) {
	pub := NewTikTokPublisher()

	res := pub.Publish(models.Payload{"caption": "no video"}, validCredentials(models.TikTok))
	assert.False(t, res.Success)
	assert.Equal(t, "TikTok requires a video", res.Message)

	res = pub.Publish(models.Payload{"videoUrl": "https://cdn/v.mp4"}, validCredentials(models.TikTok))
	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.PostID, "tt_"))
}

func TestInstagramPublishRequiresMedia(t *testing.T) {
	pub := NewInstagramPublisher()

	res := pub.Publish(models.Payload{"message": "text only"}, validCredentials(models.Instagram))
	assert.False(t, res.Success)

	res = pub.Publish(models.Payload{
		"message": "caption",
		"media":   []string{"https://cdn/a.jpg"},
	}, validCredentials(models.Instagram))
	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.PostID, "ig_"))
}

func TestLinkedInPublish(t *testing.T) {
	pub := NewLinkedInPublisher()

	res := pub.Publish(models.Payload{"text": "career update"}, validCredentials(models.LinkedIn))
	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.PostID, "li_"))

	res = pub.Publish(models.Payload{"text": "career update"}, nil)
	assert.False(t, res.Success)
}

func TestVerifyStoredCredentials(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	restore := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = restore }()

	status := verifyStoredCredentials(models.Twitter, nil)
	assert.False(t, status.Valid)
	assert.Equal(t, "No credentials stored", status.Error)

	cred := validCredentials(models.Twitter)
	status = verifyStoredCredentials(models.Twitter, cred)
	assert.True(t, status.Valid)
	assert.Equal(t, "pu-1", status.User)

	expired := fixed.Add(-time.Hour)
	cred.ExpiresAt = &expired
	status = verifyStoredCredentials(models.Twitter, cred)
	assert.False(t, status.Valid)
	assert.Equal(t, "Token expired", status.Error)

	future := fixed.Add(time.Hour)
	cred.ExpiresAt = &future
	status = verifyStoredCredentials(models.Twitter, cred)
	assert.True(t, status.Valid)
}
