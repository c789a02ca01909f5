package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/models"
)

func formatterFixture() *models.Post {
	return &models.Post{
		ID:       "post-1",
		Title:    "Launch video",
		Content:  "We shipped!",
		Hashtags: []string{"launch", "golang"},
		Media: []*models.Media{
			{ID: "m1", URL: "https://cdn.example.com/a.jpg"},
			{ID: "m2", URL: "https://cdn.example.com/b.mp4"},
		},
		Platforms: []models.Platform{models.Facebook, models.Twitter, models.YouTube},
	}
}

func TestFormatPostForPlatformShapes(t *testing.T) {
	post := formatterFixture()
	media := []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.mp4"}

	tests := []struct {
		platform models.Platform
		want     models.Payload
	}{
		{
			platform: models.Facebook,
			want:     models.Payload{"message": "We shipped!", "media": media},
		},
		{
			platform: models.Instagram,
			want:     models.Payload{"message": "We shipped!", "media": media},
		},
		{
			platform: models.Twitter,
			want: models.Payload{
				"text":        "We shipped!",
				"media":       media,
				"threadMode":  false,
				"threadPosts": []string{},
			},
		},
		{
			platform: models.LinkedIn,
			want: models.Payload{
				"text":       "We shipped!",
				"media":      media,
				"visibility": "PUBLIC",
			},
		},
		{
			platform: models.YouTube,
			want: models.Payload{
				"title":       "Launch video",
				"description": "We shipped!",
				"videoUrl":    "https://cdn.example.com/a.jpg",
				"privacy":     "public",
				"tags":        []string{"launch", "golang"},
			},
		},
		{
			platform: models.TikTok,
			want: models.Payload{
				"videoUrl":     "https://cdn.example.com/a.jpg",
				"caption":      "We shipped!",
				"privacy":      "PUBLIC",
				"allowComment": true,
				"allowDuet":    true,
				"allowStitch":  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			got := FormatPostForPlatform(post, tt.platform)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPostForPlatformOverrides(t *testing.T) {
	post := formatterFixture()
	post.PlatformSpecific = map[models.Platform]map[string]any{
		models.Twitter: {
			"threadMode":  true,
			"threadPosts": []string{"part two", "part three"},
			"customField": 42,
		},
		models.YouTube: {
			"privacy": "unlisted",
		},
	}

	tw := FormatPostForPlatform(post, models.Twitter)
	assert.Equal(t, true, tw["threadMode"])
	assert.Equal(t, []string{"part two", "part three"}, tw["threadPosts"])
	assert.Equal(t, 42, tw["customField"])
	// Untouched defaults survive the merge.
	assert.Equal(t, "We shipped!", tw.String("text"))

	yt := FormatPostForPlatform(post, models.YouTube)
	assert.Equal(t, "unlisted", yt.String("privacy"))

	// Overrides for one platform never leak into another.
	fb := FormatPostForPlatform(post, models.Facebook)
	assert.NotContains(t, fb, "customField")
}

func TestFormatPostForPlatformDegradedInput(t *testing.T) {
	assert.Equal(t, models.Payload{}, FormatPostForPlatform(nil, models.Twitter))

	empty := &models.Post{ID: "bare"}
	yt := FormatPostForPlatform(empty, models.YouTube)
	assert.Equal(t, "", yt.String("videoUrl"))
	assert.Equal(t, []string{}, yt["tags"])

	tt := FormatPostForPlatform(empty, models.TikTok)
	assert.Equal(t, "", tt.String("videoUrl"))

	unknown := FormatPostForPlatform(formatterFixture(), models.Platform("myspace"))
	assert.Equal(t, models.Payload{}, unknown)
}

func TestFormatPostForPlatformIsPure(t *testing.T) {
	post := formatterFixture()
	post.PlatformSpecific = map[models.Platform]map[string]any{
		models.Twitter: {"threadMode": true},
	}

	first := FormatPostForPlatform(post, models.Twitter)
	second := FormatPostForPlatform(post, models.Twitter)
	require.Equal(t, first, second)

	// Mutating a returned payload must not affect later calls.
	first["text"] = "mutated"
	third := FormatPostForPlatform(post, models.Twitter)
	assert.Equal(t, "We shipped!", third.String("text"))
	assert.Equal(t, "We shipped!", post.Content)
}
