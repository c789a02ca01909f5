package services

import (
	"crosspost/models"
)

// FormatPostForPlatform maps a post onto the payload shape one platform
// expects. It is a pure function with no failure mode: malformed input
// degrades to empty or default fields so formatting can never abort a
// fan-out. Per-platform override fields from post.PlatformSpecific are
// shallow-merged last and take precedence over the computed defaults.
func FormatPostForPlatform(post *models.Post, platform models.Platform) models.Payload {
	if post == nil {
		return models.Payload{}
	}

	media := post.MediaURLs()
	firstMedia := ""
	if len(media) > 0 {
		firstMedia = media[0]
	}

	var payload models.Payload
	switch platform {
	case models.Facebook, models.Instagram:
		payload = models.Payload{
			"message": post.Content,
			"media":   media,
		}
	case models.Twitter:
		payload = models.Payload{
			"text":        post.Content,
			"media":       media,
			"threadMode":  false,
			"threadPosts": []string{},
		}
	case models.LinkedIn:
		payload = models.Payload{
			"text":       post.Content,
			"media":      media,
			"visibility": "PUBLIC",
		}
	case models.YouTube:
		payload = models.Payload{
			"title":       post.Title,
			"description": post.Content,
			"videoUrl":    firstMedia,
			"privacy":     "public",
			"tags":        hashtagsOrEmpty(post.Hashtags),
		}
	case models.TikTok:
		payload = models.Payload{
			"videoUrl":     firstMedia,
			"caption":      post.Content,
			"privacy":      "PUBLIC",
			"allowComment": true,
			"allowDuet":    true,
			"allowStitch":  true,
		}
	default:
		payload = models.Payload{}
	}

	for key, value := range post.PlatformSpecific[platform] {
		payload[key] = value
	}

	return payload
}

func hashtagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
