package models

import "time"

type Platform string

const (
	Twitter   Platform = "twitter"
	Facebook  Platform = "facebook"
	LinkedIn  Platform = "linkedin"
	Instagram Platform = "instagram"
	YouTube   Platform = "youtube"
	TikTok    Platform = "tiktok"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusFailed    PostStatus = "failed"
)

type PostType string

const (
	PostTypeNormal PostType = "normal"
	PostTypeShort  PostType = "short"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Media struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Type      MediaType `json:"type"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is the central entity. The posts table is the single source of truth
// for scheduling state: the scheduler only re-arms posts that are still
// marked scheduled after a restart.
type Post struct {
	ID               string                      `json:"id"`
	UserID           string                      `json:"user_id"`
	Title            string                      `json:"title,omitempty"`
	Content          string                      `json:"content"`
	PostType         PostType                    `json:"post_type"`
	MediaIDs         []string                    `json:"media_ids,omitempty"`
	Media            []*Media                    `json:"media,omitempty"`
	Platforms        []Platform                  `json:"platforms"`
	Hashtags         []string                    `json:"hashtags,omitempty"`
	PlatformSpecific map[Platform]map[string]any `json:"platform_specific,omitempty"`
	ExternalIDs      map[Platform]string         `json:"external_ids,omitempty"`
	PublishErrors    []PublishError              `json:"publish_errors,omitempty"`
	Status           PostStatus                  `json:"status"`
	ScheduledFor     *time.Time                  `json:"scheduled_for,omitempty"`
	Timezone         string                      `json:"timezone,omitempty"`
	PublishedAt      *time.Time                  `json:"published_at,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// MediaURLs returns the post's attachment URLs in upload order.
func (p *Post) MediaURLs() []string {
	urls := make([]string, 0, len(p.Media))
	for _, m := range p.Media {
		if m != nil && m.URL != "" {
			urls = append(urls, m.URL)
		}
	}
	return urls
}

// PublishError records a single platform's failure during a fan-out.
type PublishError struct {
	Platform Platform `json:"platform"`
	Error    string   `json:"error"`
}

type PlatformCredentials struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Platform       Platform   `json:"platform"`
	AccessToken    string     `json:"-"`
	RefreshToken   string     `json:"-"`
	Secret         string     `json:"-"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	TokenType      string     `json:"token_type"`
	PlatformUserID string     `json:"platform_user_id,omitempty"`
	PlatformPageID string     `json:"platform_page_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Payload is a platform-specific publish payload produced by the formatter.
// Platform-specific override fields are shallow-merged on top of the
// computed defaults, so values may be of any JSON-compatible type.
type Payload map[string]any

// String returns the payload value for key as a string, or "" when the key
// is absent or holds a different type.
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns the payload value for key as a bool, or def when the key is
// absent or holds a different type.
func (p Payload) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Strings returns the payload value for key as a string slice. Both []string
// and []any (as produced by JSON decoding of override fields) are accepted.
func (p Payload) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

type PublishResult struct {
	Platform Platform `json:"platform"`
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	PostID   string   `json:"post_id,omitempty"`
}

// CredentialStatus is the result of verifying a platform's stored
// credentials, surfaced by the health endpoints.
type CredentialStatus struct {
	Platform Platform `json:"platform"`
	Valid    bool     `json:"valid"`
	User     string   `json:"user,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RescheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
	Timezone     string    `json:"timezone,omitempty"`
}

type UploadResponse struct {
	Media *Media `json:"media"`
}
