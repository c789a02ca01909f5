package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"crosspost/models"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const postColumns = `id, user_id, title, content, post_type, media_ids, platforms, hashtags,
		  platform_specific, external_ids, publish_errors, status, scheduled_for, timezone,
		  published_at, created_at, updated_at`

func (d *Database) CreatePost(post *models.Post) error {
	query := `INSERT INTO posts (id, user_id, title, content, post_type, media_ids, platforms, hashtags,
			  platform_specific, external_ids, publish_errors, status, scheduled_for, timezone, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := d.DB.Exec(query, post.ID, post.UserID, post.Title, post.Content, post.PostType,
		pq.Array(post.MediaIDs), pq.Array(platformStrings(post.Platforms)), pq.Array(post.Hashtags),
		jsonOrNull(post.PlatformSpecific), jsonOrNull(post.ExternalIDs), jsonOrNull(post.PublishErrors),
		post.Status, post.ScheduledFor, timezoneOrUTC(post.Timezone), post.CreatedAt, post.UpdatedAt)
	return errors.Wrap(err, "insert post")
}

func (d *Database) UpdatePost(post *models.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, post_type = $3, media_ids = $4, platforms = $5,
			  hashtags = $6, platform_specific = $7, status = $8, scheduled_for = $9, timezone = $10,
			  published_at = $11, updated_at = $12
			  WHERE id = $13`

	_, err := d.DB.Exec(query, post.Title, post.Content, post.PostType, pq.Array(post.MediaIDs),
		pq.Array(platformStrings(post.Platforms)), pq.Array(post.Hashtags), jsonOrNull(post.PlatformSpecific),
		post.Status, post.ScheduledFor, timezoneOrUTC(post.Timezone), post.PublishedAt, post.UpdatedAt, post.ID)
	return errors.Wrap(err, "update post")
}

// GetPost loads a post with its media associations resolved. Returns
// (nil, nil) when no post exists with the given id.
func (d *Database) GetPost(id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := d.scanPost(d.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get post")
	}

	return post, nil
}

func (d *Database) GetUserPosts(userID string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := d.DB.Query(query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user posts")
	}
	defer rows.Close()

	return d.scanPosts(rows)
}

// GetUpcomingScheduledPosts returns every post still marked scheduled with a
// fire time at or after now. Used once at startup to re-arm triggers; posts
// whose fire time passed while the process was down are not returned and
// require manual intervention.
func (d *Database) GetUpcomingScheduledPosts() ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
			  WHERE status = $1 AND scheduled_for >= $2 ORDER BY scheduled_for ASC`

	rows, err := d.DB.Query(query, models.StatusScheduled, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "get upcoming scheduled posts")
	}
	defer rows.Close()

	return d.scanPosts(rows)
}

// UpdatePostSchedule moves a post's fire time and re-marks it scheduled.
// An empty timezone keeps the stored zone.
func (d *Database) UpdatePostSchedule(id string, scheduledFor time.Time, timezone string) error {
	query := `UPDATE posts
			  SET scheduled_for = $1, status = $2, timezone = COALESCE(NULLIF($3, ''), timezone), updated_at = $4
			  WHERE id = $5`
	_, err := d.DB.Exec(query, scheduledFor, models.StatusScheduled, timezone, time.Now(), id)
	return errors.Wrap(err, "update post schedule")
}

// ClearPostSchedule reverts an unscheduled post to draft.
func (d *Database) ClearPostSchedule(id string) error {
	query := `UPDATE posts SET scheduled_for = NULL, status = $1, updated_at = $2 WHERE id = $3`
	_, err := d.DB.Exec(query, models.StatusDraft, time.Now(), id)
	return errors.Wrap(err, "clear post schedule")
}

// SetPostExternalID merges one platform's external identifier into the
// post's external_ids map. Called per platform during a fan-out so partial
// progress survives a crash.
func (d *Database) SetPostExternalID(id string, platform models.Platform, externalID string) error {
	query := `UPDATE posts
			  SET external_ids = COALESCE(external_ids, '{}'::jsonb) || jsonb_build_object($2::text, $3::text),
			      updated_at = $4
			  WHERE id = $1`
	_, err := d.DB.Exec(query, id, string(platform), externalID, time.Now())
	return errors.Wrap(err, "set post external id")
}

// SetPostOutcome persists the terminal state of a publish attempt.
func (d *Database) SetPostOutcome(id string, status models.PostStatus, publishedAt time.Time, publishErrors []models.PublishError) error {
	query := `UPDATE posts SET status = $1, published_at = $2, publish_errors = $3, updated_at = $4 WHERE id = $5`
	_, err := d.DB.Exec(query, status, publishedAt, jsonOrNull(publishErrors), time.Now(), id)
	return errors.Wrap(err, "set post outcome")
}

func (d *Database) SavePublishResult(postID string, result models.PublishResult) error {
	query := `INSERT INTO publish_results (post_id, platform, success, message, external_post_id)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := d.DB.Exec(query, postID, result.Platform, result.Success,
		result.Message, result.PostID)
	return errors.Wrap(err, "save publish result")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (d *Database) scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var (
		mediaIDs, platforms, hashtags               []string
		platformSpecific, externalIDs, publishDiags []byte
	)

	err := row.Scan(&post.ID, &post.UserID, &post.Title, &post.Content, &post.PostType,
		pq.Array(&mediaIDs), pq.Array(&platforms), pq.Array(&hashtags),
		&platformSpecific, &externalIDs, &publishDiags,
		&post.Status, &post.ScheduledFor, &post.Timezone,
		&post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.Hashtags = hashtags
	post.Platforms = make([]models.Platform, len(platforms))
	for i, p := range platforms {
		post.Platforms[i] = models.Platform(p)
	}

	if len(platformSpecific) > 0 {
		_ = json.Unmarshal(platformSpecific, &post.PlatformSpecific)
	}
	if len(externalIDs) > 0 {
		_ = json.Unmarshal(externalIDs, &post.ExternalIDs)
	}
	if len(publishDiags) > 0 {
		_ = json.Unmarshal(publishDiags, &post.PublishErrors)
	}

	if mediaIDs != nil {
		post.MediaIDs = mediaIDs
		post.Media, _ = d.GetMediaByIDs(mediaIDs)
	}

	return post, nil
}

func (d *Database) scanPosts(rows *sql.Rows) ([]*models.Post, error) {
	posts := []*models.Post{}
	for rows.Next() {
		post, err := d.scanPost(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan post row")
		}
		posts = append(posts, post)
	}
	// A mid-iteration failure must not pass for a short result set.
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate post rows")
	}
	return posts, nil
}

func platformStrings(platforms []models.Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = string(p)
	}
	return out
}

func timezoneOrUTC(tz string) string {
	if tz == "" {
		return "UTC"
	}
	return tz
}

// jsonOrNull marshals v for a JSONB column, storing NULL for empty values.
func jsonOrNull(v any) any {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" || string(data) == "{}" || string(data) == "[]" {
		return nil
	}
	return data
}
