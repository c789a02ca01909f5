package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadAccessors(t *testing.T) {
	p := Payload{
		"text":       "hello",
		"count":      3,
		"threadMode": true,
		"media":      []string{"a", "b"},
		"decoded":    []any{"x", 7, "y"},
	}

	assert.Equal(t, "hello", p.String("text"))
	assert.Equal(t, "", p.String("count"))
	assert.Equal(t, "", p.String("missing"))

	assert.True(t, p.Bool("threadMode", false))
	assert.True(t, p.Bool("missing", true))
	assert.False(t, p.Bool("text", false))

	assert.Equal(t, []string{"a", "b"}, p.Strings("media"))
	// JSON-decoded override values arrive as []any with mixed types.
	assert.Equal(t, []string{"x", "y"}, p.Strings("decoded"))
	assert.Nil(t, p.Strings("missing"))
	assert.Nil(t, p.Strings("text"))
}

func TestPostMediaURLs(t *testing.T) {
	post := &Post{
		Media: []*Media{
			{ID: "m1", URL: "https://cdn/a.jpg"},
			nil,
			{ID: "m2", URL: ""},
			{ID: "m3", URL: "https://cdn/b.mp4"},
		},
	}

	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.mp4"}, post.MediaURLs())
	assert.Empty(t, (&Post{}).MediaURLs())
}
