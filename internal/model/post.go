package model

import (
	"errors"
	"time"
)

// Post represents an image post. LikesCount, CommentsCount and IsLiked
// are derived at read time from like/comment rows; they are never stored
// on the posts table, so they cannot drift from the underlying rows.
type Post struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	ImageURL  string     `db:"image_url" json:"image_url"`
	Caption   *string    `db:"caption" json:"caption,omitempty"`
	Location  *string    `db:"location" json:"location,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`

	// Enriched fields (not columns on the posts table). The "users" key
	// matches the wire contract inherited from the persisted schema.
	Author        *UserSummary `json:"users,omitempty"`
	LikesCount    int          `json:"likes_count"`
	CommentsCount int          `json:"comments_count"`
	IsLiked       bool         `json:"is_liked"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	ImageURL string  `json:"image_url"`
	Caption  *string `json:"caption,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Post constraints
const (
	MaxPostCaptionLength  = 2000
	MaxPostLocationLength = 100
)

// Post errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrImageRequired   = errors.New("image_url is required")
	ErrCaptionTooLong  = errors.New("caption too long")
	ErrLocationTooLong = errors.New("location too long")
)
