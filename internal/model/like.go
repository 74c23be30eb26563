package model

import (
	"errors"
	"time"
)

// Like represents a single user's like on a post. At most one row may
// exist per (user_id, post_id) pair; the database enforces this with a
// unique constraint so concurrent likes resolve to one row plus one
// rejected duplicate.
type Like struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	PostID    string    `db:"post_id" json:"post_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined fragments for list endpoints.
	Author *UserSummary `json:"users,omitempty"`
	Post   *Post        `json:"posts,omitempty"`
}

// LikePostRequest is the request body for like/unlike.
type LikePostRequest struct {
	PostID string `json:"post_id"`
}

// EngagementCounts holds the derived per-post counters.
type EngagementCounts struct {
	Likes    int
	Comments int
}

// Like errors
var (
	ErrAlreadyLiked = errors.New("post already liked")
	ErrNotLiked     = errors.New("post not liked")
)
