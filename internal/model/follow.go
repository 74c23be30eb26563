package model

import (
	"errors"
	"time"
)

// Follow is a directed edge: follower_id follows following_id. The
// database enforces at most one edge per ordered pair and rejects
// self-edges; the service layer surfaces both as typed errors.
type Follow struct {
	ID          string    `db:"id" json:"id"`
	FollowerID  string    `db:"follower_id" json:"follower_id"`
	FollowingID string    `db:"following_id" json:"following_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FollowStats holds the derived edge counts for one user.
type FollowStats struct {
	Followers int `json:"followers_count"`
	Following int `json:"following_count"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
