package model

import (
	"errors"
	"regexp"
	"time"
)

// User represents a user account.
type User struct {
	ID             string     `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	Email          string     `db:"email" json:"email"`
	PasswordHashed string     `db:"password_hashed" json:"-"` // "-" hides from JSON output
	FullName       *string    `db:"full_name" json:"full_name,omitempty"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio            *string    `db:"bio" json:"bio,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// UserSummary is the minimal public profile fragment embedded into
// posts, comments and likes.
type UserSummary struct {
	ID        string  `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
	FullName  *string `db:"full_name" json:"full_name,omitempty"`
}

// UserStats holds the derived per-user counters. They are computed from
// rows at read time, never stored.
type UserStats struct {
	PostsCount     int `json:"posts_count"`
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}

// Profile is a user plus their derived stats, as returned by GET /users/{id}.
type Profile struct {
	User
	UserStats
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the mutable profile fields. Nil means
// "leave unchanged".
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Profile constraints
const (
	MaxFullNameLength = 100
	MaxBioLength      = 500
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{3,30}$`)

// ValidUsername reports whether the username is 3-30 alphanumeric characters.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to take a username that is in use
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to register an email that is in use
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUsername is returned when a username fails format validation
	ErrInvalidUsername = errors.New("username must be 3-30 alphanumeric characters")

	// ErrNotProfileOwner is returned when a caller updates someone else's profile
	ErrNotProfileOwner = errors.New("cannot update another user's profile")

	// ErrFullNameTooLong and ErrBioTooLong guard profile updates
	ErrFullNameTooLong = errors.New("full name too long")
	ErrBioTooLong      = errors.New("bio too long")
)
