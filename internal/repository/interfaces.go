package repository

import (
	"context"
	"time"

	"pixelgram/internal/cache"
	"pixelgram/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	// GetSummaries batch-resolves minimal profile fragments for embedding
	// into posts, comments and likes.
	GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error)
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	// GetByIDs returns posts in the order of the input ids, silently
	// dropping ids that no longer exist.
	GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error)
	// Delete removes the post iff it belongs to userID, in a single
	// predicate, and returns the deleted row. A post that exists under
	// another owner is indistinguishable from one that never existed.
	Delete(ctx context.Context, postID, userID string) (*model.Post, error)
	ListFeed(ctx context.Context, limit, offset int) ([]model.Post, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Post, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Exists(ctx context.Context, postID string) (bool, error)
	// ListRecent returns the newest post ids with their creation
	// timestamps for warming the feed index.
	ListRecent(ctx context.Context, limit int) ([]cache.PostScore, error)
}

type LikeRepository interface {
	Create(ctx context.Context, userID, postID string) (*model.Like, error)
	Delete(ctx context.Context, userID, postID string) error
	Exists(ctx context.Context, userID, postID string) (bool, error)
	// CountByPostIDs returns the number of like rows per post id.
	// Posts with no likes are absent from the result map.
	CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error)
	// LikedSet returns which of the given posts the user has liked.
	LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Like, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Like, error)
}

type CommentRepository interface {
	Create(ctx context.Context, userID, postID, content string) (*model.Comment, error)
	Update(ctx context.Context, commentID, userID, content string) (*model.Comment, error)
	Delete(ctx context.Context, commentID, userID string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Comment, error)
	CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error)
}

type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
