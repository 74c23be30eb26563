package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pixelgram/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts a follow edge. The unique constraint on
// (follower_id, following_id) guarantees at most one edge per ordered
// pair even under concurrent requests; the 23505 conflict becomes
// ErrAlreadyFollowing.
func (r *followRepository) Create(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	query := `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		RETURNING id, follower_id, following_id, created_at
	`

	var follow model.Follow
	err := r.db.GetContext(ctx, &follow, query, followerID, followingID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, model.ErrAlreadyFollowing
			case "23514":
				// no_self_follow check constraint
				return nil, model.ErrCannotFollowSelf
			}
		}
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}

	return &follow, nil
}

// Delete removes a follow edge. Deleting an absent edge is
// ErrNotFollowing so unfollow retries stay safe.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

// Exists checks whether follower follows following. Absence is false,
// never an error.
func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// CountFollowers counts edges pointing at the user.
func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE following_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

// CountFollowing counts edges originating from the user.
func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}
