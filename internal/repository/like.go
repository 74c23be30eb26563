package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pixelgram/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts a like row. The unique constraint on (user_id, post_id)
// is the single point of truth for at-most-one-like; a concurrent
// duplicate surfaces here as a 23505 and becomes ErrAlreadyLiked.
func (r *likeRepository) Create(ctx context.Context, userID, postID string) (*model.Like, error) {
	query := `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		RETURNING id, user_id, post_id, created_at
	`

	var like model.Like
	err := r.db.GetContext(ctx, &like, query, userID, postID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, model.ErrAlreadyLiked
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}

	return &like, nil
}

// Delete removes a like row. Deleting an absent like is ErrNotLiked, not
// a crash, so unlike retries are safe.
func (r *likeRepository) Delete(ctx context.Context, userID, postID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

// Exists checks whether the user has liked the post.
func (r *likeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("check like exists: %w", err)
	}
	return exists, nil
}

// CountByPostIDs counts like rows per post in one GROUP BY query. Posts
// with zero likes are absent; zero-filling is the aggregator's job.
func (r *likeRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT post_id, COUNT(*) AS count
		FROM likes
		WHERE post_id = ANY($1)
		GROUP BY post_id
	`

	type row struct {
		PostID string `db:"post_id"`
		Count  int    `db:"count"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	for _, rw := range rows {
		result[rw.PostID] = rw.Count
	}
	return result, nil
}

// LikedSet returns which of the given posts the user has liked, in one
// batch query rather than one per post.
func (r *likeRepository) LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `SELECT post_id FROM likes WHERE user_id = $1 AND post_id = ANY($2)`

	var likedIDs []string
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}

// likeRow scans a like joined with its author fragment.
type likeRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	PostID         string    `db:"post_id"`
	CreatedAt      time.Time `db:"created_at"`
	AuthorUsername string    `db:"author_username"`
	AuthorAvatar   *string   `db:"author_avatar"`
	AuthorFullName *string   `db:"author_full_name"`
}

// ListByPost returns a page of likes on a post, newest first, with the
// liker's profile fragment joined in.
func (r *likeRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Like, error) {
	query := `
		SELECT l.id, l.user_id, l.post_id, l.created_at,
		       u.username AS author_username, u.avatar_url AS author_avatar, u.full_name AS author_full_name
		FROM likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.post_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3
	`

	var rows []likeRow
	err := r.db.SelectContext(ctx, &rows, query, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list post likes: %w", err)
	}

	likes := make([]model.Like, len(rows))
	for i, rw := range rows {
		likes[i] = model.Like{
			ID:        rw.ID,
			UserID:    rw.UserID,
			PostID:    rw.PostID,
			CreatedAt: rw.CreatedAt,
			Author: &model.UserSummary{
				ID:        rw.UserID,
				Username:  rw.AuthorUsername,
				AvatarURL: rw.AuthorAvatar,
				FullName:  rw.AuthorFullName,
			},
		}
	}
	return likes, nil
}

// ListByUser returns a page of the user's likes, newest first, with the
// liked post (and its author fragment) joined in.
func (r *likeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Like, error) {
	query := `
		SELECT l.id, l.user_id, l.post_id, l.created_at,
		       p.user_id AS post_user_id, p.image_url, p.caption, p.location, p.created_at AS post_created_at,
		       u.username AS author_username, u.avatar_url AS author_avatar, u.full_name AS author_full_name
		FROM likes l
		JOIN posts p ON p.id = l.post_id
		JOIN users u ON u.id = p.user_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3
	`

	type userLikeRow struct {
		likeRow
		PostUserID    string    `db:"post_user_id"`
		ImageURL      string    `db:"image_url"`
		Caption       *string   `db:"caption"`
		Location      *string   `db:"location"`
		PostCreatedAt time.Time `db:"post_created_at"`
	}

	var rows []userLikeRow
	err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list user likes: %w", err)
	}

	likes := make([]model.Like, len(rows))
	for i, rw := range rows {
		likes[i] = model.Like{
			ID:        rw.ID,
			UserID:    rw.UserID,
			PostID:    rw.PostID,
			CreatedAt: rw.CreatedAt,
			Post: &model.Post{
				ID:        rw.PostID,
				UserID:    rw.PostUserID,
				ImageURL:  rw.ImageURL,
				Caption:   rw.Caption,
				Location:  rw.Location,
				CreatedAt: rw.PostCreatedAt,
				Author: &model.UserSummary{
					ID:        rw.PostUserID,
					Username:  rw.AuthorUsername,
					AvatarURL: rw.AuthorAvatar,
					FullName:  rw.AuthorFullName,
				},
			},
		}
	}
	return likes, nil
}
