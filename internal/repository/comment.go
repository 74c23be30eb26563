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

const commentColumns = `id, user_id, post_id, content, created_at, updated_at`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, userID, postID, content string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (user_id, post_id, content)
		VALUES ($1, $2, $3)
		RETURNING ` + commentColumns

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, userID, postID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// Update changes a comment's content. Ownership is part of the WHERE
// predicate, so a comment owned by someone else reads as not found.
func (r *commentRepository) Update(ctx context.Context, commentID, userID, content string) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET content = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + commentColumns

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID, userID, content)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment with the same id+owner predicate and returns
// the deleted row.
func (r *commentRepository) Delete(ctx context.Context, commentID, userID string) (*model.Comment, error) {
	query := `
		DELETE FROM comments
		WHERE id = $1 AND user_id = $2
		RETURNING ` + commentColumns

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return &comment, nil
}

// ListByPost returns a page of comments on a post, oldest first, with the
// author fragment joined in.
func (r *commentRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.user_id, c.post_id, c.content, c.created_at, c.updated_at,
		       u.username AS author_username, u.avatar_url AS author_avatar, u.full_name AS author_full_name
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $2 OFFSET $3
	`

	type commentRow struct {
		ID             string     `db:"id"`
		UserID         string     `db:"user_id"`
		PostID         string     `db:"post_id"`
		Content        string     `db:"content"`
		CreatedAt      time.Time  `db:"created_at"`
		UpdatedAt      *time.Time `db:"updated_at"`
		AuthorUsername string     `db:"author_username"`
		AuthorAvatar   *string    `db:"author_avatar"`
		AuthorFullName *string    `db:"author_full_name"`
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, rw := range rows {
		comments[i] = model.Comment{
			ID:        rw.ID,
			UserID:    rw.UserID,
			PostID:    rw.PostID,
			Content:   rw.Content,
			CreatedAt: rw.CreatedAt,
			UpdatedAt: rw.UpdatedAt,
			Author: &model.UserSummary{
				ID:        rw.UserID,
				Username:  rw.AuthorUsername,
				AvatarURL: rw.AuthorAvatar,
				FullName:  rw.AuthorFullName,
			},
		}
	}
	return comments, nil
}

// CountByPostIDs counts comment rows per post in one GROUP BY query.
// Posts with zero comments are absent; zero-filling is the aggregator's job.
func (r *commentRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT post_id, COUNT(*) AS count
		FROM comments
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
		return nil, fmt.Errorf("count comments: %w", err)
	}

	for _, rw := range rows {
		result[rw.PostID] = rw.Count
	}
	return result, nil
}
