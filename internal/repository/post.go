package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pixelgram/internal/cache"
	"pixelgram/internal/model"
)

const postColumns = `id, user_id, image_url, caption, location, created_at, updated_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post. The id and created_at are assigned by the
// database.
func (r *postRepository) Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, image_url, caption, location)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, req.ImageURL, req.Caption, req.Location)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	return &post, nil
}

// GetByID retrieves a single post row.
func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// GetByIDs retrieves multiple posts and re-orders them to match the input
// order. Used for hydrating feed pages from the feed index.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ANY($1)`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	byID := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// Delete removes the post in a single id+owner predicate and returns the
// deleted row. Non-owners get the same ErrPostNotFound as callers of a
// nonexistent id; there is no fetch-then-compare step to leak existence
// through errors or timing.
func (r *postRepository) Delete(ctx context.Context, postID, userID string) (*model.Post, error) {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + postColumns

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}

	return &post, nil
}

// ListFeed returns a page of the global feed, newest first. The id
// tie-break keeps pagination deterministic when timestamps collide.
func (r *postRepository) ListFeed(ctx context.Context, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	posts := []model.Post{}
	err := r.db.SelectContext(ctx, &posts, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	return posts, nil
}

// ListByUser returns a page of one author's posts, newest first.
func (r *postRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	posts := []model.Post{}
	err := r.db.SelectContext(ctx, &posts, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}

	return posts, nil
}

// CountByUser returns the number of posts by one author.
func (r *postRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count user posts: %w", err)
	}
	return count, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// ListRecent returns the newest post ids with creation timestamps for
// warming the feed index. Scores are Unix milliseconds so the index can
// keep same-second posts in database order.
func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, (EXTRACT(EPOCH FROM created_at) * 1000)::bigint AS timestamp
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	type row struct {
		ID        string `db:"id"`
		Timestamp int64  `db:"timestamp"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, rw := range rows {
		scores[i] = cache.PostScore{PostID: rw.ID, Timestamp: rw.Timestamp}
	}
	return scores, nil
}
