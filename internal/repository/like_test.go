package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"pixelgram/internal/model"
)

func TestLikeRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs("u1", "p1").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "likes_user_id_post_id_key"})

	_, err := repo.Create(context.Background(), "u1", "p1")
	if !errors.Is(err, model.ErrAlreadyLiked) {
		t.Errorf("error = %v, want %v", err, model.ErrAlreadyLiked)
	}
}

func TestLikeRepository_Delete_Absent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectExec(`DELETE FROM likes WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs("u1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u1", "p1")
	if !errors.Is(err, model.ErrNotLiked) {
		t.Errorf("error = %v, want %v", err, model.ErrNotLiked)
	}
}

func TestLikeRepository_CountByPostIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectQuery(`SELECT post_id, COUNT\(\*\) AS count\s+FROM likes\s+WHERE post_id = ANY\(\$1\)\s+GROUP BY post_id`).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "count"}).
			AddRow("p1", 3).
			AddRow("p2", 1))

	counts, err := repo.CountByPostIDs(context.Background(), []string{"p1", "p2", "p3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["p1"] != 3 || counts["p2"] != 1 {
		t.Errorf("counts = %v, want p1:3 p2:1", counts)
	}
	// Posts with no likes are simply absent; callers zero-fill.
	if _, ok := counts["p3"]; ok {
		t.Error("p3 must not appear in the grouped result")
	}
}

func TestLikeRepository_LikedSet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectQuery(`SELECT post_id FROM likes WHERE user_id = \$1 AND post_id = ANY\(\$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow("p2"))

	liked, err := repo.LikedSet(context.Background(), "u1", []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liked["p1"] || !liked["p2"] {
		t.Errorf("liked = %v, want p1:false p2:true", liked)
	}
}

func TestLikeRepository_ListByUser_EmbedsPostAndAuthor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM likes l\s+JOIN posts p ON p.id = l.post_id\s+JOIN users u ON u.id = p.user_id`).
		WithArgs("u1", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "post_id", "created_at",
			"post_user_id", "image_url", "caption", "location", "post_created_at",
			"author_username", "author_avatar", "author_full_name",
		}).AddRow("l1", "u1", "p1", now, "a1", "https://img/x.jpg", nil, nil, now, "alice", nil, nil))

	likes, err := repo.ListByUser(context.Background(), "u1", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(likes) != 1 {
		t.Fatalf("got %d likes, want 1", len(likes))
	}

	like := likes[0]
	if like.Post == nil || like.Post.ID != "p1" || like.Post.ImageURL != "https://img/x.jpg" {
		t.Fatalf("embedded post = %+v", like.Post)
	}
	if like.Post.Author == nil || like.Post.Author.Username != "alice" {
		t.Errorf("embedded author = %+v, want alice", like.Post.Author)
	}
}
