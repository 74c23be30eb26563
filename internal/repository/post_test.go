package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"pixelgram/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { sqlxDB.Close() })
	return sqlxDB, mock
}

func postRows(posts ...model.Post) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "image_url", "caption", "location", "created_at", "updated_at"})
	for _, p := range posts {
		rows.AddRow(p.ID, p.UserID, p.ImageURL, strPtrValue(p.Caption), strPtrValue(p.Location), p.CreatedAt, timePtrValue(p.UpdatedAt))
	}
	return rows
}

func strPtrValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func timePtrValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	caption := "sunset"
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("u1", "https://img/x.jpg", "sunset", nil).
		WillReturnRows(postRows(model.Post{
			ID: "p1", UserID: "u1", ImageURL: "https://img/x.jpg", Caption: &caption, CreatedAt: now,
		}))

	post, err := repo.Create(context.Background(), "u1", model.CreatePostRequest{
		ImageURL: "https://img/x.jpg",
		Caption:  &caption,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.ID != "p1" || post.UserID != "u1" {
		t.Errorf("post = %+v, want id p1 by u1", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(postRows())

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestPostRepository_GetByIDs_PreservesInputOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	now := time.Now()
	// Database returns rows in arbitrary order; the repo reorders them.
	mock.ExpectQuery(`SELECT .+ FROM posts WHERE id = ANY`).
		WillReturnRows(postRows(
			model.Post{ID: "p1", UserID: "u1", ImageURL: "a", CreatedAt: now},
			model.Post{ID: "p3", UserID: "u1", ImageURL: "c", CreatedAt: now},
			model.Post{ID: "p2", UserID: "u1", ImageURL: "b", CreatedAt: now},
		))

	posts, err := repo.GetByIDs(context.Background(), []string{"p3", "p2", "p1", "deleted"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"p3", "p2", "p1"}
	if len(posts) != len(want) {
		t.Fatalf("got %d posts, want %d", len(posts), len(want))
	}
	for i := range want {
		if posts[i].ID != want[i] {
			t.Errorf("posts[%d].ID = %s, want %s", i, posts[i].ID, want[i])
		}
	}
}

func TestPostRepository_GetByIDs_Empty(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPostRepository(db)

	posts, err := repo.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts, got %d", len(posts))
	}
}

func TestPostRepository_Delete(t *testing.T) {
	t.Run("owner gets the deleted row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostRepository(db)

		now := time.Now()
		mock.ExpectQuery(`DELETE FROM posts\s+WHERE id = \$1 AND user_id = \$2\s+RETURNING`).
			WithArgs("p1", "u1").
			WillReturnRows(postRows(model.Post{ID: "p1", UserID: "u1", ImageURL: "a", CreatedAt: now}))

		post, err := repo.Delete(context.Background(), "p1", "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if post.ID != "p1" {
			t.Errorf("post id = %s, want p1", post.ID)
		}
	})

	t.Run("non-owner reads as not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`DELETE FROM posts\s+WHERE id = \$1 AND user_id = \$2\s+RETURNING`).
			WithArgs("p1", "intruder").
			WillReturnRows(postRows())

		_, err := repo.Delete(context.Background(), "p1", "intruder")
		if !errors.Is(err, model.ErrPostNotFound) {
			t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
		}
	})
}

func TestPostRepository_ListFeed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM posts\s+ORDER BY created_at DESC, id DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 4).
		WillReturnRows(postRows(
			model.Post{ID: "p9", UserID: "u1", ImageURL: "a", CreatedAt: now},
			model.Post{ID: "p8", UserID: "u2", ImageURL: "b", CreatedAt: now},
		))

	posts, err := repo.ListFeed(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "p9" {
		t.Errorf("posts = %+v, want [p9 p8]", posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostRepository_ListRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	// Millisecond scores keep same-second posts distinguishable.
	mock.ExpectQuery(`SELECT id, \(EXTRACT\(EPOCH FROM created_at\) \* 1000\)::bigint AS timestamp`).
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).
			AddRow("p2", int64(200500)).
			AddRow("p1", int64(200100)))

	scores, err := repo.ListRecent(context.Background(), 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	if scores[0].PostID != "p2" || scores[0].Timestamp != 200500 {
		t.Errorf("scores[0] = %+v, want p2@200500", scores[0])
	}
}
