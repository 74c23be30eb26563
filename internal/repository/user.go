package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pixelgram/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, full_name, avatar_url, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.FullName,
		u.AvatarURL,
		u.Bio,
	)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return model.ErrEmailExists
			default:
				return model.ErrUsernameExists
			}
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hashed, full_name, avatar_url, bio, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hashed, full_name, avatar_url, bio, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// Update applies the provided profile fields via COALESCE so that nil
// fields are left unchanged, and returns the updated row.
func (r *userRepository) Update(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	query := `
		UPDATE users
		SET username   = COALESCE($2, username),
		    full_name  = COALESCE($3, full_name),
		    bio        = COALESCE($4, bio),
		    avatar_url = COALESCE($5, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, username, email, password_hashed, full_name, avatar_url, bio, created_at, updated_at
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id, req.Username, req.FullName, req.Bio, req.AvatarURL)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, model.ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &u, nil
}

// Search finds users whose username or full name contains the query.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	searchQuery := `
		SELECT id, username, avatar_url, full_name
		FROM users
		WHERE username ILIKE $1 OR full_name ILIKE $1
		ORDER BY username
		LIMIT $2
	`

	users := []model.UserSummary{}
	err := r.db.SelectContext(ctx, &users, searchQuery, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

// GetSummaries batch-resolves profile fragments in a single query.
func (r *userRepository) GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	result := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT id, username, avatar_url, full_name
		FROM users
		WHERE id = ANY($1)
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	for _, u := range users {
		result[u.ID] = u
	}

	return result, nil
}
