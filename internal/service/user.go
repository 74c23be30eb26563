package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"pixelgram/internal/model"
	"pixelgram/internal/repository"
)

const (
	// SearchDefaultLimit is the default number of users per search page
	SearchDefaultLimit = 20

	// SearchMaxLimit is the maximum number of users per search page
	SearchMaxLimit = 50
)

// UserService handles business logic for user operations
type UserService struct {
	repo       repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewUserService(
	repo repository.UserRepository,
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
) *UserService {
	return &UserService{
		repo:       repo,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
}

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if !model.ValidUsername(req.Username) {
		return nil, model.ErrInvalidUsername
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	if len(req.FullName) > model.MaxFullNameLength {
		return nil, model.ErrFullNameTooLong
	}

	// Pre-checks give clean errors; the unique constraints still catch
	// the concurrent race.
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
	}
	if req.FullName != "" {
		user.FullName = &req.FullName
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user with derived post/follower/following counts.
// The three counts are computed from rows concurrently after the user
// lookup confirms the id exists.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{User: *user}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile.PostsCount, err = s.postRepo.CountByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		profile.FollowersCount, err = s.followRepo.CountFollowers(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		profile.FollowingCount, err = s.followRepo.CountFollowing(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count profile stats: %w", err)
	}

	return profile, nil
}

// UpdateProfile applies the caller's changes to their own profile.
// callerID must equal userID; there is no admin path.
func (s *UserService) UpdateProfile(ctx context.Context, userID, callerID string, req model.UpdateProfileRequest) (*model.User, error) {
	if userID != callerID {
		return nil, model.ErrNotProfileOwner
	}

	if req.Username != nil && !model.ValidUsername(*req.Username) {
		return nil, model.ErrInvalidUsername
	}
	if req.FullName != nil && len(*req.FullName) > model.MaxFullNameLength {
		return nil, model.ErrFullNameTooLong
	}
	if req.Bio != nil && len(*req.Bio) > model.MaxBioLength {
		return nil, model.ErrBioTooLong
	}

	user, err := s.repo.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Search finds users whose username or full name matches the query.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSummary{}, nil
	}

	if limit <= 0 {
		limit = SearchDefaultLimit
	}
	if limit > SearchMaxLimit {
		limit = SearchMaxLimit
	}

	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return users, nil
}
