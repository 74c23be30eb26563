package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pixelgram/internal/model"
	"pixelgram/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates a follow edge from the caller to the target user.
// Self-follows are rejected before touching the database; the unique
// constraint turns a concurrent duplicate into ErrAlreadyFollowing.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	if followerID == followingID {
		return nil, model.ErrCannotFollowSelf
	}

	// Surface a missing target as 404 rather than a foreign key violation.
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return nil, err
	}

	follow, err := s.followRepo.Create(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}

	return follow, nil
}

// Unfollow removes the follow edge. Unfollowing someone the caller does
// not follow is ErrNotFollowing; a self-unfollow hits the same path since
// a self-edge can never exist.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	return s.followRepo.Delete(ctx, followerID, followingID)
}

// IsFollowing reports whether follower currently follows following.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followingID)
}

// Stats returns the user's follower and following counts, computed from
// edges concurrently.
func (s *FollowService) Stats(ctx context.Context, userID string) (*model.FollowStats, error) {
	var stats model.FollowStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Followers, err = s.followRepo.CountFollowers(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Following, err = s.followRepo.CountFollowing(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count follow edges: %w", err)
	}

	return &stats, nil
}
