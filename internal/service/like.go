package service

import (
	"context"
	"fmt"
	"log"

	"pixelgram/internal/model"
	"pixelgram/internal/repository"
)

const (
	// LikeDefaultLimit is the default number of likes per page
	LikeDefaultLimit = 50

	// LikeMaxLimit is the maximum number of likes per page
	LikeMaxLimit = 100
)

type LikeService struct {
	likeRepo   repository.LikeRepository
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	engagement *EngagementService
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	engagement *EngagementService,
) *LikeService {
	return &LikeService{
		likeRepo:   likeRepo,
		postRepo:   postRepo,
		userRepo:   userRepo,
		engagement: engagement,
	}
}

// Like records the caller's like on a post. No counter is touched: the
// like count is always derived from rows, so the insert is the whole
// operation. A concurrent duplicate resolves to ErrAlreadyLiked via the
// unique constraint.
func (s *LikeService) Like(ctx context.Context, userID, postID string) (*model.Like, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	like, err := s.likeRepo.Create(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	return like, nil
}

// Unlike removes the caller's like. Unliking a post the caller never
// liked is ErrNotLiked.
func (s *LikeService) Unlike(ctx context.Context, userID, postID string) error {
	return s.likeRepo.Delete(ctx, userID, postID)
}

// Status reports whether the caller has liked the post.
func (s *LikeService) Status(ctx context.Context, userID, postID string) (bool, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return false, model.ErrPostNotFound
	}

	return s.likeRepo.Exists(ctx, userID, postID)
}

// GetPostLikes returns one page of likes on a post, newest first, each
// carrying its author fragment.
func (s *LikeService) GetPostLikes(ctx context.Context, postID string, limit, offset int) ([]model.Like, error) {
	limit, offset = clampLikePage(limit, offset)

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	likes, err := s.likeRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list post likes: %w", err)
	}

	return likes, nil
}

// GetUserLikes returns one page of a user's likes, newest first, each
// carrying the liked post with derived counts.
func (s *LikeService) GetUserLikes(ctx context.Context, userID string, viewerID *string, limit, offset int) ([]model.Like, error) {
	limit, offset = clampLikePage(limit, offset)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	likes, err := s.likeRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list user likes: %w", err)
	}

	// Enrich the embedded posts so their counts and like state match what
	// the feed would show.
	posts := make([]model.Post, 0, len(likes))
	for _, l := range likes {
		if l.Post != nil {
			posts = append(posts, *l.Post)
		}
	}
	enriched, err := s.engagement.EnrichPosts(ctx, posts, viewerID)
	if err != nil {
		log.Printf("[LikeService] Failed to enrich liked posts for user=%s: %v", userID, err)
		return likes, nil
	}

	i := 0
	for j := range likes {
		if likes[j].Post != nil {
			p := enriched[i]
			likes[j].Post = &p
			i++
		}
	}

	return likes, nil
}

func clampLikePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = LikeDefaultLimit
	}
	if limit > LikeMaxLimit {
		limit = LikeMaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
