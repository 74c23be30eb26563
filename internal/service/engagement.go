package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"pixelgram/internal/model"
	"pixelgram/internal/repository"
)

// EngagementService derives like/comment counts and per-viewer like state
// from the underlying rows and stitches author fragments onto posts. All
// counters are computed at read time so they can never drift.
type EngagementService struct {
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

func NewEngagementService(
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
) *EngagementService {
	return &EngagementService{
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

// Counts returns like and comment counts for every requested post id.
// Posts with no engagement rows get explicit zeroes. The two grouped
// queries run concurrently.
func (s *EngagementService) Counts(ctx context.Context, postIDs []string) (map[string]model.EngagementCounts, error) {
	counts := make(map[string]model.EngagementCounts, len(postIDs))
	for _, id := range postIDs {
		counts[id] = model.EngagementCounts{}
	}
	if len(postIDs) == 0 {
		return counts, nil
	}

	var likeCounts, commentCounts map[string]int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likeCounts, err = s.likeRepo.CountByPostIDs(gctx, postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		commentCounts, err = s.commentRepo.CountByPostIDs(gctx, postIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count engagement: %w", err)
	}

	for id, n := range likeCounts {
		c := counts[id]
		c.Likes = n
		counts[id] = c
	}
	for id, n := range commentCounts {
		c := counts[id]
		c.Comments = n
		counts[id] = c
	}

	return counts, nil
}

// ViewerLiked returns which of the posts the viewer has liked. A nil
// viewer (unauthenticated request) yields all-false. A failed lookup is
// logged and degrades to all-false rather than failing the read: stale
// like state is preferable to an error page.
func (s *EngagementService) ViewerLiked(ctx context.Context, viewerID *string, postIDs []string) map[string]bool {
	liked := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		liked[id] = false
	}
	if viewerID == nil || len(postIDs) == 0 {
		return liked
	}

	set, err := s.likeRepo.LikedSet(ctx, *viewerID, postIDs)
	if err != nil {
		log.Printf("[EngagementService] LikedSet failed for viewer=%s: %v", *viewerID, err)
		return liked
	}
	return set
}

// EnrichPosts attaches author summaries, derived counts and the viewer's
// like state to each post. Counts, like state and author fragments are
// fetched concurrently, then merged in order.
func (s *EngagementService) EnrichPosts(ctx context.Context, posts []model.Post, viewerID *string) ([]model.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]string, len(posts))
	authorSet := make(map[string]struct{})
	for i, p := range posts {
		postIDs[i] = p.ID
		authorSet[p.UserID] = struct{}{}
	}
	authorIDs := make([]string, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}

	var (
		counts  map[string]model.EngagementCounts
		liked   map[string]bool
		authors map[string]model.UserSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.Counts(gctx, postIDs)
		return err
	})
	g.Go(func() error {
		liked = s.ViewerLiked(gctx, viewerID, postIDs)
		return nil
	})
	g.Go(func() error {
		var err error
		authors, err = s.userRepo.GetSummaries(gctx, authorIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrich posts: %w", err)
	}

	for i := range posts {
		p := &posts[i]
		if a, ok := authors[p.UserID]; ok {
			summary := a
			p.Author = &summary
		}
		c := counts[p.ID]
		p.LikesCount = c.Likes
		p.CommentsCount = c.Comments
		p.IsLiked = liked[p.ID]
	}

	return posts, nil
}

// EnrichPost is the single-post variant of EnrichPosts.
func (s *EngagementService) EnrichPost(ctx context.Context, post *model.Post, viewerID *string) error {
	enriched, err := s.EnrichPosts(ctx, []model.Post{*post}, viewerID)
	if err != nil {
		return err
	}
	*post = enriched[0]
	return nil
}
