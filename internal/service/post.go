package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pixelgram/internal/cache"
	"pixelgram/internal/model"
	"pixelgram/internal/queue"
	"pixelgram/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of posts per page
	FeedDefaultLimit = 20

	// FeedMaxLimit is the maximum number of posts per page
	FeedMaxLimit = 100

	// FeedWarmLimit is how many recent post ids to load when warming the
	// feed index. Matches the index cap.
	FeedWarmLimit = cache.FeedCacheCap
)

type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	engagement *EngagementService
	feedIndex  cache.FeedIndex
	publisher  queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	engagement *EngagementService,
	feedIndex cache.FeedIndex,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		engagement: engagement,
		feedIndex:  feedIndex,
		publisher:  publisher,
	}
}

// Create validates and stores a new post, then publishes an event so the
// feed index picks it up asynchronously.
func (s *PostService) Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, model.ErrImageRequired
	}
	if req.Caption != nil && len(*req.Caption) > model.MaxPostCaptionLength {
		return nil, model.ErrCaptionTooLong
	}
	if req.Location != nil && len(*req.Location) > model.MaxPostLocationLength {
		return nil, model.ErrLocationTooLong
	}

	post, err := s.postRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	// Publish for async feed index maintenance. The post is committed, so
	// a publish failure only delays its appearance in the cached feed; the
	// database fallback still serves it.
	event := queue.NewPostCreatedEvent(post.ID, userID, post.CreatedAt)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[PostService] Failed to publish PostCreated event: post=%s err=%v", post.ID, err)
	}

	if err := s.engagement.EnrichPost(ctx, post, &userID); err != nil {
		log.Printf("[PostService] Failed to enrich new post: post=%s err=%v", post.ID, err)
	}

	return post, nil
}

// GetByID retrieves a single post with author, derived counts and the
// viewer's like state. viewerID is nil for unauthenticated requests.
func (s *PostService) GetByID(ctx context.Context, postID string, viewerID *string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.engagement.EnrichPost(ctx, post, viewerID); err != nil {
		return nil, err
	}

	return post, nil
}

// Delete removes the caller's post and publishes an event to drop it from
// the feed index. Ownership is checked by the delete predicate itself: a
// post owned by someone else reads as not found.
func (s *PostService) Delete(ctx context.Context, postID, userID string) (*model.Post, error) {
	post, err := s.postRepo.Delete(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	event := queue.NewPostDeletedEvent(postID, userID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[PostService] Failed to publish PostDeleted event: post=%s err=%v", postID, err)
	}

	return post, nil
}

// GetFeed returns one page of the global reverse-chronological feed.
//
// Flow:
// 1. Try the feed index for the requested id window, warming it on a miss
// 2. On a cache hit, hydrate the ids from the database in cached order
// 3. On any cache failure or a window past the cached range, read the
//    page straight from the database
// 4. Enrich the page with authors, counts and the viewer's like state
func (s *PostService) GetFeed(ctx context.Context, viewerID *string, limit, offset int) ([]model.Post, error) {
	limit, offset = clampPage(limit, offset, FeedDefaultLimit)

	posts, err := s.feedPage(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return s.engagement.EnrichPosts(ctx, posts, viewerID)
}

// feedPage resolves one page of bare posts, cache-first.
func (s *PostService) feedPage(ctx context.Context, limit, offset int) ([]model.Post, error) {
	ids, ok, err := s.pageFromIndex(ctx, limit, offset)
	if err != nil {
		log.Printf("[PostService] Feed index unavailable, using database: %v", err)
	}
	if err != nil || !ok {
		posts, err := s.postRepo.ListFeed(ctx, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list feed: %w", err)
		}
		return posts, nil
	}

	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	posts, err := s.postRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate feed posts: %w", err)
	}
	return posts, nil
}

// pageFromIndex reads a page of ids from the feed index, warming it from
// the database when the key is missing or expired.
func (s *PostService) pageFromIndex(ctx context.Context, limit, offset int) ([]string, bool, error) {
	exists, err := s.feedIndex.Exists(ctx)
	if err != nil {
		return nil, false, err
	}

	if !exists {
		recent, err := s.postRepo.ListRecent(ctx, FeedWarmLimit)
		if err != nil {
			return nil, false, fmt.Errorf("load recent posts: %w", err)
		}
		if len(recent) == 0 {
			// Nothing published yet; an empty page is correct.
			return []string{}, true, nil
		}
		if err := s.feedIndex.Warm(ctx, recent); err != nil {
			return nil, false, err
		}
		log.Printf("[PostService] Feed index warmed with %d posts", len(recent))
	}

	return s.feedIndex.Page(ctx, limit, offset)
}

// GetUserPosts returns one page of a user's posts, newest first, with
// authors and counts but no viewer like state. Profile browsing is not
// personalized; is_liked stays false for everyone.
func (s *PostService) GetUserPosts(ctx context.Context, userID string, limit, offset int) ([]model.Post, error) {
	limit, offset = clampPage(limit, offset, FeedDefaultLimit)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}

	return s.engagement.EnrichPosts(ctx, posts, nil)
}

// clampPage normalizes limit/offset: non-positive or missing limits fall
// back to def, limits above FeedMaxLimit are capped, negative offsets
// become zero.
func clampPage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
