package service

import (
	"context"
	"time"

	"pixelgram/internal/cache"
	"pixelgram/internal/model"
	"pixelgram/internal/queue"
)

// Function-field mocks: each test sets only the behavior it needs and the
// zero value gives a safe default.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	updateFn           func(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error)
	searchFn           func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	getSummariesFn     func(ctx context.Context, ids []string) (map[string]model.UserSummary, error)

	createCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return []model.UserSummary{}, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	summaries := make(map[string]model.UserSummary, len(ids))
	for _, id := range ids {
		summaries[id] = model.UserSummary{ID: id, Username: "user-" + id}
	}
	return summaries, nil
}

type mockPostRepository struct {
	createFn      func(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error)
	getByIDFn     func(ctx context.Context, postID string) (*model.Post, error)
	getByIDsFn    func(ctx context.Context, postIDs []string) ([]model.Post, error)
	deleteFn      func(ctx context.Context, postID, userID string) (*model.Post, error)
	listFeedFn    func(ctx context.Context, limit, offset int) ([]model.Post, error)
	listByUserFn  func(ctx context.Context, userID string, limit, offset int) ([]model.Post, error)
	countByUserFn func(ctx context.Context, userID string) (int, error)
	existsFn      func(ctx context.Context, postID string) (bool, error)
	listRecentFn  func(ctx context.Context, limit int) ([]cache.PostScore, error)

	listFeedCalls int
}

func (m *mockPostRepository) Create(ctx context.Context, userID string, req model.CreatePostRequest) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return &model.Post{ID: "p1", UserID: userID, ImageURL: req.ImageURL, Caption: req.Caption, Location: req.Location, CreatedAt: time.Now()}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []string) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	posts := make([]model.Post, len(postIDs))
	for i, id := range postIDs {
		posts[i] = model.Post{ID: id, UserID: "author", ImageURL: "https://img/" + id}
	}
	return posts, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID string) (*model.Post, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) ListFeed(ctx context.Context, limit, offset int) ([]model.Post, error) {
	m.listFeedCalls++
	if m.listFeedFn != nil {
		return m.listFeedFn(ctx, limit, offset)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Post, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit, offset)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return false, nil
}

func (m *mockPostRepository) ListRecent(ctx context.Context, limit int) ([]cache.PostScore, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []cache.PostScore{}, nil
}

type mockLikeRepository struct {
	createFn         func(ctx context.Context, userID, postID string) (*model.Like, error)
	deleteFn         func(ctx context.Context, userID, postID string) error
	existsFn         func(ctx context.Context, userID, postID string) (bool, error)
	countByPostIDsFn func(ctx context.Context, postIDs []string) (map[string]int, error)
	likedSetFn       func(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	listByPostFn     func(ctx context.Context, postID string, limit, offset int) ([]model.Like, error)
	listByUserFn     func(ctx context.Context, userID string, limit, offset int) ([]model.Like, error)
}

func (m *mockLikeRepository) Create(ctx context.Context, userID, postID string) (*model.Like, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, postID)
	}
	return &model.Like{ID: "l1", UserID: userID, PostID: postID, CreatedAt: time.Now()}, nil
}

func (m *mockLikeRepository) Delete(ctx context.Context, userID, postID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, postID)
	}
	return nil
}

func (m *mockLikeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, postID)
	}
	return false, nil
}

func (m *mockLikeRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	if m.countByPostIDsFn != nil {
		return m.countByPostIDsFn(ctx, postIDs)
	}
	return map[string]int{}, nil
}

func (m *mockLikeRepository) LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	if m.likedSetFn != nil {
		return m.likedSetFn(ctx, userID, postIDs)
	}
	liked := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		liked[id] = false
	}
	return liked, nil
}

func (m *mockLikeRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Like, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID, limit, offset)
	}
	return []model.Like{}, nil
}

func (m *mockLikeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Like, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit, offset)
	}
	return []model.Like{}, nil
}

type mockCommentRepository struct {
	createFn         func(ctx context.Context, userID, postID, content string) (*model.Comment, error)
	updateFn         func(ctx context.Context, commentID, userID, content string) (*model.Comment, error)
	deleteFn         func(ctx context.Context, commentID, userID string) (*model.Comment, error)
	listByPostFn     func(ctx context.Context, postID string, limit, offset int) ([]model.Comment, error)
	countByPostIDsFn func(ctx context.Context, postIDs []string) (map[string]int, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, userID, postID, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, postID, content)
	}
	return &model.Comment{ID: "c1", UserID: userID, PostID: postID, Content: content, CreatedAt: time.Now()}, nil
}

func (m *mockCommentRepository) Update(ctx context.Context, commentID, userID, content string) (*model.Comment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, commentID, userID, content)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID, userID string) (*model.Comment, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID, limit, offset)
	}
	return []model.Comment{}, nil
}

func (m *mockCommentRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	if m.countByPostIDsFn != nil {
		return m.countByPostIDsFn(ctx, postIDs)
	}
	return map[string]int{}, nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	deleteFn         func(ctx context.Context, followerID, followingID string) error
	existsFn         func(ctx context.Context, followerID, followingID string) (bool, error)
	countFollowersFn func(ctx context.Context, userID string) (int, error)
	countFollowingFn func(ctx context.Context, userID string) (int, error)

	createCalls int
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followingID)
	}
	return &model.Follow{ID: "f1", FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now()}, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followingID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

type mockFeedIndex struct {
	addFn    func(ctx context.Context, post cache.PostScore) error
	removeFn func(ctx context.Context, postID string) error
	pageFn   func(ctx context.Context, limit, offset int) ([]string, bool, error)
	warmFn   func(ctx context.Context, posts []cache.PostScore) error
	existsFn func(ctx context.Context) (bool, error)

	warmCalls int
}

func (m *mockFeedIndex) Add(ctx context.Context, post cache.PostScore) error {
	if m.addFn != nil {
		return m.addFn(ctx, post)
	}
	return nil
}

func (m *mockFeedIndex) Remove(ctx context.Context, postID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, postID)
	}
	return nil
}

func (m *mockFeedIndex) Page(ctx context.Context, limit, offset int) ([]string, bool, error) {
	if m.pageFn != nil {
		return m.pageFn(ctx, limit, offset)
	}
	return nil, false, nil
}

func (m *mockFeedIndex) Warm(ctx context.Context, posts []cache.PostScore) error {
	m.warmCalls++
	if m.warmFn != nil {
		return m.warmFn(ctx, posts)
	}
	return nil
}

func (m *mockFeedIndex) Exists(ctx context.Context) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx)
	}
	return true, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.FeedEvent) (string, error)

	published []queue.FeedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

// newTestEngagement builds an EngagementService over the given mocks,
// substituting safe defaults for nil.
func newTestEngagement(likeRepo *mockLikeRepository, commentRepo *mockCommentRepository, userRepo *mockUserRepository) *EngagementService {
	if likeRepo == nil {
		likeRepo = &mockLikeRepository{}
	}
	if commentRepo == nil {
		commentRepo = &mockCommentRepository{}
	}
	if userRepo == nil {
		userRepo = &mockUserRepository{}
	}
	return NewEngagementService(likeRepo, commentRepo, userRepo)
}
