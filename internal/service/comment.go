package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pixelgram/internal/model"
	"pixelgram/internal/repository"
)

const (
	// CommentDefaultLimit is the default number of comments per page
	CommentDefaultLimit = 50

	// CommentMaxLimit is the maximum number of comments per page
	CommentMaxLimit = 100
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// Create validates and stores a comment on an existing post.
func (s *CommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	exists, err := s.postRepo.Exists(ctx, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comment, err := s.commentRepo.Create(ctx, userID, req.PostID, content)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.attachAuthor(ctx, comment)
	return comment, nil
}

// Update edits the caller's own comment. The update predicate carries the
// ownership check, so another user's comment reads as not found.
func (s *CommentService) Update(ctx context.Context, commentID, userID string, req model.UpdateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	comment, err := s.commentRepo.Update(ctx, commentID, userID, content)
	if err != nil {
		return nil, err
	}

	s.attachAuthor(ctx, comment)
	return comment, nil
}

// Delete removes the caller's own comment and returns the deleted row.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) (*model.Comment, error) {
	return s.commentRepo.Delete(ctx, commentID, userID)
}

// GetPostComments returns one page of a post's comments, oldest first so
// conversations read top-down.
func (s *CommentService) GetPostComments(ctx context.Context, postID string, limit, offset int) ([]model.Comment, error) {
	if limit <= 0 {
		limit = CommentDefaultLimit
	}
	if limit > CommentMaxLimit {
		limit = CommentMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

// attachAuthor fills in the comment's author fragment; a failed lookup is
// logged and leaves the fragment empty.
func (s *CommentService) attachAuthor(ctx context.Context, comment *model.Comment) {
	summaries, err := s.userRepo.GetSummaries(ctx, []string{comment.UserID})
	if err != nil {
		log.Printf("[CommentService] Failed to load author %s: %v", comment.UserID, err)
		return
	}
	if a, ok := summaries[comment.UserID]; ok {
		comment.Author = &a
	}
}
