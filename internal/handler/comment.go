package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pixelgram/internal/httputil"
	"pixelgram/internal/model"
	"pixelgram/internal/service"
	"pixelgram/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create handles POST /comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired),
			errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Create comment handler: user=%s post=%s err=%v", userID, req.PostID, err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteData(w, http.StatusCreated, comment)
}

// Update handles PUT /comments/{id}
// Only the comment author may edit; someone else's comment reads as not
// found.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID := chi.URLParam(r, "id")

	var req model.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Update(r.Context(), commentID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired),
			errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		default:
			log.Printf("[ERROR] Update comment handler: user=%s comment=%s err=%v", userID, commentID, err)
			httputil.WriteInternalError(w, "Failed to update comment")
		}
		return
	}

	httputil.WriteData(w, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{id}
// Returns the deleted comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID := chi.URLParam(r, "id")

	comment, err := h.commentService.Delete(r.Context(), commentID, userID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] Delete comment handler: user=%s comment=%s err=%v", userID, commentID, err)
		httputil.WriteInternalError(w, "Failed to delete comment")
		return
	}

	httputil.WriteData(w, http.StatusOK, comment)
}

// GetPostComments handles GET /comments/post/{postId}?limit=...&offset=...
// Comments come back oldest first.
func (h *CommentHandler) GetPostComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")
	limit := parseQueryInt(r, "limit", 0)
	offset := parseQueryInt(r, "offset", 0)

	comments, err := h.commentService.GetPostComments(r.Context(), postID, limit, offset)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post comments handler: post=%s err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteData(w, http.StatusOK, comments)
}
