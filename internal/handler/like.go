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

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Like handles POST /likes
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.LikePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PostID == "" {
		httputil.WriteBadRequest(w, "post_id is required")
		return
	}

	like, err := h.likeService.Like(r.Context(), userID, req.PostID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrAlreadyLiked):
			httputil.WriteConflict(w, "Post already liked")
		default:
			log.Printf("[ERROR] Like handler: user=%s post=%s err=%v", userID, req.PostID, err)
			httputil.WriteInternalError(w, "Failed to like post")
		}
		return
	}

	httputil.WriteData(w, http.StatusCreated, like)
}

// Unlike handles DELETE /likes/{postId}
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID := chi.URLParam(r, "postId")

	if err := h.likeService.Unlike(r.Context(), userID, postID); err != nil {
		if errors.Is(err, model.ErrNotLiked) {
			httputil.WriteNotFound(w, "Like not found")
			return
		}
		log.Printf("[ERROR] Unlike handler: user=%s post=%s err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to unlike post")
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "Post unliked"})
}

// Status handles GET /likes/status/{postId}
func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID := chi.URLParam(r, "postId")

	liked, err := h.likeService.Status(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Like status handler: user=%s post=%s err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to get like status")
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]bool{"is_liked": liked})
}

// GetPostLikes handles GET /likes/post/{postId}?limit=...&offset=...
func (h *LikeHandler) GetPostLikes(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")
	limit := parseQueryInt(r, "limit", 0)
	offset := parseQueryInt(r, "offset", 0)

	likes, err := h.likeService.GetPostLikes(r.Context(), postID, limit, offset)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post likes handler: post=%s err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get likes")
		return
	}

	httputil.WriteData(w, http.StatusOK, likes)
}

// GetUserLikes handles GET /likes/user/{userId}?limit=...&offset=...
func (h *LikeHandler) GetUserLikes(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	viewerID := middleware.ViewerIDFromContext(r.Context())
	limit := parseQueryInt(r, "limit", 0)
	offset := parseQueryInt(r, "offset", 0)

	likes, err := h.likeService.GetUserLikes(r.Context(), userID, viewerID, limit, offset)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get user likes handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get likes")
		return
	}

	httputil.WriteData(w, http.StatusOK, likes)
}
