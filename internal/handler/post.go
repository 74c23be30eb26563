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

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageRequired),
			errors.Is(err, model.ErrCaptionTooLong),
			errors.Is(err, model.ErrLocationTooLong):
			httputil.WriteBadRequest(w, err.Error())
		default:
			log.Printf("[ERROR] Create post handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteData(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/{id}
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	viewerID := middleware.ViewerIDFromContext(r.Context())

	post, err := h.postService.GetByID(r.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%s err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteData(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/{id}
// Returns the deleted post. A post owned by someone else is reported as
// not found.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID := chi.URLParam(r, "id")

	post, err := h.postService.Delete(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Delete post handler: user=%s post=%s err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to delete post")
		return
	}

	httputil.WriteData(w, http.StatusOK, post)
}

// GetFeed handles GET /posts/feed?limit=...&offset=...
func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerIDFromContext(r.Context())
	limit := parseQueryInt(r, "limit", 0)
	offset := parseQueryInt(r, "offset", 0)

	posts, err := h.postService.GetFeed(r.Context(), viewerID, limit, offset)
	if err != nil {
		log.Printf("[ERROR] Get feed handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to get feed")
		return
	}

	httputil.WriteData(w, http.StatusOK, posts)
}

// GetUserPosts handles GET /users/{id}/posts?limit=...&offset=...
// Not personalized: the response carries no viewer like state.
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	limit := parseQueryInt(r, "limit", 0)
	offset := parseQueryInt(r, "offset", 0)

	posts, err := h.postService.GetUserPosts(r.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get user posts handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get user posts")
		return
	}

	httputil.WriteData(w, http.StatusOK, posts)
}
