package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pixelgram/internal/httputil"
	"pixelgram/internal/model"
	"pixelgram/internal/service"
	"pixelgram/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow handles POST /users/{id}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followingID := chi.URLParam(r, "id")

	follow, err := h.followService.Follow(r.Context(), followerID, followingID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, "Already following this user")
		default:
			log.Printf("[ERROR] Follow handler: follower=%s following=%s err=%v", followerID, followingID, err)
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteData(w, http.StatusCreated, follow)
}

// Unfollow handles DELETE /users/{id}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followingID := chi.URLParam(r, "id")

	if err := h.followService.Unfollow(r.Context(), followerID, followingID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot unfollow yourself")
		case errors.Is(err, model.ErrNotFollowing):
			httputil.WriteNotFound(w, "Not following this user")
		default:
			log.Printf("[ERROR] Unfollow handler: follower=%s following=%s err=%v", followerID, followingID, err)
			httputil.WriteInternalError(w, "Failed to unfollow user")
		}
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

// Status handles GET /users/{id}/follow-status
func (h *FollowHandler) Status(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followingID := chi.URLParam(r, "id")

	following, err := h.followService.IsFollowing(r.Context(), followerID, followingID)
	if err != nil {
		log.Printf("[ERROR] Follow status handler: follower=%s following=%s err=%v", followerID, followingID, err)
		httputil.WriteInternalError(w, "Failed to get follow status")
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]bool{"is_following": following})
}

// Stats handles GET /users/{id}/follow-stats
func (h *FollowHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	stats, err := h.followService.Stats(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] Follow stats handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get follow stats")
		return
	}

	httputil.WriteData(w, http.StatusOK, stats)
}
