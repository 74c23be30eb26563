package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pixelgram/internal/httputil"
	"pixelgram/internal/model"
	"pixelgram/internal/service"
	"pixelgram/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile handles GET /users/{id}
// Returns the user with derived post/follower/following counts.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get profile handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteData(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /users/{id}
// Only the profile owner may update it.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	userID := chi.URLParam(r, "id")

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotProfileOwner):
			// Treated as not found so profile ids can't be probed.
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrInvalidUsername),
			errors.Is(err, model.ErrFullNameTooLong),
			errors.Is(err, model.ErrBioTooLong):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already taken")
		default:
			log.Printf("[ERROR] Update profile handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}

// Search handles GET /users/search?q=...&limit=...
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseQueryInt(r, "limit", 0)

	users, err := h.userService.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("[ERROR] Search handler: q=%q err=%v", query, err)
		httputil.WriteInternalError(w, "Failed to search users")
		return
	}

	httputil.WriteData(w, http.StatusOK, users)
}

// parseQueryInt reads an integer query parameter, returning def when the
// parameter is absent or malformed.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
