package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pixelgram/internal/httputil"
	"pixelgram/internal/model"
	"pixelgram/internal/service"
	"pixelgram/internal/transport/http/middleware"
)

type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidUsername):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrFullNameTooLong):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already taken")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		default:
			log.Printf("[ERROR] Register handler: username=%s err=%v", req.Username, err)
			httputil.WriteBadRequest(w, "Failed to register")
		}
		return
	}

	pair, err := h.authService.GenerateTokenPair(r.Context(), user.ID)
	if err != nil {
		log.Printf("[ERROR] Register handler: token pair for user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to issue tokens")
		return
	}

	httputil.WriteData(w, http.StatusCreated, model.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid username or password")
			return
		}
		log.Printf("[ERROR] Login handler: username=%s err=%v", req.Username, err)
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	pair, err := h.authService.GenerateTokenPair(r.Context(), user.ID)
	if err != nil {
		log.Printf("[ERROR] Login handler: token pair for user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to issue tokens")
		return
	}

	httputil.WriteData(w, http.StatusOK, model.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httputil.WriteBadRequest(w, "refresh_token is required")
		return
	}

	pair, _, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound),
			errors.Is(err, model.ErrRefreshTokenExpired),
			errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		default:
			log.Printf("[ERROR] Refresh handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	httputil.WriteData(w, http.StatusOK, pair)
}

// Logout handles POST /auth/logout
// Revokes the presented refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httputil.WriteBadRequest(w, "refresh_token is required")
		return
	}

	if err := h.authService.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, model.ErrRefreshTokenNotFound) {
			// Already gone; logout is idempotent.
			httputil.WriteData(w, http.StatusOK, map[string]string{"message": "Logged out"})
			return
		}
		log.Printf("[ERROR] Logout handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to log out")
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// LogoutAll handles POST /auth/logout-all
// Revokes every refresh token for the authenticated user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.authService.RevokeAllUserTokens(r.Context(), userID); err != nil {
		log.Printf("[ERROR] LogoutAll handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to log out")
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "Logged out everywhere"})
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Me handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}
