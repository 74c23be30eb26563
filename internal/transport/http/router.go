package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pixelgram/internal/handler"
	"pixelgram/internal/httputil"
	authmw "pixelgram/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	LikeHandler    *handler.LikeHandler
	FollowHandler  *handler.FollowHandler
	MediaHandler   *handler.MediaHandler
	JWTSecret      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public user endpoints
	r.Route("/users", func(r chi.Router) {
		r.Get("/search", cfg.UserHandler.Search)
		r.Get("/{id}", cfg.UserHandler.GetProfile)
		r.Get("/{id}/follow-stats", cfg.FollowHandler.Stats)
		r.Get("/{id}/posts", cfg.PostHandler.GetUserPosts)
	})

	// Public post/comment/like reads with optional authentication
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/posts/feed", cfg.PostHandler.GetFeed)
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/posts/{id}", cfg.PostHandler.GetByID)
	r.Get("/comments/post/{postId}", cfg.CommentHandler.GetPostComments)
	r.Get("/likes/post/{postId}", cfg.LikeHandler.GetPostLikes)
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/likes/user/{userId}", cfg.LikeHandler.GetUserLikes)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)

		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		r.Put("/users/{id}", cfg.UserHandler.UpdateProfile)
		r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)
		r.Get("/users/{id}/follow-status", cfg.FollowHandler.Status)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)

		r.Post("/comments", cfg.CommentHandler.Create)
		r.Put("/comments/{id}", cfg.CommentHandler.Update)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

		r.Post("/likes", cfg.LikeHandler.Like)
		r.Delete("/likes/{postId}", cfg.LikeHandler.Unlike)
		r.Get("/likes/status/{postId}", cfg.LikeHandler.Status)

		r.Post("/media/upload", cfg.MediaHandler.UploadPostImage)
		r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
	})

	return r
}
