package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelgram/internal/cache"
	"pixelgram/internal/config"
	"pixelgram/internal/database"
	"pixelgram/internal/handler"
	"pixelgram/internal/queue"
	pgredis "pixelgram/internal/redis"
	"pixelgram/internal/repository"
	"pixelgram/internal/service"
	"pixelgram/internal/worker"
)

// Run wires the full application and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := pgredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Feed index, event stream and workers
	feedIndex := cache.NewFeedIndex(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	manager := worker.NewManager(consumer, worker.NewHandler(feedIndex), worker.ManagerConfig{
		WorkerCount: cfg.FeedWorkerCount,
	})
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start feed workers: %w", err)
	}
	defer manager.Stop()

	// Services
	engagementService := service.NewEngagementService(likeRepo, commentRepo, userRepo)
	postService := service.NewPostService(postRepo, userRepo, engagementService, feedIndex, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo)
	likeService := service.NewLikeService(likeRepo, postRepo, userRepo, engagementService)
	followService := service.NewFollowService(followRepo, userRepo)
	userService := service.NewUserService(userRepo, postRepo, followRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init media service: %w", err)
	}

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		LikeHandler:    handler.NewLikeHandler(likeService),
		FollowHandler:  handler.NewFollowHandler(followService),
		MediaHandler:   handler.NewMediaHandler(mediaService),
		JWTSecret:      cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
