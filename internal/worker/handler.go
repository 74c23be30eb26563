package worker

import (
	"context"
	"fmt"
	"log"

	"pixelgram/internal/cache"
	"pixelgram/internal/queue"
)

// Handler applies feed events to the feed index.
type Handler struct {
	feedIndex cache.FeedIndex
}

// NewHandler creates a new event handler.
func NewHandler(feedIndex cache.FeedIndex) *Handler {
	return &Handler{feedIndex: feedIndex}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	switch event.Type {
	case queue.EventPostCreated:
		return h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		return h.handlePostDeleted(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handlePostCreated inserts the post into the feed index. The index trims
// itself to its cap, so inserting a post older than everything cached is
// harmless.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.FeedEvent) error {
	score := event.PostCreatedAt
	if score == 0 {
		score = event.Timestamp
	}

	err := h.feedIndex.Add(ctx, cache.PostScore{PostID: event.PostID, Timestamp: score})
	if err != nil {
		return fmt.Errorf("add post to feed index: %w", err)
	}

	log.Printf("[Worker] PostCreated: post=%s indexed", event.PostID)
	return nil
}

// handlePostDeleted removes the post from the feed index. Removing an id
// that was never cached is a no-op.
func (h *Handler) handlePostDeleted(ctx context.Context, event queue.FeedEvent) error {
	if err := h.feedIndex.Remove(ctx, event.PostID); err != nil {
		return fmt.Errorf("remove post from feed index: %w", err)
	}

	log.Printf("[Worker] PostDeleted: post=%s removed from index", event.PostID)
	return nil
}
