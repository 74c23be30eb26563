package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the feed stream
const (
	EventPostCreated = "post_created"
	EventPostDeleted = "post_deleted"
)

// Stream names
const (
	StreamFeed = "stream:feed"
)

// Consumer group name for feed index workers
const (
	ConsumerGroupFeed = "feed_workers"
)

// FeedEvent is published on every post create/delete so the feed index
// can be maintained off the request path.
type FeedEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds when the event occurred

	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`

	// PostCreatedAt is the post's creation time in Unix milliseconds, used
	// as the feed index score (distinct from Timestamp, which is when the
	// event fired). Millisecond precision keeps the index order consistent
	// with the database order for posts created within the same second.
	PostCreatedAt int64 `json:"post_created_at,omitempty"`
}

// NewPostCreatedEvent creates an event for a freshly created post.
// The worker adds the post to the feed index.
func NewPostCreatedEvent(postID, authorID string, createdAt time.Time) FeedEvent {
	return FeedEvent{
		Type:          EventPostCreated,
		Timestamp:     time.Now().UnixMilli(),
		PostID:        postID,
		AuthorID:      authorID,
		PostCreatedAt: createdAt.UnixMilli(),
	}
}

// NewPostDeletedEvent creates an event for a deleted post.
// The worker removes the post from the feed index.
func NewPostDeletedEvent(postID, authorID string) FeedEvent {
	return FeedEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().UnixMilli(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e FeedEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseFeedEvent parses a FeedEvent from Redis stream message values.
func ParseFeedEvent(values map[string]interface{}) (FeedEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return FeedEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event FeedEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return FeedEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
