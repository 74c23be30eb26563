package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"pixelgram/internal/cache"
	"pixelgram/internal/queue"
	"pixelgram/internal/worker"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHandler_PostCreatedAddsToIndex(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	feedIndex := cache.NewFeedIndex(client)
	handler := worker.NewHandler(feedIndex)

	created := time.Unix(1700000000, 0)
	event := queue.NewPostCreatedEvent("p1", "u1", created)

	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	ids, ok, err := feedIndex.Page(ctx, 10, 0)
	if err != nil || !ok {
		t.Fatalf("Page: ok=%v err=%v", ok, err)
	}
	if len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("ids = %v, want [p1]", ids)
	}
}

func TestHandler_PostDeletedRemovesFromIndex(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	feedIndex := cache.NewFeedIndex(client)
	handler := worker.NewHandler(feedIndex)

	if err := feedIndex.Add(ctx, cache.PostScore{PostID: "p1", Timestamp: 100}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := feedIndex.Add(ctx, cache.PostScore{PostID: "p2", Timestamp: 200}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	event := queue.NewPostDeletedEvent("p1", "u1")
	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	ids, ok, err := feedIndex.Page(ctx, 10, 0)
	if err != nil || !ok {
		t.Fatalf("Page: ok=%v err=%v", ok, err)
	}
	if len(ids) != 1 || ids[0] != "p2" {
		t.Errorf("ids = %v, want [p2]", ids)
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	client := setupRedis(t)
	handler := worker.NewHandler(cache.NewFeedIndex(client))

	err := handler.HandleEvent(context.Background(), queue.FeedEvent{Type: "post_reshared"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestPublishConsumeRoundTrip(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	publisher := queue.NewPublisher(client)
	consumer := queue.NewConsumer(client)

	if err := consumer.EnsureGroup(ctx, queue.StreamFeed, queue.ConsumerGroupFeed); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	// Creating the group again must be a no-op.
	if err := consumer.EnsureGroup(ctx, queue.StreamFeed, queue.ConsumerGroupFeed); err != nil {
		t.Fatalf("EnsureGroup (repeat): %v", err)
	}

	created := time.Unix(1700000000, 0)
	event := queue.NewPostCreatedEvent("p1", "u1", created)
	msgID, err := publisher.Publish(ctx, queue.StreamFeed, event)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if msgID == "" {
		t.Fatal("expected non-empty message id")
	}

	messages, err := consumer.Read(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, "worker-1", 10, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	got := messages[0].Event
	if got.Type != queue.EventPostCreated || got.PostID != "p1" || got.AuthorID != "u1" {
		t.Errorf("event = %+v, want PostCreated p1 by u1", got)
	}
	if got.PostCreatedAt != created.UnixMilli() {
		t.Errorf("PostCreatedAt = %d, want %d", got.PostCreatedAt, created.UnixMilli())
	}

	// Until acked the message stays pending for this consumer.
	pending, err := consumer.ReadPending(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, "worker-1", 10)
	if err != nil {
		t.Fatalf("ReadPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending messages, want 1", len(pending))
	}

	if err := consumer.Ack(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, messages[0].ID); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	pending, err = consumer.ReadPending(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, "worker-1", 10)
	if err != nil {
		t.Fatalf("ReadPending after ack: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending messages after ack, want 0", len(pending))
	}
}

// stuckAckConsumer always has one pending message and fails every ack, so
// the pending entry can never be cleared.
type stuckAckConsumer struct {
	readPendingCalls atomic.Int64
	readCalls        atomic.Int64
}

func (c *stuckAckConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	return nil
}

func (c *stuckAckConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	c.readCalls.Add(1)
	select {
	case <-ctx.Done():
	case <-time.After(block):
	}
	return nil, nil
}

func (c *stuckAckConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]queue.Message, error) {
	c.readPendingCalls.Add(1)
	return []queue.Message{{
		ID:    "1-0",
		Event: queue.NewPostCreatedEvent("p1", "u1", time.Unix(1700000000, 0)),
	}}, nil
}

func (c *stuckAckConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	return errors.New("ack failed")
}

func TestManager_PendingAckFailureDoesNotSpin(t *testing.T) {
	client := setupRedis(t)
	consumer := &stuckAckConsumer{}

	manager := worker.NewManager(consumer, worker.NewHandler(cache.NewFeedIndex(client)), worker.ManagerConfig{
		WorkerCount:  1,
		BatchSize:    10,
		BlockTimeout: 10 * time.Millisecond,
	})

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The worker must give up on the unackable pending batch and move on
	// to the live read loop instead of re-reading it forever.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && consumer.readCalls.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	manager.Stop()

	if consumer.readCalls.Load() == 0 {
		t.Fatal("worker never reached the live read loop")
	}
	if got := consumer.readPendingCalls.Load(); got != 1 {
		t.Errorf("ReadPending called %d times, want 1", got)
	}
}

func TestManager_ProcessesEventsEndToEnd(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	feedIndex := cache.NewFeedIndex(client)
	publisher := queue.NewPublisher(client)
	consumer := queue.NewConsumer(client)

	manager := worker.NewManager(consumer, worker.NewHandler(feedIndex), worker.ManagerConfig{
		WorkerCount:  1,
		BatchSize:    10,
		BlockTimeout: 20 * time.Millisecond,
	})

	// Publish before the workers start; the group reads from "0" so the
	// event is still picked up.
	created := time.Unix(1700000000, 0)
	if err := consumer.EnsureGroup(ctx, queue.StreamFeed, queue.ConsumerGroupFeed); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	if _, err := publisher.Publish(ctx, queue.StreamFeed, queue.NewPostCreatedEvent("p1", "u1", created)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ids, ok, err := feedIndex.Page(ctx, 10, 0)
		if err == nil && ok && len(ids) == 1 && ids[0] == "p1" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("worker did not index the post in time")
}
