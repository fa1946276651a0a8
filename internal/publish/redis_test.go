package publish

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedis_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pub, err := NewRedis(ctx, RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer pub.Close()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()}).Subscribe(ctx, "live_board:1")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe confirmation error = %v", err)
	}

	if err := pub.Publish(ctx, "live_board:1", []byte(`{"match_id":1}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Channel != "live_board:1" {
			t.Errorf("Channel = %q, want %q", msg.Channel, "live_board:1")
		}
		if msg.Payload != `{"match_id":1}` {
			t.Errorf("Payload = %q, want %q", msg.Payload, `{"match_id":1}`)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive message")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedis(ctx, RedisOptions{Addr: addr}); err == nil {
		t.Fatal("NewRedis() expected error for closed server, got nil")
	}
}

func TestRedis_PublishAfterServerGone(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pub, err := NewRedis(ctx, RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer pub.Close()

	mr.Close()

	tctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pub.Publish(tctx, "live_board:1", []byte(`{}`)); err == nil {
		t.Error("Publish() expected error after server shutdown, got nil")
	}
}
