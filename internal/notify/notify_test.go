package notify

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestBrokerFanOut(t *testing.T) {
	ctx := context.Background()
	b := NewBroker()
	a := b.Subscribe("ROOM01")
	c := b.Subscribe("ROOM01")
	other := b.Subscribe("ROOM02")

	b.Publish(ctx, "ROOM01", []byte("v2"))

	for _, ch := range []chan []byte{a, c} {
		select {
		case got := <-ch:
			if string(got) != "v2" {
				t.Errorf("got %q, want v2", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive payload")
		}
	}
	select {
	case got := <-other:
		t.Errorf("other room received %q", got)
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("ROOM01")
	if n := b.Subscribers("ROOM01"); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
	b.Unsubscribe("ROOM01", ch)
	if n := b.Subscribers("ROOM01"); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
	b.Publish(context.Background(), "ROOM01", []byte("ignored"))
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("ROOM01")
	done := make(chan struct{})
	go func() {
		for range 100 {
			b.Publish(context.Background(), "ROOM01", []byte("x"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffer holds %d, want %d", len(ch), cap(ch))
	}
}

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   0,
	})
}

func TestRedisUnreachable(t *testing.T) {
	ctx := context.Background()
	r := NewRedis(deadRedis(), slog.Default())

	if err := r.Check(ctx); err == nil {
		t.Error("check against a dead redis succeeded")
	}
	if err := r.Publish(ctx, "ROOM01", []byte("x")); err == nil {
		t.Error("publish against a dead redis succeeded")
	}
}
