package sessions

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/player"
)

func sampleSession(id string) Session {
	return Session{
		ID:     id,
		UserID: "12345",
		Course: model.Course{ID: "c1", Title: "T", Category: "C", Slides: []model.Slide{{ID: "s1", Type: model.SlideIntro, Title: "Hi"}}},
		State:  player.State{SlideIndex: 0, Answers: map[int]bool{2: true}},
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	if err := m.Save(ctx, sampleSession("a")); err != nil {
		t.Fatalf("save error: %v", err)
	}
	got, err := m.Get(ctx, "a")
	if err != nil || got.UserID != "12345" {
		t.Fatalf("unexpected session %+v err %v", got, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)
	m.Save(ctx, sampleSession("a"))
	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedisSessions(t *testing.T) {
	addr := os.Getenv("MAHSA_TEST_REDIS")
	if addr == "" {
		t.Skip("MAHSA_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	r := NewRedis(client, time.Minute)
	if err := r.Save(ctx, sampleSession("redis-a")); err != nil {
		t.Fatalf("save error: %v", err)
	}
	got, err := r.Get(ctx, "redis-a")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Course.ID != "c1" || !got.State.Answers[2] {
		t.Fatalf("unexpected session: %+v", got)
	}
	if err := r.Delete(ctx, "redis-a"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := r.Get(ctx, "redis-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
