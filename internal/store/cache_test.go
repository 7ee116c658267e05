package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func openTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("MAHSA_TEST_REDIS")
	if addr == "" {
		t.Skip("MAHSA_TEST_REDIS not set")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
		return nil
	}
	return client
}

func TestCachedInvalidatesOnWrite(t *testing.T) {
	client := openTestRedis(t)
	if client == nil {
		return
	}
	defer client.Close()
	ctx := context.Background()

	backing := NewMemory()
	cached := NewCached(backing, client, time.Minute)
	if err := cached.DeleteAll(ctx, KindCourses); err != nil {
		t.Fatalf("delete all error: %v", err)
	}

	if _, err := cached.Insert(ctx, KindCourses, "c1", []byte(`{"id":"c1","title":"A"}`)); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	doc, err := cached.FindOne(ctx, KindCourses, "c1")
	if err != nil || string(doc) != `{"id":"c1","title":"A"}` {
		t.Fatalf("unexpected read %s err %v", doc, err)
	}
	all, err := cached.FindAll(ctx, KindCourses)
	if err != nil || len(all) != 1 {
		t.Fatalf("unexpected list %q err %v", all, err)
	}

	if _, err := cached.Replace(ctx, KindCourses, "c1", []byte(`{"id":"c1","title":"B"}`)); err != nil {
		t.Fatalf("replace error: %v", err)
	}
	doc, err = cached.FindOne(ctx, KindCourses, "c1")
	if err != nil || string(doc) != `{"id":"c1","title":"B"}` {
		t.Fatalf("expected fresh read after replace, got %s err %v", doc, err)
	}

	if _, err := cached.Insert(ctx, KindCourses, "c2", []byte(`{"id":"c2"}`)); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	all, _ = cached.FindAll(ctx, KindCourses)
	if len(all) != 2 {
		t.Fatalf("expected list to be invalidated, got %d", len(all))
	}
}

// pausedGateway blocks FindOne after reading so a write can land between
// the backing read and the cache fill.
type pausedGateway struct {
	Gateway
	loaded  chan struct{}
	release chan struct{}
}

func (g *pausedGateway) FindOne(ctx context.Context, kind Kind, id string) ([]byte, error) {
	doc, err := g.Gateway.FindOne(ctx, kind, id)
	g.loaded <- struct{}{}
	<-g.release
	return doc, err
}

func TestCachedFillRacingWriteDoesNotStick(t *testing.T) {
	client := openTestRedis(t)
	if client == nil {
		return
	}
	defer client.Close()
	ctx := context.Background()

	backing := NewMemory()
	if _, err := backing.Insert(ctx, KindUsers, "u1", []byte(`{"id":"u1","xp":0}`)); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	paused := &pausedGateway{Gateway: backing, loaded: make(chan struct{}), release: make(chan struct{})}
	slow := NewCached(paused, client, time.Minute)
	fast := NewCached(backing, client, time.Minute)
	client.Incr(ctx, generationKey(KindUsers))

	done := make(chan []byte)
	go func() {
		doc, _ := slow.FindOne(ctx, KindUsers, "u1")
		done <- doc
	}()
	<-paused.loaded
	if _, err := fast.Replace(ctx, KindUsers, "u1", []byte(`{"id":"u1","xp":50}`)); err != nil {
		t.Fatalf("replace error: %v", err)
	}
	close(paused.release)
	if stale := <-done; string(stale) != `{"id":"u1","xp":0}` {
		t.Fatalf("expected the racing read to see the old document, got %s", stale)
	}

	doc, err := fast.FindOne(ctx, KindUsers, "u1")
	if err != nil || string(doc) != `{"id":"u1","xp":50}` {
		t.Fatalf("expected the replaced document after a racing fill, got %s err %v", doc, err)
	}
}

func TestCachedKeepsEntryOnFailedWrite(t *testing.T) {
	client := openTestRedis(t)
	if client == nil {
		return
	}
	defer client.Close()
	ctx := context.Background()

	cached := NewCached(NewMemory(), client, time.Minute)
	cached.DeleteAll(ctx, KindBadges)
	if _, err := cached.Replace(ctx, KindBadges, "missing", []byte(`{}`)); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
