package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atenjiha/MAHSA-LEARN/internal/metrics"
)

// Cached is a read-through Redis cache in front of a Gateway. Cache keys
// carry a per-kind generation that is bumped after every confirmed write,
// so a fill racing a write lands on a generation no reader asks for again.
// Redis failures fall back to the wrapped gateway.
type Cached struct {
	next  Gateway
	redis *redis.Client
	ttl   time.Duration
}

func NewCached(next Gateway, client *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{next: next, redis: client, ttl: ttl}
}

func generationKey(kind Kind) string {
	return fmt.Sprintf("mahsa:gen:%s", kind)
}

func docKey(kind Kind, gen int64, id string) string {
	return fmt.Sprintf("mahsa:doc:%s:%d:%s", kind, gen, id)
}

func listKey(kind Kind, gen int64) string {
	return fmt.Sprintf("mahsa:list:%s:%d", kind, gen)
}

// generation reports false when Redis cannot be read; callers then bypass
// the cache entirely.
func (c *Cached) generation(ctx context.Context, kind Kind) (int64, bool) {
	gen, err := c.redis.Get(ctx, generationKey(kind)).Int64()
	if err == nil {
		return gen, true
	}
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	log.Printf("cache read error: %v", err)
	return 0, false
}

func (c *Cached) FindAll(ctx context.Context, kind Kind) ([][]byte, error) {
	gen, ok := c.generation(ctx, kind)
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return c.next.FindAll(ctx, kind)
	}
	key := listKey(kind, gen)
	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var docs []json.RawMessage
		if err := json.Unmarshal(raw, &docs); err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			out := make([][]byte, len(docs))
			for i, doc := range docs {
				out[i] = []byte(doc)
			}
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("cache read error: %v", err)
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	docs, err := c.next.FindAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	raws := make([]json.RawMessage, len(docs))
	for i, doc := range docs {
		raws[i] = doc
	}
	if payload, err := json.Marshal(raws); err == nil {
		c.set(ctx, key, payload)
	}
	return docs, nil
}

func (c *Cached) FindOne(ctx context.Context, kind Kind, id string) ([]byte, error) {
	gen, ok := c.generation(ctx, kind)
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return c.next.FindOne(ctx, kind, id)
	}
	key := docKey(kind, gen, id)
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return raw, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Printf("cache read error: %v", err)
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	doc, err := c.next.FindOne(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, doc)
	return doc, nil
}

func (c *Cached) Insert(ctx context.Context, kind Kind, id string, doc []byte) ([]byte, error) {
	stored, err := c.next.Insert(ctx, kind, id, doc)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, kind)
	return stored, nil
}

func (c *Cached) Replace(ctx context.Context, kind Kind, id string, doc []byte) ([]byte, error) {
	stored, err := c.next.Replace(ctx, kind, id, doc)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, kind)
	return stored, nil
}

func (c *Cached) Delete(ctx context.Context, kind Kind, id string) error {
	if err := c.next.Delete(ctx, kind, id); err != nil {
		return err
	}
	c.invalidate(ctx, kind)
	return nil
}

func (c *Cached) DeleteAll(ctx context.Context, kind Kind) error {
	if err := c.next.DeleteAll(ctx, kind); err != nil {
		return err
	}
	c.invalidate(ctx, kind)
	return nil
}

func (c *Cached) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *Cached) set(ctx context.Context, key string, value []byte) {
	if err := c.redis.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Printf("cache write error: %v", err)
	}
}

// invalidate moves the kind to a new generation. Entries of older
// generations are left to expire with their TTL.
func (c *Cached) invalidate(ctx context.Context, kind Kind) {
	if err := c.redis.Incr(ctx, generationKey(kind)).Err(); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
