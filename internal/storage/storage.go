package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atenjiha/MAHSA-LEARN/internal/config"
	"github.com/atenjiha/MAHSA-LEARN/internal/db"
	"github.com/atenjiha/MAHSA-LEARN/internal/mongostore"
	"github.com/atenjiha/MAHSA-LEARN/internal/sessions"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Backend is the wired persistence layer: the instrumented (and, with
// Redis, cached) gateway plus the player session store.
type Backend struct {
	Gateway  store.Gateway
	Sessions sessions.Store
	Redis    *redis.Client
	closers  []func()
}

// Open connects the driver named by cfg.StoreDriver and, when REDIS_ADDR is
// set, Redis for caching and player sessions.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	backend := &Backend{}
	gateway, err := backend.openGateway(ctx, cfg)
	if err != nil {
		backend.Close()
		return nil, err
	}
	gateway = store.Instrument(gateway)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			backend.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		backend.Redis = client
		backend.closers = append(backend.closers, func() {
			if err := client.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		})
		gateway = store.NewCached(gateway, client, cfg.CacheTTL)
		backend.Sessions = sessions.NewRedis(client, cfg.PlayerSessionTTL)
	} else {
		backend.Sessions = sessions.NewMemory(cfg.PlayerSessionTTL)
	}

	backend.Gateway = gateway
	return backend, nil
}

func (b *Backend) openGateway(ctx context.Context, cfg config.Config) (store.Gateway, error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connection failed: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		documents := db.NewStore(pool)
		if err := documents.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("db migrate failed: %w", err)
		}
		return documents, nil
	case DriverMongo:
		documents, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		b.closers = append(b.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := documents.Close(closeCtx); err != nil {
				log.Printf("mongo close error: %v", err)
			}
		})
		if err := documents.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo index setup failed: %w", err)
		}
		return documents, nil
	case DriverMemory:
		log.Printf("using in-memory store; data is lost on exit")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
