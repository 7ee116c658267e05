package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/config"
	"github.com/atenjiha/MAHSA-LEARN/internal/repository"
	"github.com/atenjiha/MAHSA-LEARN/internal/seed"
	"github.com/atenjiha/MAHSA-LEARN/internal/storage"
)

func main() {
	keep := flag.Bool("keep", false, "only seed when the store has no users")
	flag.Parse()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer backend.Close()

	repo := repository.NewStore(backend.Gateway)
	catalog := seed.Default(time.Now())
	if *keep {
		seeded, err := seed.LoadIfEmpty(ctx, repo, catalog)
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		if !seeded {
			log.Printf("store already has users; nothing to do")
		}
		return
	}
	if err := seed.Load(ctx, repo, catalog, true); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("database seeded successfully")
}
