package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
	"github.com/atenjiha/MAHSA-LEARN/internal/config"
	learngrpc "github.com/atenjiha/MAHSA-LEARN/internal/grpc"
	internalhttp "github.com/atenjiha/MAHSA-LEARN/internal/http"
	"github.com/atenjiha/MAHSA-LEARN/internal/jobs"
	"github.com/atenjiha/MAHSA-LEARN/internal/repository"
	"github.com/atenjiha/MAHSA-LEARN/internal/seed"
	"github.com/atenjiha/MAHSA-LEARN/internal/storage"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer backend.Close()

	repo := repository.NewStore(backend.Gateway)
	if cfg.SeedOnStart {
		seeded, err := seed.LoadIfEmpty(ctx, repo, seed.Default(time.Now()))
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		if seeded {
			log.Printf("seeded empty store with default catalog")
		}
	}
	service := app.NewService(repo, backend.Sessions)

	server := internalhttp.NewServer(cfg, service)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, healthServer, err := learngrpc.NewServer(cfg)
	if err != nil {
		log.Fatalf("grpc init failed: %v", err)
	}
	jobs.StartHealthProbeJob(ctx, cfg, service, healthServer, learngrpc.ServiceName)
	if _, err := jobs.StartStreakBadgeJob(ctx, cfg, service); err != nil {
		log.Fatalf("streak badge job init failed: %v", err)
	}

	go func() {
		log.Printf("mahsa http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	go func() {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen error: %v", err)
		}
		log.Printf("mahsa grpc listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatalf("grpc server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	healthServer.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	grpcServer.GracefulStop()
}
