package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/citamed/citamed-scheduling/internal/booking"
	"github.com/citamed/citamed-scheduling/internal/clock"
	"github.com/citamed/citamed-scheduling/internal/config"
	"github.com/citamed/citamed-scheduling/internal/db"
)

// The cleanup worker cancels pending appointments whose slot came and went
// without a confirmation, so abandoned bookings stop occupying history.

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("cleanup-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running cleanup worker in env=%s interval=%s pending_ttl=%s", cfg.Env, cfg.WorkerInterval, cfg.PendingTTL)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	cleaner := booking.NewCleaner(booking.NewPgRepository(pgPool), clock.System())

	// Run once at startup
	runOnce(rootCtx, cleaner, cfg.PendingTTL)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping cleanup worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, cleaner, cfg.PendingTTL)
		}
	}
}

func runOnce(ctx context.Context, cleaner *booking.Cleaner, pendingTTL time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := cleaner.CancelStalePending(runCtx, pendingTTL); err != nil {
		log.Printf("cleanup run error: %v", err)
		return
	}
	log.Printf("cleanup run complete in %s", time.Since(start))
}
