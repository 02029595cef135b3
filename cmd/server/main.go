// jobcenter server
//
// REST backend for the personal job-application tracker:
//   - account registration and login (bcrypt + JWT bearer tokens)
//   - open-postings catalog with location filtering and paging
//   - atomic mark-applied transition into the applications ledger
//   - dashboard counts, cached in Redis and refreshed on a cron schedule
//
// Publishes EVENT_JOB_APPLIED to Redis after each successful transition.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobcenter/internal/api"
	"jobcenter/internal/auth"
	"jobcenter/internal/catalog"
	"jobcenter/internal/config"
	"jobcenter/internal/db"
	"jobcenter/internal/ledger"
	"jobcenter/internal/profile"
	"jobcenter/internal/stats"
	"jobcenter/internal/transition"
)

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobcenter] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[jobcenter] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[jobcenter] PostgreSQL: %v", err)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		log.Fatalf("[jobcenter] Schema: %v", err)
	}
	log.Println("[jobcenter] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[jobcenter] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[jobcenter] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[jobcenter] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := auth.NewService(pool, tokens)
	cat := catalog.NewStore(pool)
	led := ledger.NewStore(pool)
	engine := transition.NewEngine(
		transition.PoolBeginner{Pool: pool},
		transition.RedisPublisher{Client: rdb},
	)
	counts := stats.New(pool, rdb, cfg.StatsRefreshEvery)
	profiles := profile.NewStore(pool)

	refresher := stats.NewRefresher(counts, cfg.StatsRefreshEvery)
	if err := refresher.Start(ctx); err != nil {
		log.Fatalf("[jobcenter] Stats refresher: %v", err)
	}
	defer refresher.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := api.NewHandler(cat, led, engine, accounts, tokens, counts, profiles)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[jobcenter] v%s listening on :%s", api.Version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[jobcenter] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[jobcenter] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobcenter] Shutdown error: %v", err)
	}
	log.Println("[jobcenter] Stopped.")
}
