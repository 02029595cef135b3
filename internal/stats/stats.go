// Package stats serves the job-center dashboard counters. Counts are cached
// in Redis with a short TTL so the dashboard does not hit Postgres on every
// page load; a cron refresher keeps the cache warm.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	keyApplied = "jobcenter:count:applied"
	keyOpen    = "jobcenter:count:open"
)

// Service computes and caches the open/applied counts.
type Service struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	ttl  time.Duration
}

// New returns a Service caching counts for ttl.
func New(pool *pgxpool.Pool, rdb *redis.Client, ttl time.Duration) *Service {
	return &Service{pool: pool, rdb: rdb, ttl: ttl}
}

// CountApplied returns the number of ledger entries.
func (s *Service) CountApplied(ctx context.Context) (int, error) {
	return s.cached(ctx, keyApplied, `SELECT COUNT(*) FROM applied_jobs`)
}

// CountOpen returns the number of postings still open for application.
func (s *Service) CountOpen(ctx context.Context) (int, error) {
	return s.cached(ctx, keyOpen, `SELECT COUNT(*) FROM processed_job WHERE applied = FALSE`)
}

// cached serves from Redis when fresh, otherwise queries Postgres and
// repopulates the cache. A cache write failure is non-fatal: the count is
// still correct, just not cached.
func (s *Service) cached(ctx context.Context, key, query string) (int, error) {
	if v, err := s.rdb.Get(ctx, key).Int(); err == nil {
		return v, nil
	}

	var n int
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	if err := s.rdb.Set(ctx, key, n, s.ttl).Err(); err != nil {
		slog.Warn("stats cache set failed", "key", key, "err", err)
	}
	return n, nil
}

// Refresh recomputes both counters, bypassing whatever is cached.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.rdb.Del(ctx, keyApplied, keyOpen).Err(); err != nil {
		return fmt.Errorf("stats cache invalidate: %w", err)
	}
	if _, err := s.CountApplied(ctx); err != nil {
		return err
	}
	if _, err := s.CountOpen(ctx); err != nil {
		return err
	}
	return nil
}
