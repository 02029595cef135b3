// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the job-center server.
type Config struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         []byte
	TokenTTL          time.Duration
	StatsRefreshEvery time.Duration
}

// Load reads environment variables and returns a validated Config.
// A local .env file is honoured when present; real deployments set the
// environment directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttlMinutes := 60
	if s := os.Getenv("TOKEN_TTL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("TOKEN_TTL_MINUTES must be a positive integer, got %q", s)
		}
		ttlMinutes = v
	}

	refreshMinutes := 5
	if s := os.Getenv("STATS_REFRESH_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("STATS_REFRESH_MINUTES must be a positive integer, got %q", s)
		}
		refreshMinutes = v
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	return &Config{
		Port:              port,
		DatabaseURL:       dbURL,
		RedisURL:          redisURL,
		JWTSecret:         []byte(secret),
		TokenTTL:          time.Duration(ttlMinutes) * time.Minute,
		StatsRefreshEvery: time.Duration(refreshMinutes) * time.Minute,
	}, nil
}
