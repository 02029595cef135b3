// Package profile stores the applicant's profile document: contact details,
// work history and job preferences, kept as one JSONB document per user.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists per-user profile documents.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the user's profile document, or an empty object when the user
// has not saved one yet.
func (s *Store) Get(ctx context.Context, userID int64) (json.RawMessage, error) {
	var doc json.RawMessage
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return doc, nil
}

// Put creates or replaces the user's profile document.
func (s *Store) Put(ctx context.Context, userID int64, doc json.RawMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, profile, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET profile = EXCLUDED.profile, updated_at = NOW()`,
		userID, doc)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}
