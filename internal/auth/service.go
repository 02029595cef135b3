package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service handles registration and login against the users table.
type Service struct {
	pool   *pgxpool.Pool
	tokens *TokenIssuer
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool, tokens *TokenIssuer) *Service {
	return &Service{pool: pool, tokens: tokens}
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Register creates a new account and returns its user id.
// Returns ErrDuplicateUser when the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, &ValidationError{Msg: "username and password are required"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`,
		username, hash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// Login verifies the username/password pair and issues a bearer token.
// Unknown usernames and hash mismatches are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	var (
		id   int64
		hash string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, password FROM users WHERE username = $1`,
		username,
	).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(hash, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(id, username)
}
