// Package transition implements the one-way Open → Applied state change for
// a job posting.
//
// MarkApplied runs as a single database transaction: insert the ledger row,
// flip the posting's applied flag, commit. Either both effects persist or
// neither does. Idempotence is enforced twice: a pre-check inside the
// transaction gives duplicate submissions a clean AlreadyApplied error, and
// the UNIQUE constraint on applied_jobs.job_jk is the backstop when two
// calls for the same job race past the pre-check.
package transition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jobcenter/internal/ledger"
)

// EventChannel is the Redis pub/sub channel notified after each successful
// transition. Delivery is best-effort and never fails the transaction.
const EventChannel = "EVENT_JOB_APPLIED"

// Snapshot carries the denormalized posting fields recorded in the ledger at
// application time.
type Snapshot struct {
	JobKey          string
	JobLink         string
	CompanyName     string
	CompanyLocation string
	Salary          string
	JobType         string
	JobDescription  string
}

// Sentinel errors for the transition engine.
var (
	ErrNotFound       = errors.New("job posting not found")
	ErrAlreadyApplied = errors.New("job already applied")
	// ErrTransitionFailed wraps any transactional failure; the caller sees
	// this single opaque error, never a partial state.
	ErrTransitionFailed = errors.New("mark-applied transaction failed")
)

// Tx is the subset of pgx.Tx the engine uses. pgx.Tx satisfies it; tests
// substitute a staged fake to exercise rollback paths.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens a transaction scope.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// PoolBeginner adapts a pgxpool.Pool to Beginner.
type PoolBeginner struct {
	Pool *pgxpool.Pool
}

func (p PoolBeginner) Begin(ctx context.Context) (Tx, error) {
	return p.Pool.Begin(ctx)
}

// Publisher delivers transition events.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher adapts a redis client to Publisher.
type RedisPublisher struct {
	Client *redis.Client
}

func (r RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.Client.Publish(ctx, channel, payload).Err()
}

// Engine performs the atomic mark-applied transition.
type Engine struct {
	db  Beginner
	pub Publisher
}

// NewEngine returns a configured Engine.
func NewEngine(db Beginner, pub Publisher) *Engine {
	return &Engine{db: db, pub: pub}
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// MarkApplied records an application for the posting identified by
// snap.JobKey and flips the posting's applied flag, atomically. Returns the
// inserted ledger entry with its server-assigned timestamp.
//
// Errors: ErrNotFound when no posting has that key, ErrAlreadyApplied on a
// duplicate submission, ErrTransitionFailed on any other failure. In every
// error case the transaction is rolled back and nothing persists.
func (e *Engine) MarkApplied(ctx context.Context, snap Snapshot) (*ledger.Application, error) {
	if snap.JobKey == "" {
		return nil, &ValidationError{Msg: "jobId is required"}
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrTransitionFailed, err)
	}
	// No-op once committed; unwinds every early return below.
	defer tx.Rollback(ctx)

	// Pre-check inside the transaction: the posting must exist and be open.
	var applied bool
	err = tx.QueryRow(ctx,
		`SELECT applied FROM processed_job WHERE job_jk = $1`,
		snap.JobKey,
	).Scan(&applied)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: posting lookup: %v", ErrTransitionFailed, err)
	}
	if applied {
		return nil, ErrAlreadyApplied
	}

	var app ledger.Application
	err = tx.QueryRow(ctx,
		`INSERT INTO applied_jobs (
			job_jk, job_link, company_name, company_location,
			salary, job_type, job_description, applied_timestamp
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING id, job_jk, job_link, company_name, company_location,
		           salary, job_type, job_description, applied_timestamp`,
		snap.JobKey, snap.JobLink, snap.CompanyName, snap.CompanyLocation,
		snap.Salary, snap.JobType, snap.JobDescription,
	).Scan(
		&app.ID, &app.JobKey, &app.JobLink, &app.CompanyName, &app.CompanyLocation,
		&app.Salary, &app.JobType, &app.JobDescription, &app.AppliedTimestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent call for the same job won the race.
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("%w: ledger insert: %v", ErrTransitionFailed, err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE processed_job SET applied = TRUE WHERE job_jk = $1`,
		snap.JobKey)
	if err != nil {
		return nil, fmt.Errorf("%w: flag update: %v", ErrTransitionFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: posting vanished mid-transaction", ErrTransitionFailed)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrTransitionFailed, err)
	}

	e.publish(ctx, app)
	return &app, nil
}

// publish notifies dashboards of the transition (non-fatal).
func (e *Engine) publish(ctx context.Context, app ledger.Application) {
	event, _ := json.Marshal(map[string]string{
		"type":    EventChannel,
		"jobJk":   app.JobKey,
		"company": app.CompanyName,
		"at":      app.AppliedTimestamp.UTC().Format(time.RFC3339),
	})
	if err := e.pub.Publish(ctx, EventChannel, event); err != nil {
		slog.Warn("publish EVENT_JOB_APPLIED failed", "jobJk", app.JobKey, "err", err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
