// Package ledger reads the applied_jobs table: the append-only audit trail
// of applications. Rows are inserted only by the transition engine and are
// never mutated or deleted.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Application is one ledger entry: a denormalized snapshot of the posting at
// the time of application plus the server-assigned timestamp.
type Application struct {
	ID               int64     `json:"id"`
	JobKey           string    `json:"job_jk"`
	JobLink          string    `json:"job_link"`
	CompanyName      string    `json:"company_name"`
	CompanyLocation  string    `json:"company_location"`
	Salary           string    `json:"salary"`
	JobType          string    `json:"job_type"`
	JobDescription   string    `json:"job_description"`
	AppliedTimestamp time.Time `json:"applied_timestamp"`
}

// Store reads the ledger.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListApplied returns all ledger entries, oldest application first;
// chronological history, the reverse convention of the catalog listing.
func (s *Store) ListApplied(ctx context.Context) ([]Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_jk, job_link, company_name, company_location,
		        salary, job_type, job_description, applied_timestamp
		 FROM applied_jobs
		 ORDER BY applied_timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("list applied query: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		var a Application
		if err := rows.Scan(
			&a.ID, &a.JobKey, &a.JobLink, &a.CompanyName, &a.CompanyLocation,
			&a.Salary, &a.JobType, &a.JobDescription, &a.AppliedTimestamp,
		); err != nil {
			return nil, fmt.Errorf("list applied scan: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// CountApplied counts ledger entries.
func (s *Store) CountApplied(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applied_jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applied: %w", err)
	}
	return n, nil
}

// IsApplied reports whether a ledger entry exists for the given job key.
func (s *Store) IsApplied(ctx context.Context, jobKey string) (bool, error) {
	var applied bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applied_jobs WHERE job_jk = $1)`,
		jobKey,
	).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("is applied: %w", err)
	}
	return applied, nil
}
