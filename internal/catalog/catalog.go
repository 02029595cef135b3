// Package catalog is the store of scraped job postings. Postings arrive from
// an external ingestion process; this service only reads them and flips the
// applied flag (via the transition engine), never deletes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobPosting is a row of the processed_job table. The job_jk key is the
// stable public identifier across scrapes, distinct from the database id.
type JobPosting struct {
	ID             int64      `json:"id"`
	JobKey         string     `json:"job_jk"`
	JobTitle       string     `json:"job_title"`
	CompanyName    string     `json:"company_name"`
	JobLocation    string     `json:"job_location"`
	Geo            *Point     `json:"geo,omitempty"`
	JobLink        string     `json:"job_link"`
	Salary         string     `json:"salary,omitempty"`
	JobType        string     `json:"job_type,omitempty"`
	JobDescription string     `json:"job_description"`
	PostDate       *time.Time `json:"post_date,omitempty"`
	ScrapTime      time.Time  `json:"scrap_time"`
	Applied        bool       `json:"applied"`
}

// ErrNotFound is returned when no posting has the requested public key.
var ErrNotFound = errors.New("job posting not found")

// Store reads the postings catalog.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const postingColumns = `
	id, job_jk, job_title, company_name, job_location, COALESCE(geo_location, ''),
	job_link, COALESCE(salary, ''), COALESCE(job_type, ''),
	COALESCE(job_description, ''), post_date, scrap_time, applied`

// List returns open postings (applied = FALSE) matching the filter, most
// recently scraped first.
func (s *Store) List(ctx context.Context, f Filter) ([]JobPosting, error) {
	base := `SELECT` + postingColumns + `
		FROM processed_job
		WHERE applied = FALSE`

	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case f == FilterAll:
		rows, err = s.pool.Query(ctx, base+` ORDER BY scrap_time DESC`)
	case f == FilterRemote:
		rows, err = s.pool.Query(ctx, base+` AND job_location ILIKE '%remote%' ORDER BY scrap_time DESC`)
	default:
		// Best-effort substring match on the region code, same as Filter.Matches.
		rows, err = s.pool.Query(ctx,
			base+` AND job_location LIKE '%' || $1 || '%' ORDER BY scrap_time DESC`,
			string(f))
	}
	if err != nil {
		return nil, fmt.Errorf("list postings query: %w", err)
	}
	defer rows.Close()

	jobs := make([]JobPosting, 0)
	for rows.Next() {
		job, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("list postings scan: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// GetByKey returns a single posting by its public job key, applied or not.
func (s *Store) GetByKey(ctx context.Context, key string) (*JobPosting, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+postingColumns+` FROM processed_job WHERE job_jk = $1`, key)

	job, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get posting: %w", err)
	}
	return &job, nil
}

// CountOpen counts postings still open for application.
func (s *Store) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM processed_job WHERE applied = FALSE`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open postings: %w", err)
	}
	return n, nil
}

func scanPosting(row pgx.Row) (JobPosting, error) {
	var (
		job JobPosting
		geo string
	)
	err := row.Scan(
		&job.ID, &job.JobKey, &job.JobTitle, &job.CompanyName, &job.JobLocation,
		&geo, &job.JobLink, &job.Salary, &job.JobType, &job.JobDescription,
		&job.PostDate, &job.ScrapTime, &job.Applied,
	)
	if err != nil {
		return JobPosting{}, err
	}
	if p, ok := ParsePoint(geo); ok {
		job.Geo = &p
	}
	return job, nil
}
