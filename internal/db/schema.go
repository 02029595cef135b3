package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the persisted layout: the scraped-postings catalog, the
// append-only applications ledger, and the account tables.
//
// applied_jobs.job_jk is UNIQUE; this is the guard that makes mark-applied
// idempotent under racing duplicate submissions.
const schema = `
CREATE TABLE IF NOT EXISTS processed_job (
	id              BIGSERIAL PRIMARY KEY,
	job_jk          TEXT NOT NULL UNIQUE,
	job_title       TEXT NOT NULL,
	company_name    TEXT NOT NULL,
	job_location    TEXT NOT NULL DEFAULT '',
	geo_location    TEXT,
	job_link        TEXT NOT NULL DEFAULT '',
	salary          TEXT,
	job_type        TEXT,
	job_description TEXT,
	post_date       TIMESTAMPTZ,
	scrap_time      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	applied         BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS processed_job_open_idx
	ON processed_job (scrap_time DESC) WHERE applied = FALSE;

CREATE TABLE IF NOT EXISTS applied_jobs (
	id                BIGSERIAL PRIMARY KEY,
	job_jk            TEXT NOT NULL UNIQUE,
	job_link          TEXT NOT NULL DEFAULT '',
	company_name      TEXT NOT NULL DEFAULT '',
	company_location  TEXT NOT NULL DEFAULT '',
	salary            TEXT NOT NULL DEFAULT '',
	job_type          TEXT NOT NULL DEFAULT '',
	job_description   TEXT NOT NULL DEFAULT '',
	applied_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS applied_jobs_ts_idx
	ON applied_jobs (applied_timestamp ASC);

CREATE TABLE IF NOT EXISTS users (
	id       BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id    BIGINT PRIMARY KEY REFERENCES users(id),
	profile    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Bootstrap creates the tables and indexes the service relies on.
// Idempotent: safe to run at every startup.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("schema bootstrap: %w", err)
	}
	return nil
}
