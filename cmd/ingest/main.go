// jobcenter-ingest
//
// Loads a JSON file of scraped job postings into the processed_job catalog.
// Rows are deduplicated on the public job key: a posting whose job_jk is
// already present is skipped, so re-running an ingest file is harmless.
// Postings without a job_jk get a generated one.
//
// Usage:
//
//	jobcenter-ingest -file postings.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"jobcenter/internal/db"
)

// posting mirrors one entry of the ingest file. Field names match the
// processed_job columns.
type posting struct {
	JobKey         string     `json:"job_jk"`
	JobTitle       string     `json:"job_title"`
	CompanyName    string     `json:"company_name"`
	JobLocation    string     `json:"job_location"`
	GeoLocation    string     `json:"geo_location"`
	JobLink        string     `json:"job_link"`
	Salary         string     `json:"salary"`
	JobType        string     `json:"job_type"`
	JobDescription string     `json:"job_description"`
	PostDate       *time.Time `json:"post_date"`
}

func main() {
	file := flag.String("file", "", "path to a JSON array of postings")
	flag.Parse()
	if *file == "" {
		log.Fatal("[ingest] -file is required")
	}

	_ = godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("[ingest] DATABASE_URL is required")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("[ingest] Read %s: %v", *file, err)
	}

	var postings []posting
	if err := json.Unmarshal(raw, &postings); err != nil {
		log.Fatalf("[ingest] Parse %s: %v", *file, err)
	}
	if len(postings) == 0 {
		log.Println("[ingest] Nothing to do: empty file")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("[ingest] PostgreSQL: %v", err)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		log.Fatalf("[ingest] Schema: %v", err)
	}

	var inserted, dupes, skipped int
	for _, p := range postings {
		if p.JobTitle == "" || p.CompanyName == "" {
			skipped++
			continue
		}
		if p.JobKey == "" {
			p.JobKey = uuid.NewString()
		}

		tag, err := pool.Exec(ctx,
			`INSERT INTO processed_job (
				job_jk, job_title, company_name, job_location, geo_location,
				job_link, salary, job_type, job_description, post_date
			 ) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)
			 ON CONFLICT (job_jk) DO NOTHING`,
			p.JobKey, p.JobTitle, p.CompanyName, p.JobLocation, p.GeoLocation,
			p.JobLink, p.Salary, p.JobType, p.JobDescription, p.PostDate,
		)
		if err != nil {
			log.Printf("[ingest] Insert %s failed: %v, continuing", p.JobKey, err)
			continue
		}
		if tag.RowsAffected() == 0 {
			dupes++
		} else {
			inserted++
		}
	}

	log.Printf("[ingest] Done: inserted=%d duplicates=%d skipped=%d", inserted, dupes, skipped)
}
