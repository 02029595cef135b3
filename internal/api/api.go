// Package api implements the HTTP surface of the job center.
//
// Routes (bearer-token-authenticated unless noted):
//
//	POST /login                      → issue access token
//	POST /register                   → create account
//	GET  /job-listings               → open postings, optionally filtered/paged
//	GET  /job-listings/:job_jk       → single posting by public key
//	POST /mark-applied               → atomic open → applied transition
//	GET  /applied-jobs               → application history, oldest first
//	GET  /applied-jobs-count         → ledger size
//	GET  /unapplied-jobs-count       → open-catalog size
//	GET  /check-applied/:job_jk      → applied flag lookup (no auth)
//	GET  /user-info, PUT /user-info  → applicant profile document
//	GET  /health                     → liveness (no auth)
package api

import (
	"context"
	"encoding/json"

	"jobcenter/internal/auth"
	"jobcenter/internal/catalog"
	"jobcenter/internal/ledger"
	"jobcenter/internal/transition"
)

// The handler depends on small interfaces rather than the concrete services
// so transports and tests can swap implementations.

// Catalog reads open job postings.
type Catalog interface {
	List(ctx context.Context, f catalog.Filter) ([]catalog.JobPosting, error)
	GetByKey(ctx context.Context, key string) (*catalog.JobPosting, error)
}

// Ledger reads the application history.
type Ledger interface {
	ListApplied(ctx context.Context) ([]ledger.Application, error)
	IsApplied(ctx context.Context, jobKey string) (bool, error)
}

// Transitioner performs the atomic mark-applied transition.
type Transitioner interface {
	MarkApplied(ctx context.Context, snap transition.Snapshot) (*ledger.Application, error)
}

// Accounts registers users and issues tokens.
type Accounts interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Counter serves the dashboard counts.
type Counter interface {
	CountApplied(ctx context.Context) (int, error)
	CountOpen(ctx context.Context) (int, error)
}

// Profiles stores the applicant profile document.
type Profiles interface {
	Get(ctx context.Context, userID int64) (json.RawMessage, error)
	Put(ctx context.Context, userID int64, doc json.RawMessage) error
}

// Handler holds the service dependencies behind the HTTP surface.
type Handler struct {
	catalog  Catalog
	ledger   Ledger
	engine   Transitioner
	accounts Accounts
	tokens   TokenVerifier
	counts   Counter
	profiles Profiles
}

// NewHandler returns a configured Handler.
func NewHandler(
	cat Catalog,
	led Ledger,
	eng Transitioner,
	acc Accounts,
	tok TokenVerifier,
	cnt Counter,
	prof Profiles,
) *Handler {
	return &Handler{
		catalog:  cat,
		ledger:   led,
		engine:   eng,
		accounts: acc,
		tokens:   tok,
		counts:   cnt,
		profiles: prof,
	}
}
