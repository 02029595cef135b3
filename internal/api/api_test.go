package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobcenter/internal/api"
	"jobcenter/internal/auth"
	"jobcenter/internal/catalog"
	"jobcenter/internal/ledger"
	"jobcenter/internal/transition"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Stub services ──────────────────────────────────────────────────────────

type stubCatalog struct {
	jobs []catalog.JobPosting
}

func (s *stubCatalog) List(ctx context.Context, f catalog.Filter) ([]catalog.JobPosting, error) {
	out := make([]catalog.JobPosting, 0)
	for _, j := range s.jobs {
		if f.Matches(j.JobLocation) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *stubCatalog) GetByKey(ctx context.Context, key string) (*catalog.JobPosting, error) {
	for _, j := range s.jobs {
		if j.JobKey == key {
			return &j, nil
		}
	}
	return nil, catalog.ErrNotFound
}

type stubLedger struct {
	apps []ledger.Application
}

func (s *stubLedger) ListApplied(ctx context.Context) ([]ledger.Application, error) {
	return s.apps, nil
}

func (s *stubLedger) IsApplied(ctx context.Context, jobKey string) (bool, error) {
	for _, a := range s.apps {
		if a.JobKey == jobKey {
			return true, nil
		}
	}
	return false, nil
}

type stubEngine struct {
	err error
}

func (s *stubEngine) MarkApplied(ctx context.Context, snap transition.Snapshot) (*ledger.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ledger.Application{
		ID:               1,
		JobKey:           snap.JobKey,
		CompanyName:      snap.CompanyName,
		AppliedTimestamp: time.Now(),
	}, nil
}

type stubAccounts struct {
	registerErr error
	loginErr    error
}

func (s *stubAccounts) Register(ctx context.Context, username, password string) (int64, error) {
	if s.registerErr != nil {
		return 0, s.registerErr
	}
	return 7, nil
}

func (s *stubAccounts) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return "issued-token", nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*auth.Claims, error) {
	if token == "good-token" {
		return &auth.Claims{UserID: 7, Username: "tim"}, nil
	}
	return nil, auth.ErrForbidden
}

type stubCounter struct {
	applied, open int
}

func (s *stubCounter) CountApplied(ctx context.Context) (int, error) { return s.applied, nil }
func (s *stubCounter) CountOpen(ctx context.Context) (int, error)    { return s.open, nil }

type stubProfiles struct {
	docs map[int64]json.RawMessage
}

func (s *stubProfiles) Get(ctx context.Context, userID int64) (json.RawMessage, error) {
	if doc, ok := s.docs[userID]; ok {
		return doc, nil
	}
	return json.RawMessage(`{}`), nil
}

func (s *stubProfiles) Put(ctx context.Context, userID int64, doc json.RawMessage) error {
	s.docs[userID] = doc
	return nil
}

type deps struct {
	catalog  *stubCatalog
	ledger   *stubLedger
	engine   *stubEngine
	accounts *stubAccounts
	counter  *stubCounter
	profiles *stubProfiles
}

func newTestRouter(d deps) *gin.Engine {
	if d.catalog == nil {
		d.catalog = &stubCatalog{}
	}
	if d.ledger == nil {
		d.ledger = &stubLedger{}
	}
	if d.engine == nil {
		d.engine = &stubEngine{}
	}
	if d.accounts == nil {
		d.accounts = &stubAccounts{}
	}
	if d.counter == nil {
		d.counter = &stubCounter{}
	}
	if d.profiles == nil {
		d.profiles = &stubProfiles{docs: map[int64]json.RawMessage{}}
	}
	h := api.NewHandler(d.catalog, d.ledger, d.engine, d.accounts, stubVerifier{}, d.counter, d.profiles)
	return api.NewRouter(h)
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, w.Body.String())
	}
	return m
}

// ── Auth middleware ────────────────────────────────────────────────────────

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(deps{})

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "bad-token", http.StatusForbidden},
		{"valid token", "good-token", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, "/job-listings", c.token, "")
			if w.Code != c.status {
				t.Errorf("GET /job-listings status = %d, want %d", w.Code, c.status)
			}
		})
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := newTestRouter(deps{})

	req := httptest.NewRequest(http.MethodGet, "/job-listings", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("non-bearer Authorization status = %d, want 401", w.Code)
	}
}

// ── Login / register ───────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	r := newTestRouter(deps{})
	w := doRequest(t, r, http.MethodPost, "/login", "", `{"username":"tim","password":"pw"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["accessToken"]; got != "issued-token" {
		t.Errorf("accessToken = %v, want issued-token", got)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	r := newTestRouter(deps{accounts: &stubAccounts{loginErr: auth.ErrInvalidCredentials}})
	w := doRequest(t, r, http.MethodPost, "/login", "", `{"username":"tim","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := newTestRouter(deps{accounts: &stubAccounts{registerErr: auth.ErrDuplicateUser}})
	w := doRequest(t, r, http.MethodPost, "/register", "", `{"username":"tim","password":"pw"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

// ── Job listings ───────────────────────────────────────────────────────────

func someJobs(n int) []catalog.JobPosting {
	jobs := make([]catalog.JobPosting, n)
	for i := range jobs {
		jobs[i] = catalog.JobPosting{
			JobKey:      fmt.Sprintf("jk-%03d", i),
			JobTitle:    "Engineer",
			JobLocation: "Remote",
		}
	}
	return jobs
}

func TestListJobs_PlainArray(t *testing.T) {
	r := newTestRouter(deps{catalog: &stubCatalog{jobs: someJobs(3)}})
	w := doRequest(t, r, http.MethodGet, "/job-listings", "good-token", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var arr []catalog.JobPosting
	if err := json.Unmarshal(w.Body.Bytes(), &arr); err != nil {
		t.Fatalf("response is not an array: %v", err)
	}
	if len(arr) != 3 {
		t.Errorf("len = %d, want 3", len(arr))
	}
}

func TestListJobs_PagedEnvelope(t *testing.T) {
	r := newTestRouter(deps{catalog: &stubCatalog{jobs: someJobs(95)}})
	w := doRequest(t, r, http.MethodGet, "/job-listings?page=10&viewportWidth=420", "good-token", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode(t, w)

	items, ok := body["items"].([]any)
	if !ok {
		t.Fatalf("items missing from envelope: %v", body)
	}
	if len(items) != 5 {
		t.Errorf("last page has %d items, want 5", len(items))
	}

	window, ok := body["window"].(map[string]any)
	if !ok {
		t.Fatalf("window missing from envelope: %v", body)
	}
	if window["totalPages"] != float64(10) {
		t.Errorf("totalPages = %v, want 10", window["totalPages"])
	}
	if window["hasNext"] != false {
		t.Error("hasNext should be false on the last page")
	}
}

func TestListJobs_Filter(t *testing.T) {
	jobs := jobsWithLocations("Remote", "Austin, TX", "remote friendly")
	r := newTestRouter(deps{catalog: &stubCatalog{jobs: jobs}})
	w := doRequest(t, r, http.MethodGet, "/job-listings?locationFilter=Remote", "good-token", "")

	var arr []catalog.JobPosting
	if err := json.Unmarshal(w.Body.Bytes(), &arr); err != nil {
		t.Fatalf("response is not an array: %v", err)
	}
	if len(arr) != 2 {
		t.Errorf("remote filter returned %d jobs, want 2", len(arr))
	}
}

func jobsWithLocations(locations ...string) []catalog.JobPosting {
	jobs := make([]catalog.JobPosting, len(locations))
	for i, loc := range locations {
		jobs[i] = catalog.JobPosting{JobKey: fmt.Sprintf("jk-%d", i), JobLocation: loc}
	}
	return jobs
}

func TestGetJob_NotFound(t *testing.T) {
	r := newTestRouter(deps{})
	w := doRequest(t, r, http.MethodGet, "/job-listings/nope", "good-token", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ── Mark applied ───────────────────────────────────────────────────────────

func TestMarkApplied_Success(t *testing.T) {
	r := newTestRouter(deps{})
	w := doRequest(t, r, http.MethodPost, "/mark-applied", "good-token",
		`{"jobId":"abc123","companyName":"Acme"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Error("success should be true")
	}
	job, ok := body["job"].(map[string]any)
	if !ok {
		t.Fatalf("job missing from response: %v", body)
	}
	if job["job_jk"] != "abc123" {
		t.Errorf("job_jk = %v, want abc123", job["job_jk"])
	}
}

func TestMarkApplied_Conflict(t *testing.T) {
	r := newTestRouter(deps{engine: &stubEngine{err: transition.ErrAlreadyApplied}})
	w := doRequest(t, r, http.MethodPost, "/mark-applied", "good-token", `{"jobId":"abc123"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if decode(t, w)["success"] != false {
		t.Error("success should be false on conflict")
	}
}

func TestMarkApplied_UnknownJob(t *testing.T) {
	r := newTestRouter(deps{engine: &stubEngine{err: transition.ErrNotFound}})
	w := doRequest(t, r, http.MethodPost, "/mark-applied", "good-token", `{"jobId":"nope"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestMarkApplied_OpaqueFailure(t *testing.T) {
	r := newTestRouter(deps{engine: &stubEngine{
		err: fmt.Errorf("%w: commit: %v", transition.ErrTransitionFailed, errors.New("pq: deadlock detected")),
	}})
	w := doRequest(t, r, http.MethodPost, "/mark-applied", "good-token", `{"jobId":"abc123"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "deadlock") {
		t.Error("internal error detail leaked to the wire response")
	}
}

func TestMarkApplied_MissingJobID(t *testing.T) {
	r := newTestRouter(deps{})
	w := doRequest(t, r, http.MethodPost, "/mark-applied", "good-token", `{"companyName":"Acme"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ── Counts and applied lookups ─────────────────────────────────────────────

func TestCounts(t *testing.T) {
	r := newTestRouter(deps{counter: &stubCounter{applied: 12, open: 34}})

	w := doRequest(t, r, http.MethodGet, "/applied-jobs-count", "good-token", "")
	if got := decode(t, w)["count"]; got != float64(12) {
		t.Errorf("applied count = %v, want 12", got)
	}

	w = doRequest(t, r, http.MethodGet, "/unapplied-jobs-count", "good-token", "")
	if got := decode(t, w)["count"]; got != float64(34) {
		t.Errorf("unapplied count = %v, want 34", got)
	}
}

func TestCheckApplied_NoAuthRequired(t *testing.T) {
	led := &stubLedger{apps: []ledger.Application{{JobKey: "abc123"}}}
	r := newTestRouter(deps{ledger: led})

	w := doRequest(t, r, http.MethodGet, "/check-applied/abc123", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 without a token", w.Code)
	}
	if decode(t, w)["applied"] != true {
		t.Error("applied should be true")
	}

	w = doRequest(t, r, http.MethodGet, "/check-applied/other", "", "")
	if decode(t, w)["applied"] != false {
		t.Error("applied should be false for an unknown key")
	}
}

// ── Profile ────────────────────────────────────────────────────────────────

func TestUserInfoRoundTrip(t *testing.T) {
	r := newTestRouter(deps{})

	doc := `{"name":"Tim","jobPreferences":{"jobTitlePreferred":["SRE"]}}`
	w := doRequest(t, r, http.MethodPut, "/user-info", "good-token", doc)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/user-info", "good-token", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["name"]; got != "Tim" {
		t.Errorf("profile name = %v, want Tim", got)
	}
}

func TestUserInfo_RejectsInvalidJSON(t *testing.T) {
	r := newTestRouter(deps{})
	w := doRequest(t, r, http.MethodPut, "/user-info", "good-token", `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
