package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobcenter/internal/auth"
	"jobcenter/internal/catalog"
	"jobcenter/internal/pagination"
	"jobcenter/internal/transition"
)

// Version reported by /health.
const Version = "1.0.0"

// ─── Auth ────────────────────────────────────────────────────────────────────

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Username or password incorrect"})
		return
	}
	if err != nil {
		log.Printf("[api] login error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	id, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrDuplicateUser) {
		c.JSON(http.StatusConflict, gin.H{"message": "username already taken"})
		return
	}
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Msg})
		return
	}
	if err != nil {
		log.Printf("[api] register error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": id, "username": req.Username})
}

// ─── Job catalog ─────────────────────────────────────────────────────────────

func (h *Handler) listJobs(c *gin.Context) {
	filter := catalog.ParseFilter(c.Query("locationFilter"))

	jobs, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("[api] listJobs error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	// Without a page parameter the full ordered list is returned; with one,
	// the response is a paged envelope with the button window.
	if c.Query("page") == "" {
		c.JSON(http.StatusOK, jobs)
		return
	}
	c.JSON(http.StatusOK, pagedEnvelope(c, len(jobs), func(lo, hi int) any { return jobs[lo:hi] }))
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.catalog.GetByKey(c.Request.Context(), c.Param("job_jk"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Job not found."})
		return
	}
	if err != nil {
		log.Printf("[api] getJob error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ─── Mark applied ────────────────────────────────────────────────────────────

type markAppliedRequest struct {
	JobID           string `json:"jobId" binding:"required"`
	JobLink         string `json:"jobLink"`
	CompanyName     string `json:"companyName"`
	CompanyLocation string `json:"companyLocation"`
	Salary          string `json:"salary"`
	JobType         string `json:"jobType"`
	JobDescription  string `json:"jobDescription"`
}

func (h *Handler) markApplied(c *gin.Context) {
	var req markAppliedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "jobId is required"})
		return
	}

	app, err := h.engine.MarkApplied(c.Request.Context(), transition.Snapshot{
		JobKey:          req.JobID,
		JobLink:         req.JobLink,
		CompanyName:     req.CompanyName,
		CompanyLocation: req.CompanyLocation,
		Salary:          req.Salary,
		JobType:         req.JobType,
		JobDescription:  req.JobDescription,
	})
	var verr *transition.ValidationError
	switch {
	case errors.Is(err, transition.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Job not found."})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Msg})
	case errors.Is(err, transition.ErrAlreadyApplied):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Job already marked as applied."})
	case err != nil:
		// Full detail in the log; opaque message on the wire.
		log.Printf("[api] markApplied error for job %s: %v", req.JobID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database operation failed."})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job marked as applied.", "job": app})
	}
}

// ─── Ledger / counts ─────────────────────────────────────────────────────────

func (h *Handler) listApplied(c *gin.Context) {
	apps, err := h.ledger.ListApplied(c.Request.Context())
	if err != nil {
		log.Printf("[api] listApplied error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if c.Query("page") == "" {
		c.JSON(http.StatusOK, apps)
		return
	}
	c.JSON(http.StatusOK, pagedEnvelope(c, len(apps), func(lo, hi int) any { return apps[lo:hi] }))
}

func (h *Handler) appliedCount(c *gin.Context) {
	n, err := h.counts.CountApplied(c.Request.Context())
	if err != nil {
		log.Printf("[api] appliedCount error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) unappliedCount(c *gin.Context) {
	n, err := h.counts.CountOpen(c.Request.Context())
	if err != nil {
		log.Printf("[api] unappliedCount error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) checkApplied(c *gin.Context) {
	applied, err := h.ledger.IsApplied(c.Request.Context(), c.Param("job_jk"))
	if err != nil {
		log.Printf("[api] checkApplied error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// ─── Applicant profile ───────────────────────────────────────────────────────

func (h *Handler) getUserInfo(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	doc, err := h.profiles.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("[api] getUserInfo error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.Data(http.StatusOK, "application/json", doc)
}

func (h *Handler) putUserInfo(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON document"})
		return
	}

	if err := h.profiles.Put(c.Request.Context(), claims.UserID, body); err != nil {
		log.Printf("[api] putUserInfo error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// pagedEnvelope slices a full ordered result set according to the page and
// viewportWidth query parameters and wraps it with the button window.
func pagedEnvelope(c *gin.Context, total int, slice func(lo, hi int) any) gin.H {
	page, _ := strconv.Atoi(c.Query("page"))
	width, _ := strconv.Atoi(c.Query("viewportWidth"))

	buttons := pagination.DefaultMaxButtons
	if width > 0 {
		buttons = pagination.MaxButtons(width)
	}

	win := pagination.Compute(total, page, pagination.DefaultPageSize, buttons)
	return gin.H{
		"items":  slice(win.SliceLow, win.SliceHigh),
		"window": win,
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "jobcenter",
		"version": Version,
	})
}
