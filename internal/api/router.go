package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter mounts all routes and middleware on a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())

	ccfg := cors.DefaultConfig()
	ccfg.AllowAllOrigins = true
	ccfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(ccfg))

	r.GET("/health", h.health)
	r.POST("/login", h.login)
	r.POST("/register", h.register)
	r.GET("/check-applied/:job_jk", h.checkApplied)

	authed := r.Group("/", RequireAuth(h.tokens))
	authed.GET("/job-listings", h.listJobs)
	authed.GET("/job-listings/:job_jk", h.getJob)
	authed.POST("/mark-applied", h.markApplied)
	authed.GET("/applied-jobs", h.listApplied)
	authed.GET("/applied-jobs-count", h.appliedCount)
	authed.GET("/unapplied-jobs-count", h.unappliedCount)
	authed.GET("/user-info", h.getUserInfo)
	authed.PUT("/user-info", h.putUserInfo)

	return r
}
