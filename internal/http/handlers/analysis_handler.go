// Analysis job HTTP handlers.
//
// This file exposes the async analysis endpoints:
//   - POST /analyses/{username}   (start a background analysis)
//   - GET  /analyses/{username}   (poll job status)
//
// Analyses run minutes, not milliseconds, so POST only registers a job and
// returns 202; the pipeline reports progress into the job store while the
// client polls GET.
package handlers

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/erislabs/go-debate-backend/internal/jobs"
	"github.com/erislabs/go-debate-backend/internal/pipeline"
)

// AnalysisRunner executes one full analysis. Satisfied by *pipeline.Pipeline.
type AnalysisRunner interface {
	Run(ctx context.Context, username string, opts pipeline.Options, report pipeline.ProgressFunc) pipeline.Result
}

// Handlers groups the HTTP endpoints for analyses and profiles.
type Handlers struct {
	runner AnalysisRunner
	jobs   *jobs.Store
	db     *gorm.DB
	ttl    time.Duration

	// background runs are detached from the request context; this caps them.
	runTimeout time.Duration
}

// New constructs a Handlers instance bound to the pipeline, job store, and
// cache database.
func New(runner AnalysisRunner, store *jobs.Store, db *gorm.DB, ttl time.Duration) *Handlers {
	return &Handlers{
		runner:     runner,
		jobs:       store,
		db:         db,
		ttl:        ttl,
		runTimeout: 30 * time.Minute,
	}
}

// Reddit usernames: 3-20 word characters or hyphens.
var usernameRe = regexp.MustCompile(`^[\w-]{3,20}$`)

func validUsername(s string) bool { return usernameRe.MatchString(s) }

// StartAnalysisRequest is the optional JSON payload for starting an analysis.
type StartAnalysisRequest struct {
	// ForceRefresh ignores a fresh cached profile and recomputes it.
	ForceRefresh bool `json:"force_refresh"`
	// RunAll enables the full synthesis analyses. Defaults to true.
	RunAll *bool `json:"run_all"`
	// MaxComments and MaxThreads tighten the configured fetch caps.
	MaxComments int `json:"max_comments" binding:"omitempty,min=1"`
	MaxThreads  int `json:"max_threads" binding:"omitempty,min=1"`
}

// StartAnalysis godoc
// @ID          startAnalysis
// @Summary     Start a user analysis
// @Description Registers a background analysis job for the given Reddit username. Returns 409 while a previous job for the same user is still running.
// @Tags        Analyses
// @Accept      json
// @Produce     json
//
// @Param       username  path  string  true  "Reddit username"  example(spez)
// @Param       body      body  handlers.StartAnalysisRequest  false  "Run options"
//
// @Success     202  {object}  jobs.Job
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid username or body"
// @Failure     409  {object}  handlers.ErrorResponse  "Analysis already running"
// @Router      /analyses/{username} [post]
func (h *Handlers) StartAnalysis(c *gin.Context) {
	username := c.Param("username")
	if !validUsername(username) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username must be 3-20 word characters")
		return
	}

	var req StartAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	runAll := true
	if req.RunAll != nil {
		runAll = *req.RunAll
	}

	job, err := h.jobs.Begin(username, time.Now())
	if err != nil {
		fail(c, http.StatusConflict, ErrCodeConflict, "analysis already in progress for this user")
		return
	}

	opts := pipeline.Options{
		MaxComments:    req.MaxComments,
		MaxThreads:     req.MaxThreads,
		ForceRefresh:   req.ForceRefresh,
		RunAllAnalyses: runAll,
	}
	go h.runAnalysis(username, opts)

	ok(c, http.StatusAccepted, job)
}

// runAnalysis drives the pipeline in the background and folds its progress
// and outcome into the job store.
func (h *Handlers) runAnalysis(username string, opts pipeline.Options) {
	ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
	defer cancel()

	res := h.runner.Run(ctx, username, opts, func(stage string, percent int, _ string) {
		h.jobs.SetProgress(username, stage, percent)
	})
	if res.Success {
		h.jobs.Complete(username, time.Now())
		return
	}
	h.jobs.Fail(username, res.Err, time.Now())
}

// GetAnalysis godoc
// @ID          getAnalysis
// @Summary     Get analysis job status
// @Description Returns the latest analysis job for the username, including stage and percent while in progress.
// @Tags        Analyses
// @Produce     json
//
// @Param       username  path  string  true  "Reddit username"  example(spez)
//
// @Success     200  {object}  jobs.Job
// @Failure     404  {object}  handlers.ErrorResponse  "No job for this user"
// @Router      /analyses/{username} [get]
func (h *Handlers) GetAnalysis(c *gin.Context) {
	username := c.Param("username")
	job, err := h.jobs.Get(username)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no analysis job for this user")
		return
	}
	ok(c, http.StatusOK, job)
}
