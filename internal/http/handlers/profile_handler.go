// Profile HTTP handlers.
//
// This file exposes the cached-profile endpoints:
//   - GET    /profiles/{username}          (full synthesized profile)
//   - GET    /profiles/{username}/debates  (paginated debate summaries)
//   - DELETE /profiles/{username}          (invalidate cache)
//
// Profiles are served straight from the cache; a missing or expired record
// is a 404 and the client is expected to POST /analyses/{username}.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erislabs/go-debate-backend/internal/cache"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/utils"
)

const timeLayout = time.RFC3339

// timeNow is a seam for freshness tests.
var timeNow = time.Now

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ProfileResponse wraps the cached profile with its cache timestamp.
type ProfileResponse struct {
	Profile  *domain.SynthesizedProfile `json:"profile"`
	CachedAt string                     `json:"cached_at"`
}

// ListDebatesResponse wraps a page of debate summaries.
type ListDebatesResponse struct {
	Username   string                 `json:"username"`
	Debates    []domain.DebateSummary `json:"debates"`
	Pagination Pagination             `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get a user's debate profile
// @Description Returns the cached synthesized profile. 404 when no fresh profile exists; start an analysis first.
// @Tags        Profiles
// @Produce     json
//
// @Param       username  path  string  true  "Reddit username"  example(spez)
//
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No fresh profile cached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles/{username} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	username := c.Param("username")
	profile, cachedAt, err := cache.GetProfile(c.Request.Context(), h.db, username, h.ttl, timeNow())
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no profile for this user; start an analysis")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ProfileResponse{Profile: profile, CachedAt: cachedAt.UTC().Format(timeLayout)})
}

// ListDebates godoc
// @ID          listDebates
// @Summary     List a user's analyzed debates (paginated)
// @Description Returns a page of the debate summaries embedded in the cached profile.
// @Tags        Profiles
// @Produce     json
//
// @Param       username   path   string  true  "Reddit username"  example(spez)
// @Param       page       query  int     false "Page number"      minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"   minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListDebatesResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No fresh profile cached"
// @Router      /profiles/{username}/debates [get]
func (h *Handlers) ListDebates(c *gin.Context) {
	username := c.Param("username")
	profile, _, err := cache.GetProfile(c.Request.Context(), h.db, username, h.ttl, timeNow())
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no profile for this user; start an analysis")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	page, pageSize := clampPagination(c)
	total := len(profile.Debates)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	totalPages := (total + pageSize - 1) / pageSize
	ok(c, http.StatusOK, ListDebatesResponse{
		Username: username,
		Debates:  profile.Debates[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int64(total),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// DeleteProfile godoc
// @ID          deleteProfile
// @Summary     Invalidate a cached profile
// @Description Removes the cached profile so the next analysis recomputes it. 404 when nothing was cached.
// @Tags        Profiles
// @Produce     json
//
// @Param       username  path  string  true  "Reddit username"  example(spez)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Nothing cached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles/{username} [delete]
func (h *Handlers) DeleteProfile(c *gin.Context) {
	username := c.Param("username")
	found, err := cache.InvalidateProfile(c.Request.Context(), h.db, username)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "could not invalidate profile")
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no cached profile for this user")
		return
	}
	noContent(c)
}
