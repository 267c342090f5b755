// Package pipeline orchestrates a full user analysis: fetch history, build
// threads, filter and identify debates, score argument quality, synthesize
// the profile, and cache the result. Progress is reported per stage so the
// jobs layer can expose it while the run is in flight.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/erislabs/go-debate-backend/internal/analysis"
	"github.com/erislabs/go-debate-backend/internal/cache"
	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/fetcher"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

// ErrNoComments indicates the user exists but has no comment history to
// analyze. Nothing is cached in that case.
var ErrNoComments = errors.New("pipeline: no comments found for user")

// ProgressFunc receives stage updates during a run.
type ProgressFunc func(stage string, percent int, message string)

// Options tune a single run.
type Options struct {
	// MaxComments and MaxThreads tighten the fetcher's configured caps for
	// this run only. Zero means the configured default.
	MaxComments int
	MaxThreads  int
	// ForceRefresh skips the cache read and overwrites the cached profile.
	ForceRefresh bool
	// RunAllAnalyses enables the synthesis analyses (fallacies, archetype,
	// MBTI, top arguments, expertise, good faith). Off, only locally
	// computable statistics are produced.
	RunAllAnalyses bool
}

// Result summarizes one run.
type Result struct {
	Success         bool          `json:"success"`
	Username        string        `json:"username"`
	DebatesFound    int           `json:"debates_found"`
	DebatesAnalyzed int           `json:"debates_analyzed"`
	FromCache       bool          `json:"from_cache"`
	Duration        time.Duration `json:"-"`
	Err             string        `json:"error,omitempty"`
}

// Pipeline wires the fetcher, the analyzers, and the cache together.
type Pipeline struct {
	fetcher     fetcher.Fetcher
	identifier  *analysis.DebateIdentifier
	quality     *analysis.QualityAnalyzer
	synthesizer *analysis.ProfileSynthesizer
	db          *gorm.DB
	ttl         time.Duration
}

// New builds a pipeline around an already constructed fetcher, reasoning
// client, and cache database.
func New(f fetcher.Fetcher, client reasoning.Client, db *gorm.DB, cfg config.AnalysisConfig, ttl time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:     f,
		identifier:  analysis.NewDebateIdentifier(client, cfg),
		quality:     analysis.NewQualityAnalyzer(client, cfg),
		synthesizer: analysis.NewProfileSynthesizer(client, cfg),
		db:          db,
		ttl:         ttl,
	}
}

// Run executes the full pipeline for one username. Errors are folded into
// the returned Result; the caller decides how to surface them.
func (p *Pipeline) Run(ctx context.Context, username string, opts Options, report ProgressFunc) Result {
	start := time.Now()
	if report == nil {
		report = func(string, int, string) {}
	}

	if !opts.ForceRefresh {
		if cached, _, err := cache.GetProfile(ctx, p.db, username, p.ttl, time.Now()); err == nil {
			report("cache_hit", 100, "Using cached profile")
			return Result{
				Success:         true,
				Username:        username,
				DebatesFound:    cached.DebatesAnalyzed,
				DebatesAnalyzed: cached.DebatesAnalyzed,
				FromCache:       true,
				Duration:        time.Since(start),
			}
		}
	}

	report("fetching", 10, fmt.Sprintf("Fetching Reddit data for u/%s", username))
	comments, err := p.fetcher.FetchHistory(ctx, username)
	if err != nil {
		return p.fail(username, start, err)
	}
	if len(comments) == 0 {
		return p.fail(username, start, ErrNoComments)
	}
	if opts.MaxComments > 0 && len(comments) > opts.MaxComments {
		comments = comments[:opts.MaxComments]
	}
	report("fetching", 20, fmt.Sprintf("Fetched %d comments", len(comments)))

	report("threading", 30, "Building debate threads")
	threads, err := p.fetcher.BuildThreads(ctx, username, comments)
	if err != nil {
		return p.fail(username, start, err)
	}
	if opts.MaxThreads > 0 && len(threads) > opts.MaxThreads {
		threads = threads[:opts.MaxThreads]
	}
	report("threading", 40, fmt.Sprintf("Built %d threads", len(threads)))

	report("filtering", 45, "Pre-filtering potential debates")
	potential := p.identifier.QuickFilter(threads)
	report("filtering", 50, fmt.Sprintf("%d potential debates", len(potential)))

	report("identifying", 55, "Identifying debates")
	if err := p.identifier.Identify(ctx, username, potential); err != nil {
		return p.fail(username, start, err)
	}
	debates := make([]*domain.DebateThread, 0, len(potential))
	for _, th := range potential {
		if th.IsDebate {
			debates = append(debates, th)
		}
	}
	report("identifying", 65, fmt.Sprintf("Identified %d debates", len(debates)))

	if len(debates) == 0 {
		// A user with no debates is a valid, cacheable outcome.
		profile, err := p.synthesizer.Synthesize(ctx, username, nil, nil, false)
		if err != nil {
			return p.fail(username, start, err)
		}
		profile.TotalComments = len(comments)
		profile.TotalThreads = len(threads)
		if err := cache.PutProfile(ctx, p.db, profile, time.Now()); err != nil {
			return p.fail(username, start, err)
		}
		report("complete", 100, "No debates found in comment history")
		return Result{Success: true, Username: username, Duration: time.Since(start)}
	}

	report("analyzing", 55, fmt.Sprintf("Analyzing %d debates", len(debates)))
	qualityResults, err := p.quality.AnalyzeDebates(ctx, debates)
	if err != nil {
		return p.fail(username, start, err)
	}
	report("analyzing", 65, fmt.Sprintf("Analyzed %d debates", len(qualityResults)))

	report("synthesizing", 70, "Running comprehensive analysis")
	profile, err := p.synthesizer.Synthesize(ctx, username, debates, qualityResults, opts.RunAllAnalyses)
	if err != nil {
		return p.fail(username, start, err)
	}
	profile.TotalThreads = len(threads)
	report("synthesizing", 90, "Profile synthesized")

	report("caching", 95, "Caching results")
	if err := cache.PutProfile(ctx, p.db, profile, time.Now()); err != nil {
		return p.fail(username, start, err)
	}

	report("complete", 100, "Analysis complete")
	log.Info().
		Str("username", username).
		Int("debates", len(debates)).
		Dur("duration", time.Since(start)).
		Msg("pipeline run complete")
	return Result{
		Success:         true,
		Username:        username,
		DebatesFound:    len(debates),
		DebatesAnalyzed: len(qualityResults),
		Duration:        time.Since(start),
	}
}

func (p *Pipeline) fail(username string, start time.Time, err error) Result {
	log.Error().Err(err).Str("username", username).Msg("pipeline run failed")
	return Result{
		Username: username,
		Duration: time.Since(start),
		Err:      err.Error(),
	}
}
