// Package fetcher retrieves a user's Reddit comment history over the public
// JSON API and reconstructs per-thread debate exchanges from it. Requests are
// paced with a token-bucket limiter so the pipeline stays well inside
// Reddit's unauthenticated rate limits.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
)

// Sentinel errors surfaced to the pipeline.
var (
	ErrUserNotFound = errors.New("fetcher: user not found")
	ErrRateLimited  = errors.New("fetcher: rate limited after retries")
)

// Fetcher retrieves a user's comment history and groups it into threads.
type Fetcher interface {
	// FetchHistory returns the user's most recent comments, newest first,
	// up to the configured maximum.
	FetchHistory(ctx context.Context, username string) ([]domain.Comment, error)
	// BuildThreads groups comments into per-submission exchanges with
	// opponent context, keeping at most the configured thread count.
	BuildThreads(ctx context.Context, username string, comments []domain.Comment) ([]*domain.DebateThread, error)
}

// RedditFetcher is the production Fetcher backed by reddit.com's JSON
// listings.
type RedditFetcher struct {
	baseURL     string
	userAgent   string
	maxComments int
	maxThreads  int
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewRedditFetcher builds a fetcher from config.
func NewRedditFetcher(cfg config.FetchConfig) *RedditFetcher {
	return &RedditFetcher{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		maxComments: cfg.MaxComments,
		maxThreads:  cfg.MaxThreads,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}
}

// listing mirrors the subset of Reddit's Listing envelope we consume.
type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// commentData is a raw t1 payload from a listing or a comment tree.
type commentData struct {
	ID          string  `json:"id"`
	Author      string  `json:"author"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	ParentID    string  `json:"parent_id"`
	LinkID      string  `json:"link_id"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	LinkTitle   string  `json:"link_title"`
	IsSubmitter bool    `json:"is_submitter"`

	// Replies is a nested listing on tree fetches and "" on user listings.
	Replies json.RawMessage `json:"replies"`
}

func (d commentData) toDomain(depth int) domain.Comment {
	return domain.Comment{
		ID:          d.ID,
		Author:      d.Author,
		Body:        d.Body,
		Score:       d.Score,
		CreatedUTC:  d.CreatedUTC,
		ParentID:    d.ParentID,
		LinkID:      d.LinkID,
		Subreddit:   d.Subreddit,
		Permalink:   d.Permalink,
		Depth:       depth,
		IsSubmitter: d.IsSubmitter,
	}
}

// FetchHistory pages through /user/<name>/comments.json until the comment
// budget is met or the listing runs out.
func (f *RedditFetcher) FetchHistory(ctx context.Context, username string) ([]domain.Comment, error) {
	var out []domain.Comment
	after := ""
	for len(out) < f.maxComments {
		page := f.maxComments - len(out)
		if page > 100 {
			page = 100 // listing hard cap
		}
		u := fmt.Sprintf("%s/user/%s/comments.json?limit=%d&raw_json=1", f.baseURL, url.PathEscape(username), page)
		if after != "" {
			u += "&after=" + url.QueryEscape(after)
		}

		var lst listing
		if err := f.getJSON(ctx, u, &lst); err != nil {
			return nil, err
		}
		if len(lst.Data.Children) == 0 {
			break
		}
		for _, ch := range lst.Data.Children {
			if ch.Kind != "t1" {
				continue
			}
			var cd commentData
			if err := json.Unmarshal(ch.Data, &cd); err != nil {
				continue
			}
			out = append(out, cd.toDomain(0))
		}
		if lst.Data.After == "" {
			break
		}
		after = lst.Data.After
	}
	log.Debug().Str("username", username).Int("comments", len(out)).Msg("fetched comment history")
	return out, nil
}

// BuildThreads groups the user's comments by submission, keeps the most
// active threads, and pulls each thread's comment tree to recover titles,
// nesting depth, and the opponent side of the exchange.
func (f *RedditFetcher) BuildThreads(ctx context.Context, username string, comments []domain.Comment) ([]*domain.DebateThread, error) {
	byLink := make(map[string][]domain.Comment)
	order := make([]string, 0)
	for _, c := range comments {
		if _, seen := byLink[c.LinkID]; !seen {
			order = append(order, c.LinkID)
		}
		byLink[c.LinkID] = append(byLink[c.LinkID], c)
	}

	// Most active threads first; ties keep recency order from the listing.
	sort.SliceStable(order, func(i, j int) bool {
		return len(byLink[order[i]]) > len(byLink[order[j]])
	})
	if len(order) > f.maxThreads {
		order = order[:f.maxThreads]
	}

	threads := make([]*domain.DebateThread, 0, len(order))
	for _, linkID := range order {
		group := byLink[linkID]
		th, err := f.buildThread(ctx, username, linkID, group)
		if err != nil {
			// A dead submission should not sink the whole run.
			log.Warn().Err(err).Str("link_id", linkID).Msg("skipping thread, tree fetch failed")
			continue
		}
		threads = append(threads, th)
	}
	return threads, nil
}

func (f *RedditFetcher) buildThread(ctx context.Context, username, linkID string, group []domain.Comment) (*domain.DebateThread, error) {
	id := strings.TrimPrefix(linkID, "t3_")
	sub := group[0].Subreddit

	tree, title, permalink, err := f.fetchTree(ctx, sub, id)
	if err != nil {
		return nil, err
	}

	th := &domain.DebateThread{
		ThreadID:    id,
		ThreadTitle: title,
		ThreadURL:   f.baseURL + permalink,
		Subreddit:   sub,
	}

	userIDs := make(map[string]bool, len(group))
	for _, c := range group {
		userIDs["t1_"+c.ID] = true
	}

	// Partition the tree: the user's side (with real depth) and the
	// opponents they actually argued with, i.e. parents of the user's
	// comments and direct replies to them.
	byFullname := make(map[string]domain.Comment, len(tree))
	for _, c := range tree {
		byFullname["t1_"+c.ID] = c
	}
	for _, c := range tree {
		switch {
		case c.Author == username:
			th.UserComments = append(th.UserComments, c)
			if c.IsSubmitter {
				th.UserIsOP = true
			}
		case userIDs[c.ParentID]:
			th.OpponentComments = append(th.OpponentComments, c)
		}
	}
	for _, c := range th.UserComments {
		if p, ok := byFullname[c.ParentID]; ok && p.Author != username {
			th.OpponentComments = append(th.OpponentComments, p)
		}
	}
	th.OpponentComments = dedupeComments(th.OpponentComments)

	// Listing comments the tree fetch missed (deep collapsed branches)
	// still count as the user's.
	if len(th.UserComments) == 0 {
		th.UserComments = group
	}
	return th, nil
}

// fetchTree pulls /r/<sub>/comments/<id>.json and flattens the nested reply
// structure into a single depth-annotated slice.
func (f *RedditFetcher) fetchTree(ctx context.Context, subreddit, id string) (comments []domain.Comment, title, permalink string, err error) {
	u := fmt.Sprintf("%s/r/%s/comments/%s.json?raw_json=1", f.baseURL, url.PathEscape(subreddit), url.PathEscape(id))

	// The endpoint returns [submissionListing, commentListing].
	var pages []listing
	if err := f.getJSON(ctx, u, &pages); err != nil {
		return nil, "", "", err
	}
	if len(pages) > 0 && len(pages[0].Data.Children) > 0 {
		var post struct {
			Title     string `json:"title"`
			Permalink string `json:"permalink"`
		}
		_ = json.Unmarshal(pages[0].Data.Children[0].Data, &post)
		title, permalink = post.Title, post.Permalink
	}
	if len(pages) > 1 {
		comments = flatten(pages[1].Data.Children, 0)
	}
	return comments, title, permalink, nil
}

func flatten(children []child, depth int) []domain.Comment {
	var out []domain.Comment
	for _, ch := range children {
		if ch.Kind != "t1" {
			continue // "more" stubs are skipped
		}
		var cd commentData
		if err := json.Unmarshal(ch.Data, &cd); err != nil {
			continue
		}
		out = append(out, cd.toDomain(depth))
		if len(cd.Replies) > 0 && cd.Replies[0] == '{' {
			var sub listing
			if err := json.Unmarshal(cd.Replies, &sub); err == nil {
				out = append(out, flatten(sub.Data.Children, depth+1)...)
			}
		}
	}
	return out
}

func dedupeComments(in []domain.Comment) []domain.Comment {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// getJSON performs one rate-limited GET and decodes the body, retrying
// through 429s with doubling backoff.
func (f *RedditFetcher) getJSON(ctx context.Context, u string, v any) error {
	const maxAttempts = 3
	backoff := time.Second
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetcher: request: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("fetcher: read response: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, v); err != nil {
				return fmt.Errorf("fetcher: decode response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return ErrUserNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt == maxAttempts-1 {
				return ErrRateLimited
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		default:
			return fmt.Errorf("fetcher: status %d from %s", resp.StatusCode, u)
		}
	}
	return ErrRateLimited
}
