// Package domain defines the data model shared by the fetcher, the
// analyzers, and the profile synthesizer: raw comments, debate threads,
// per-debate assessments, and the aggregate SynthesizedProfile that is the
// unit of caching.
package domain

import (
	"strings"
	"time"
)

// Comment is a single comment pulled from the data source. Comments are
// immutable once fetched; analyzers only ever read them.
type Comment struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	ParentID   string  `json:"parent_id"`
	LinkID     string  `json:"link_id"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	Depth      int     `json:"depth"`
	IsSubmitter bool   `json:"is_submitter"`
}

// WordCount returns the number of whitespace-separated words in the body.
func (c Comment) WordCount() int {
	return len(strings.Fields(c.Body))
}

// IsReplyToComment reports whether the parent is another comment rather
// than the root post.
func (c Comment) IsReplyToComment() bool {
	return strings.HasPrefix(c.ParentID, "t1_")
}

// CreatedAt converts the source epoch timestamp to time.Time (UTC).
func (c Comment) CreatedAt() time.Time {
	sec := int64(c.CreatedUTC)
	nsec := int64((c.CreatedUTC - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
