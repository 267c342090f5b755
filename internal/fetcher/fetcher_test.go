package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
)

func testFetcher(url string) *RedditFetcher {
	return NewRedditFetcher(config.FetchConfig{
		UserAgent:   "test-agent",
		BaseURL:     url,
		MaxComments: 500,
		MaxThreads:  100,
		RPS:         1000, // no pacing in tests
		Timeout:     5 * time.Second,
	})
}

func listingJSON(after string, comments ...map[string]any) string {
	children := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		children = append(children, map[string]any{"kind": "t1", "data": c})
	}
	b, _ := json.Marshal(map[string]any{
		"data": map[string]any{"after": after, "children": children},
	})
	return string(b)
}

func comment(id, author, body, parent, link string) map[string]any {
	return map[string]any{
		"id": id, "author": author, "body": body,
		"parent_id": parent, "link_id": link,
		"subreddit": "changemyview", "score": 3, "created_utc": 1700000000.0,
	}
}

// --- FetchHistory ---

func TestFetchHistory_Paginates(t *testing.T) {
	var pages int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/user/alice/comments.json") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("unexpected user agent %q", ua)
		}
		switch atomic.AddInt32(&pages, 1) {
		case 1:
			if r.URL.Query().Get("after") != "" {
				t.Errorf("first page should have no cursor")
			}
			_, _ = w.Write([]byte(listingJSON("cur1",
				comment("c1", "alice", "first", "t3_p1", "t3_p1"),
				comment("c2", "alice", "second", "t1_x", "t3_p1"),
			)))
		default:
			if r.URL.Query().Get("after") != "cur1" {
				t.Errorf("second page should carry cursor, got %q", r.URL.Query().Get("after"))
			}
			_, _ = w.Write([]byte(listingJSON("",
				comment("c3", "alice", "third", "t3_p2", "t3_p2"),
			)))
		}
	}))
	defer srv.Close()

	got, err := testFetcher(srv.URL).FetchHistory(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchHistory error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d comments, want 3", len(got))
	}
	if got[0].ID != "c1" || got[2].ID != "c3" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Subreddit != "changemyview" || got[0].Score != 3 {
		t.Fatalf("fields not mapped: %+v", got[0])
	}
}

func TestFetchHistory_RespectsMaxComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("limit = %q, want 2", got)
		}
		_, _ = w.Write([]byte(listingJSON("more",
			comment("c1", "alice", "a", "t3_p1", "t3_p1"),
			comment("c2", "alice", "b", "t3_p1", "t3_p1"),
		)))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	f.maxComments = 2
	got, err := f.FetchHistory(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchHistory error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d comments, want 2", len(got))
	}
}

func TestFetchHistory_UserNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := testFetcher(srv.URL).FetchHistory(context.Background(), "ghost"); err != ErrUserNotFound {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestFetchHistory_RetriesOn429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(listingJSON("", comment("c1", "alice", "a", "t3_p1", "t3_p1"))))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	// shrink the retry pause for the test
	start := time.Now()
	got, err := f.FetchHistory(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchHistory error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d comments, want 1", len(got))
	}
	if time.Since(start) < time.Second {
		t.Fatalf("expected backoff pause before retry")
	}
}

// --- BuildThreads ---

func treeJSON(title string, comments string) string {
	post := `{"kind":"t3","data":{"title":"` + title + `","permalink":"/r/changemyview/comments/p1/x/"}}`
	return `[{"data":{"children":[` + post + `]}},{"data":{"children":[` + comments + `]}}]`
}

func TestBuildThreads_PartitionsSides(t *testing.T) {
	tree := `
	  {"kind":"t1","data":{"id":"op1","author":"bob","body":"I claim X","parent_id":"t3_p1","link_id":"t3_p1","subreddit":"changemyview",
	    "replies":{"data":{"children":[
	      {"kind":"t1","data":{"id":"u1","author":"alice","body":"X is wrong because","parent_id":"t1_op1","link_id":"t3_p1","subreddit":"changemyview",
	        "replies":{"data":{"children":[
	          {"kind":"t1","data":{"id":"op2","author":"bob","body":"but consider","parent_id":"t1_u1","link_id":"t3_p1","subreddit":"changemyview"}},
	          {"kind":"t1","data":{"id":"by1","author":"carol","body":"unrelated","parent_id":"t1_u1","link_id":"t3_p1","subreddit":"changemyview"}}
	        ]}}}}
	    ]}}}},
	  {"kind":"t1","data":{"id":"lurk","author":"dave","body":"nice thread","parent_id":"t3_p1","link_id":"t3_p1","subreddit":"changemyview"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments/p1.json") {
			_, _ = w.Write([]byte(treeJSON("CMV: X", strings.TrimSpace(tree))))
			return
		}
		t.Errorf("unexpected path %q", r.URL.Path)
	}))
	defer srv.Close()

	history := []domain.Comment{
		{ID: "u1", Author: "alice", Body: "X is wrong because", ParentID: "t1_op1", LinkID: "t3_p1", Subreddit: "changemyview"},
	}
	threads, err := testFetcher(srv.URL).BuildThreads(context.Background(), "alice", history)
	if err != nil {
		t.Fatalf("BuildThreads error: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("got %d threads, want 1", len(threads))
	}
	th := threads[0]
	if th.ThreadID != "p1" || th.ThreadTitle != "CMV: X" || th.Subreddit != "changemyview" {
		t.Fatalf("thread fields unexpected: %+v", th)
	}
	if len(th.UserComments) != 1 || th.UserComments[0].ID != "u1" {
		t.Fatalf("user comments unexpected: %+v", th.UserComments)
	}
	if th.UserComments[0].Depth != 1 {
		t.Fatalf("user comment depth = %d, want 1", th.UserComments[0].Depth)
	}

	// op1 (parent) and op2, by1 (replies) belong to the exchange; dave does not.
	opIDs := make(map[string]bool)
	for _, c := range th.OpponentComments {
		opIDs[c.ID] = true
	}
	if !opIDs["op1"] || !opIDs["op2"] || !opIDs["by1"] || opIDs["lurk"] {
		t.Fatalf("opponent partition unexpected: %v", opIDs)
	}
}

func TestBuildThreads_CapsAndOrdersByActivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(treeJSON("t", "")))
	}))
	defer srv.Close()

	history := []domain.Comment{
		{ID: "a1", Author: "alice", LinkID: "t3_p1", Subreddit: "s"},
		{ID: "a2", Author: "alice", LinkID: "t3_p2", Subreddit: "s"},
		{ID: "a3", Author: "alice", LinkID: "t3_p2", Subreddit: "s"},
	}
	f := testFetcher(srv.URL)
	f.maxThreads = 1
	threads, err := f.BuildThreads(context.Background(), "alice", history)
	if err != nil {
		t.Fatalf("BuildThreads error: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("got %d threads, want 1", len(threads))
	}
	// p2 has two comments, p1 one; the cap keeps the busier thread.
	if threads[0].ThreadID != "p2" {
		t.Fatalf("kept thread = %q, want p2", threads[0].ThreadID)
	}
}

func TestBuildThreads_SkipsDeadSubmissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments/gone.json") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(treeJSON("alive", `{"kind":"t1","data":{"id":"u9","author":"alice","body":"hi","parent_id":"t3_ok","link_id":"t3_ok","subreddit":"s"}}`)))
	}))
	defer srv.Close()

	history := []domain.Comment{
		{ID: "u8", Author: "alice", LinkID: "t3_gone", Subreddit: "s"},
		{ID: "u9", Author: "alice", LinkID: "t3_ok", Subreddit: "s"},
	}
	threads, err := testFetcher(srv.URL).BuildThreads(context.Background(), "alice", history)
	if err != nil {
		t.Fatalf("BuildThreads error: %v", err)
	}
	if len(threads) != 1 || threads[0].ThreadID != "ok" {
		t.Fatalf("threads unexpected: %+v", threads)
	}
}
