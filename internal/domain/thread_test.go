package domain

import "testing"

func TestCommentWordCount(t *testing.T) {
	cases := map[string]struct {
		body string
		want int
	}{
		"empty":      {"", 0},
		"spaces":     {"   ", 0},
		"one":        {"hello", 1},
		"multi":      {"this is a short comment", 5},
		"whitespace": {"tabs\tand\nnewlines count too", 5},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := Comment{Body: tc.body}
			if got := c.WordCount(); got != tc.want {
				t.Fatalf("WordCount() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIsReplyToComment(t *testing.T) {
	if !(Comment{ParentID: "t1_abc"}).IsReplyToComment() {
		t.Fatal("t1_ parent should be a comment reply")
	}
	if (Comment{ParentID: "t3_abc"}).IsReplyToComment() {
		t.Fatal("t3_ parent is a submission, not a comment")
	}
}

func TestThreadHelpers(t *testing.T) {
	th := DebateThread{
		UserComments: []Comment{
			{Body: "one two three", Depth: 0},
			{Body: "four five", Depth: 3},
		},
	}
	if got := th.UserCommentCount(); got != 2 {
		t.Fatalf("UserCommentCount() = %d, want 2", got)
	}
	if got := th.TotalUserWords(); got != 5 {
		t.Fatalf("TotalUserWords() = %d, want 5", got)
	}
	if got := th.MaxDepth(); got != 3 {
		t.Fatalf("MaxDepth() = %d, want 3", got)
	}
}

func TestTopicCategoryOrDefault(t *testing.T) {
	th := DebateThread{}
	if got := th.TopicCategoryOrDefault(); got != "other" {
		t.Fatalf("TopicCategoryOrDefault() = %q, want other", got)
	}
	th.Metadata = &DebateMetadata{TopicCategory: "politics"}
	if got := th.TopicCategoryOrDefault(); got != "politics" {
		t.Fatalf("TopicCategoryOrDefault() = %q, want politics", got)
	}
}

func TestParseOutcome(t *testing.T) {
	if got := ParseOutcome("user_won"); got != OutcomeUserWon {
		t.Fatalf("ParseOutcome(user_won) = %q", got)
	}
	if got := ParseOutcome("garbage"); got != OutcomeUnresolved {
		t.Fatalf("ParseOutcome(garbage) = %q, want unresolved", got)
	}
}
