// Package analysis implements the debate analyzers. Each analyzer formats a
// slice of the user's history into a prompt, sends it through the reasoning
// client, and maps the returned JSON onto domain types. Scores that can be
// derived locally (overall quality, density buckets, ranks) are always
// recomputed here rather than trusted from the model.
package analysis

import (
	"fmt"
	"strings"

	"github.com/erislabs/go-debate-backend/internal/domain"
)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// formatComments renders comments as prompt lines, capping count and body
// length to keep token usage bounded.
func formatComments(comments []domain.Comment, maxComments, maxChars int) string {
	if len(comments) == 0 {
		return "No comments available"
	}
	var b strings.Builder
	for i, c := range comments {
		if i >= maxComments {
			break
		}
		fmt.Fprintf(&b, "[%s] (depth: %d, score: %d)\n", c.ID, c.Depth, c.Score)
		b.WriteString(truncate(c.Body, maxChars))
		b.WriteString("\n\n")
	}
	return b.String()
}

// threadContext returns topic, user position, and opponent position with
// "Unknown" placeholders when identification produced no metadata.
func threadContext(th *domain.DebateThread) (topic, userPos, oppPos string) {
	topic, userPos, oppPos = "Unknown", "Unknown", "Unknown"
	if th.Metadata == nil {
		return
	}
	if th.Metadata.Topic != "" {
		topic = th.Metadata.Topic
	}
	if th.Metadata.UserPosition != "" {
		userPos = th.Metadata.UserPosition
	}
	if th.Metadata.OpponentPosition != "" {
		oppPos = th.Metadata.OpponentPosition
	}
	return
}
