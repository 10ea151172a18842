package processing

import (
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/honestreviews/internal/models"
	"github.com/spacesedan/honestreviews/internal/utils"
)

var placeholderComments = map[string]struct{}{
	"":          {},
	"[removed]": {},
	"[deleted]": {},
}

func isPlaceholder(body string) bool {
	_, ok := placeholderComments[strings.TrimSpace(body)]
	return ok
}

// selectComments keeps comments in the order given, dropping placeholders and
// comments shorter than MinCommentLength, up to MaxCommentsPerThread.
func selectComments(raw []string, s AggregateSettings) []string {
	selected := make([]string, 0, min(len(raw), s.MaxCommentsPerThread))
	for _, body := range raw {
		if len(selected) >= s.MaxCommentsPerThread {
			break
		}
		if isPlaceholder(body) {
			continue
		}
		text := utils.MarkdownToText(body)
		if text == "" || utf8.RuneCountInString(text) < s.MinCommentLength {
			continue
		}
		selected = append(selected, utils.TruncateRunes(text, s.CommentCeiling))
	}
	return selected
}

// buildFragment renders one accepted thread:
//
//	### Post from r/<sub>
//	Title: <title>
//	Body: <body>
//
//	Comment: <comment>
func buildFragment(thread models.CandidateThread, s AggregateSettings) string {
	var b strings.Builder
	b.WriteString("### Post from r/")
	b.WriteString(thread.Subreddit)
	b.WriteString("\nTitle: ")
	b.WriteString(strings.TrimSpace(thread.Title))

	if body := utils.TruncateRunes(utils.MarkdownToText(thread.BodyText), s.BodyCeiling); body != "" {
		b.WriteString("\nBody: ")
		b.WriteString(body)
	}

	for _, comment := range selectComments(thread.TopComments, s) {
		b.WriteString("\n\nComment: ")
		b.WriteString(comment)
	}
	return b.String()
}

func citationFor(thread models.CandidateThread) models.SourceCitation {
	return models.SourceCitation{
		Title:     thread.Title,
		URL:       thread.URL,
		Subreddit: thread.Subreddit,
		Score:     thread.Score,
	}
}
