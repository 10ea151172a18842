package utils

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// RemoveLinks keeps the text of markdown links and drops bare URLs.
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// CollapseWhitespace replaces every whitespace run with one space and trims
// both ends.
func CollapseWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// MarkdownToText renders Reddit markdown and returns its visible text with
// links removed and whitespace collapsed.
func MarkdownToText(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	// renderers carry state, so one per call; no smartypants so quotes and
	// dashes stay as typed
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})
	html := blackfriday.Run([]byte(input),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return CollapseWhitespace(RemoveLinks(input))
	}

	// keep words in adjacent blocks apart
	doc.Find("br, p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return CollapseWhitespace(RemoveLinks(doc.Text()))
}

// TruncateRunes cuts s to at most max runes without splitting a character.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
