package models

import (
	"strings"
	"time"
)

type SourceCitation struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
}

// AggregatedCorpus holds one fragment per accepted thread. Fragments[i] is
// the text block for Sources[i].
type AggregatedCorpus struct {
	Fragments []string
	Sources   []SourceCitation
}

const FragmentSeparator = "\n\n"

func (c AggregatedCorpus) TextBlob() string {
	return strings.Join(c.Fragments, FragmentSeparator)
}

type WordCloudTerm struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type InsightResult struct {
	Conclusion     string          `json:"conclusion"`
	Pros           []string        `json:"pros"`
	Cons           []string        `json:"cons"`
	SentimentScore int             `json:"sentiment_score"`
	WordCloud      []WordCloudTerm `json:"word_cloud"`
}

// LexicalSentiment is a dictionary-based score of the same corpus the model
// saw, reported next to the model's own score.
type LexicalSentiment struct {
	Score    int     `json:"score"`
	Compound float64 `json:"compound"`
	Label    string  `json:"label"`
}

type AnalyzeRequest struct {
	ProductName string `json:"product_name"`
	Category    string `json:"category,omitempty"`
}

type AnalyzeResponse struct {
	Product  string            `json:"product"`
	Category string            `json:"category,omitempty"`
	Analysis InsightResult     `json:"analysis"`
	Sources  []SourceCitation  `json:"sources"`
	Baseline *LexicalSentiment `json:"baseline,omitempty"`
}

// AnalysisCompletedEvent is published after a successful analysis.
type AnalysisCompletedEvent struct {
	RequestID      string    `json:"request_id"`
	Product        string    `json:"product"`
	Category       string    `json:"category,omitempty"`
	Backend        string    `json:"backend"`
	SentimentScore int       `json:"sentiment_score"`
	BaselineScore  int       `json:"baseline_score"`
	SourceCount    int       `json:"source_count"`
	DurationMS     int64     `json:"duration_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}
