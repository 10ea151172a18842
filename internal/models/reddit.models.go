package models

import "encoding/json"

// RedditListing is the envelope Reddit wraps search results and comment
// trees in.
type RedditListing struct {
	Kind string            `json:"kind"`
	Data RedditListingData `json:"data"`
}

type RedditListingData struct {
	After    string        `json:"after"`
	Children []RedditChild `json:"children"`
}

// RedditChild keeps Data raw because a listing mixes posts (t3), comments
// (t1) and "load more" stubs (more).
type RedditChild struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type RedditPostData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Over18      bool    `json:"over_18"`
	CreatedUTC  float64 `json:"created_utc"`
}

type RedditCommentData struct {
	ID       string `json:"id"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	Score    int    `json:"score"`
	Stickied bool   `json:"stickied"`
}

const (
	RedditKindComment = "t1"
	RedditKindPost    = "t3"
	RedditKindMore    = "more"
)
