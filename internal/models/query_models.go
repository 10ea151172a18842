package models

import "strings"

// Mode selects how queries are planned and how strictly threads are filtered.
type Mode int

const (
	ModeOpen Mode = iota
	ModeCategory
)

func (m Mode) String() string {
	if m == ModeCategory {
		return "category"
	}
	return "open"
}

// Scope restricts a search to a set of subreddits. The zero value searches
// every subreddit.
type Scope struct {
	subreddits []string
}

var ScopeAll = Scope{}

func NewScope(subreddits ...string) Scope {
	return Scope{subreddits: append([]string(nil), subreddits...)}
}

func (s Scope) IsAll() bool { return len(s.subreddits) == 0 }

func (s Scope) Subreddits() []string { return append([]string(nil), s.subreddits...) }

// Path is the subreddit segment of a Reddit URL: "all" or "a+b".
func (s Scope) Path() string {
	if s.IsAll() {
		return "all"
	}
	return strings.Join(s.subreddits, "+")
}

func (s Scope) String() string { return "r/" + s.Path() }

// SearchQuery is one search to run. Position in a plan is significant: earlier
// queries win dedup ties.
type SearchQuery struct {
	Text  string
	Scope Scope
}

// PlanResult is the ordered output of the query planner.
type PlanResult struct {
	Mode    Mode
	Queries []SearchQuery
}

// CandidateThread is a discussion returned by a search, with its top-level
// comments already flattened in the platform's "top" order.
type CandidateThread struct {
	URL          string
	Title        string
	Subreddit    string
	Score        int
	CommentCount int
	BodyText     string
	TopComments  []string
}
