package processing

import (
	"context"
	"errors"
	"testing"

	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedditAPI struct {
	posts       []models.RedditPostData
	searchErr   error
	comments    map[string][]models.RedditCommentData
	commentErr  error
	searchArgs  []string
	commentsFor []string
}

func (f *fakeRedditAPI) Search(_ context.Context, scopePath, query, timeFilter string, limit int) ([]models.RedditPostData, error) {
	f.searchArgs = append(f.searchArgs, scopePath, query, timeFilter)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.posts, nil
}

func (f *fakeRedditAPI) TopComments(_ context.Context, postID string, limit int) ([]models.RedditCommentData, error) {
	f.commentsFor = append(f.commentsFor, postID)
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	return f.comments[postID], nil
}

func TestRedditFetcher_Search(t *testing.T) {
	api := &fakeRedditAPI{
		posts: []models.RedditPostData{
			{ID: "a", Subreddit: "gadgets", Title: "A", Selftext: "body", Permalink: "/r/gadgets/comments/a/x/", Score: 5, NumComments: 2},
			{ID: "b", Subreddit: "gadgets", Title: "B", Permalink: "/r/gadgets/comments/b/y/", NumComments: 0},
			{ID: "c", Subreddit: "gadgets", Title: "C", Permalink: "/r/gadgets/comments/c/z/", NumComments: 1},
		},
		comments: map[string][]models.RedditCommentData{
			"a": {{Body: "first"}, {Body: "second"}},
		},
	}

	var threads []models.CandidateThread
	for th, err := range NewRedditFetcher(api).Search(context.Background(), models.SearchQuery{Text: "Acme", Scope: models.NewScope("gadgets")}, 2, nil) {
		require.NoError(t, err)
		threads = append(threads, th)
	}

	require.Len(t, threads, 2)
	assert.Equal(t, []string{"gadgets", "Acme", "all"}, api.searchArgs)
	assert.Equal(t, "https://www.reddit.com/r/gadgets/comments/a/x/", threads[0].URL)
	assert.Equal(t, []string{"first", "second"}, threads[0].TopComments)
	assert.Equal(t, "body", threads[0].BodyText)
	assert.Equal(t, 2, threads[0].CommentCount)
	assert.Empty(t, threads[1].TopComments)
	assert.Equal(t, []string{"a"}, api.commentsFor)
}

func TestRedditFetcher_OpenScopeUsesYearFilter(t *testing.T) {
	api := &fakeRedditAPI{}

	for range NewRedditFetcher(api).Search(context.Background(), models.SearchQuery{Text: "q", Scope: models.ScopeAll}, 6, nil) {
	}

	assert.Equal(t, []string{"all", "q", "year"}, api.searchArgs)
}

func TestRedditFetcher_LazyComments(t *testing.T) {
	api := &fakeRedditAPI{
		posts: []models.RedditPostData{
			{ID: "a", Permalink: "/r/x/comments/a/", NumComments: 3},
			{ID: "b", Permalink: "/r/x/comments/b/", NumComments: 3},
		},
	}

	for range NewRedditFetcher(api).Search(context.Background(), models.SearchQuery{Text: "q"}, 5, nil) {
		break
	}

	assert.Equal(t, []string{"a"}, api.commentsFor)
}

func TestRedditFetcher_CommentFailureKeepsThread(t *testing.T) {
	api := &fakeRedditAPI{
		posts:      []models.RedditPostData{{ID: "a", Permalink: "/r/x/comments/a/", NumComments: 3}},
		commentErr: errors.New("HTTP 500"),
	}

	var threads []models.CandidateThread
	for th, err := range NewRedditFetcher(api).Search(context.Background(), models.SearchQuery{Text: "q"}, 5, nil) {
		require.NoError(t, err)
		threads = append(threads, th)
	}

	require.Len(t, threads, 1)
	assert.Empty(t, threads[0].TopComments)
}

func TestRedditFetcher_SearchFailure(t *testing.T) {
	cause := errors.New("HTTP 403")
	api := &fakeRedditAPI{searchErr: cause}

	var errs []error
	for _, err := range NewRedditFetcher(api).Search(context.Background(), models.SearchQuery{Text: "q", Scope: models.NewScope("private")}, 5, nil) {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.Equal(t, faults.ScopeAccessError, faults.KindOf(errs[0]))
	assert.ErrorIs(t, errs[0], cause)
}

func TestRedditFetcher_AdmitSkipsCommentFetch(t *testing.T) {
	api := &fakeRedditAPI{
		posts: []models.RedditPostData{
			{ID: "a", Permalink: "/r/x/comments/a/", NumComments: 4},
			{ID: "b", Permalink: "/r/x/comments/b/", NumComments: 4},
		},
	}
	admit := func(th models.CandidateThread) bool {
		return th.URL != "https://www.reddit.com/r/x/comments/a/"
	}

	var urls []string
	for th, err := range NewRedditFetcher(api).Search(context.Background(), models.SearchQuery{Text: "q"}, 5, admit) {
		require.NoError(t, err)
		urls = append(urls, th.URL)
	}

	assert.Equal(t, []string{"https://www.reddit.com/r/x/comments/b/"}, urls)
	assert.Equal(t, []string{"b"}, api.commentsFor)
}

func TestAggregate_FetchesCommentsOnlyForAcceptedThreads(t *testing.T) {
	api := &fakeRedditAPI{
		posts: []models.RedditPostData{
			{ID: "dup", Subreddit: "x", Title: "Dup", Permalink: "/r/x/comments/dup/", NumComments: 5},
			{ID: "low", Subreddit: "x", Title: "Low", Permalink: "/r/x/comments/low/", NumComments: 2},
		},
		comments: map[string][]models.RedditCommentData{
			"dup": {{Body: "The battery easily lasts two full days for me."}},
		},
	}

	corpus, err := NewAggregator(NewRedditFetcher(api), 1).Aggregate(context.Background(), "Acme", openPlan("Acme"))

	require.NoError(t, err)
	require.Len(t, corpus.Sources, 1)
	assert.Equal(t, "https://www.reddit.com/r/x/comments/dup/", corpus.Sources[0].URL)
	assert.Len(t, api.searchArgs, 4*3)
	assert.Equal(t, []string{"dup"}, api.commentsFor)
}
