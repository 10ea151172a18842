package processing

import (
	"context"
	"iter"
	"log/slog"

	"github.com/spacesedan/honestreviews/internal/clients"
	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/logging"
	"github.com/spacesedan/honestreviews/internal/models"
)

const (
	// COMMENT_POOL is how many top-level comments are requested per thread
	// before placeholder and length filtering.
	COMMENT_POOL = 50

	TIME_FILTER_OPEN  = "year"
	TIME_FILTER_SCOPE = "all"
)

// Admit reports whether a listed thread should be resolved and yielded. It
// sees the thread before its comments are fetched. A nil Admit takes all.
type Admit func(models.CandidateThread) bool

// ThreadFetcher yields at most limit candidate threads for one query. Every
// call is a fresh fetch. A failed search yields a single ScopeAccessError.
type ThreadFetcher interface {
	Search(ctx context.Context, q models.SearchQuery, limit int, admit Admit) iter.Seq2[models.CandidateThread, error]
}

// RedditAPI is the part of the Reddit client the fetcher needs.
type RedditAPI interface {
	Search(ctx context.Context, scopePath, query, timeFilter string, limit int) ([]models.RedditPostData, error)
	TopComments(ctx context.Context, postID string, limit int) ([]models.RedditCommentData, error)
}

type RedditFetcher struct {
	api         RedditAPI
	commentPool int
}

func NewRedditFetcher(api RedditAPI) *RedditFetcher {
	return &RedditFetcher{api: api, commentPool: COMMENT_POOL}
}

// Search issues one listing request up front. Comments are fetched only for
// threads admit accepts, and only when the consumer asks for the next one.
func (f *RedditFetcher) Search(ctx context.Context, q models.SearchQuery, limit int, admit Admit) iter.Seq2[models.CandidateThread, error] {
	return func(yield func(models.CandidateThread, error) bool) {
		log := logging.FromContext(ctx)

		posts, err := f.api.Search(ctx, q.Scope.Path(), q.Text, timeFilterFor(q.Scope), limit)
		if err != nil {
			yield(models.CandidateThread{}, faults.NewScopeAccess(q.Scope.String(), err))
			return
		}

		for i, post := range posts {
			if i >= limit {
				return
			}

			thread := models.CandidateThread{
				URL:          clients.REDDIT_WEB_URL + post.Permalink,
				Title:        post.Title,
				Subreddit:    post.Subreddit,
				Score:        post.Score,
				CommentCount: post.NumComments,
				BodyText:     post.Selftext,
			}
			if admit != nil && !admit(thread) {
				continue
			}

			if post.NumComments > 0 {
				comments, err := f.api.TopComments(ctx, post.ID, f.commentPool)
				if err != nil {
					log.Warn("[ThreadFetcher] Failed to fetch comments, continuing without them",
						slog.String("post_id", post.ID),
						slog.String("error", err.Error()))
				}
				for _, c := range comments {
					thread.TopComments = append(thread.TopComments, c.Body)
				}
			}

			if !yield(thread, nil) {
				return
			}
		}
	}
}

// timeFilterFor keeps site-wide searches recent; subreddit searches look at
// the whole history.
func timeFilterFor(scope models.Scope) string {
	if scope.IsAll() {
		return TIME_FILTER_OPEN
	}
	return TIME_FILTER_SCOPE
}
