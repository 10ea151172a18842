package clients

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ResponseCache stores raw Reddit responses. Implementations must be safe
// for concurrent use; a miss or a failure both report ok=false.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// StatusError is a non-2xx answer from the Reddit API.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

var errTokenExpired = errors.New("reddit token expired")

type RedditClient struct {
	config    *clientcredentials.Config
	client    *http.Client
	mu        sync.Mutex
	apiURL    string
	userAgent string

	cache    ResponseCache
	cacheTTL time.Duration

	spacing     time.Duration
	throttleMu  sync.Mutex
	lastRequest time.Time

	attempts     uint
	retryDelay   time.Duration
	maxRetryWait time.Duration
}

type RedditOption func(*RedditClient)

// WithRedditEndpoints points the client at a different API and token host.
func WithRedditEndpoints(apiURL, tokenURL string) RedditOption {
	return func(rc *RedditClient) {
		rc.apiURL = apiURL
		rc.config.TokenURL = tokenURL
	}
}

func WithResponseCache(cache ResponseCache, ttl time.Duration) RedditOption {
	return func(rc *RedditClient) {
		rc.cache = cache
		rc.cacheTTL = ttl
	}
}

// WithRequestSpacing sets the minimum gap between two outgoing requests.
func WithRequestSpacing(d time.Duration) RedditOption {
	return func(rc *RedditClient) { rc.spacing = d }
}

func WithRetryBackoff(attempts uint, initial, max time.Duration) RedditOption {
	return func(rc *RedditClient) {
		rc.attempts = attempts
		rc.retryDelay = initial
		rc.maxRetryWait = max
	}
}

func NewRedditClient(cfg config.RedditConfig, opts ...RedditOption) *RedditClient {
	rc := &RedditClient{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     REDDIT_AUTH_URL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		apiURL:       REDDIT_API_URL,
		userAgent:    cfg.UserAgent,
		cacheTTL:     cfg.CacheTTL,
		spacing:      REQUEST_SPACING,
		attempts:     MAX_RETRIES,
		retryDelay:   INITIAL_BACKOFF,
		maxRetryWait: MAX_BACKOFF,
	}
	if rc.userAgent == "" {
		rc.userAgent = config.DEFAULT_USER_AGENT
	}
	for _, opt := range opts {
		opt(rc)
	}
	rc.client = rc.config.Client(context.Background())
	return rc
}

// RefreshClient drops the cached token so the next request fetches a new one.
func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.client = rc.config.Client(context.Background())
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client
}

// Search runs a relevance-sorted search restricted to scopePath ("all" or
// "a+b") and returns the matching posts in listing order.
func (rc *RedditClient) Search(ctx context.Context, scopePath, query, timeFilter string, limit int) ([]models.RedditPostData, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "relevance")
	params.Set("t", timeFilter)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("restrict_sr", "on")
	params.Set("raw_json", "1")

	body, err := rc.get(ctx, "/r/"+scopePath+"/search", params)
	if err != nil {
		return nil, err
	}

	var listing models.RedditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to decode search listing: %w", err)
	}

	posts := make([]models.RedditPostData, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != models.RedditKindPost {
			continue
		}
		var post models.RedditPostData
		if err := json.Unmarshal(child.Data, &post); err != nil {
			slog.Warn("[RedditClient] Skipping malformed post", slog.String("error", err.Error()))
			continue
		}
		posts = append(posts, post)
	}

	slog.Debug("[RedditClient] Search completed",
		slog.String("scope", scopePath),
		slog.String("query", query),
		slog.Int("posts", len(posts)))
	return posts, nil
}

// TopComments returns up to limit top-level comments of a post, ordered by
// Reddit's "top" sort. "load more" stubs are dropped.
func (rc *RedditClient) TopComments(ctx context.Context, postID string, limit int) ([]models.RedditCommentData, error) {
	params := url.Values{}
	params.Set("sort", "top")
	params.Set("depth", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")

	body, err := rc.get(ctx, "/comments/"+postID, params)
	if err != nil {
		return nil, err
	}

	// [0] is the post itself, [1] the comment tree
	var listings []models.RedditListing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to decode comments for %s: %w", postID, err)
	}
	if len(listings) < 2 {
		return nil, nil
	}

	comments := make([]models.RedditCommentData, 0, limit)
	for _, child := range listings[1].Data.Children {
		if child.Kind != models.RedditKindComment {
			continue
		}
		var comment models.RedditCommentData
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			continue
		}
		comments = append(comments, comment)
		if len(comments) == limit {
			break
		}
	}
	return comments, nil
}

func (rc *RedditClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	target := rc.apiURL + path + "?" + params.Encode()
	key := cacheKey(path, params)

	if rc.cache != nil {
		if cached, ok := rc.cache.Get(ctx, key); ok {
			slog.Debug("[RedditClient] Cache hit", slog.String("path", path))
			return cached, nil
		}
	}

	var (
		body      []byte
		refreshed bool
	)
	err := retry.Do(
		func() error {
			if err := rc.throttle(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("User-Agent", rc.userAgent)

			resp, err := rc.httpClient().Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(ctx.Err())
				}
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				body, err = io.ReadAll(resp.Body)
				return err
			case resp.StatusCode == http.StatusUnauthorized && !refreshed:
				slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
				refreshed = true
				rc.RefreshClient()
				return errTokenExpired
			}

			statusErr := &StatusError{StatusCode: resp.StatusCode, URL: path}
			if statusErr.retryable() {
				return statusErr
			}
			return retry.Unrecoverable(statusErr)
		},
		retry.Attempts(rc.attempts),
		retry.Delay(rc.retryDelay),
		retry.MaxDelay(rc.maxRetryWait),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("[RedditClient] Retrying request",
				slog.Int("attempt", int(n)+1),
				slog.String("path", path),
				slog.String("error", err.Error()))
		}),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, errTokenExpired) {
				return true
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.retryable()
			}
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] GET %s: %w", path, err)
	}

	if rc.cache != nil {
		rc.cache.Set(ctx, key, body, rc.cacheTTL)
	}
	return body, nil
}

// throttle blocks until at least rc.spacing has passed since the previous
// request left this client.
func (rc *RedditClient) throttle(ctx context.Context) error {
	rc.throttleMu.Lock()
	defer rc.throttleMu.Unlock()

	if wait := rc.spacing - time.Since(rc.lastRequest); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	rc.lastRequest = time.Now()
	return nil
}

func cacheKey(path string, params url.Values) string {
	sum := sha256.Sum256([]byte(path + "?" + params.Encode()))
	return "reddit:" + hex.EncodeToString(sum[:])
}
