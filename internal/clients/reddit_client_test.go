package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/honestreviews/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchListing = `{"kind":"Listing","data":{"after":null,"children":[
 {"kind":"t3","data":{"id":"abc","subreddit":"gadgets","title":"Acme Widget review","selftext":"It works","permalink":"/r/gadgets/comments/abc/acme_widget_review/","score":42,"num_comments":7}},
 {"kind":"t5","data":{"id":"ignored"}},
 {"kind":"t3","data":{"id":"def","subreddit":"tech","title":"Widget thoughts","selftext":"","permalink":"/r/tech/comments/def/widget_thoughts/","score":3,"num_comments":0}}
]}}`

const commentListing = `[
 {"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"abc"}}]}},
 {"kind":"Listing","data":{"children":[
  {"kind":"t1","data":{"id":"c1","body":"Battery life is great on this one","score":10}},
  {"kind":"t1","data":{"id":"c2","body":"[deleted]","score":5}},
  {"kind":"more","data":{"id":"m1"}},
  {"kind":"t1","data":{"id":"c3","body":"Third","score":1}}
 ]}}
]`

type redditStub struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	search      http.HandlerFunc
}

func newRedditStub(t *testing.T) *redditStub {
	t.Helper()
	stub := &redditStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		stub.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/r/", func(w http.ResponseWriter, r *http.Request) {
		stub.searchCalls.Add(1)
		stub.search(w, r)
	})
	mux.HandleFunc("/comments/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(commentListing))
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *redditStub) client(opts ...RedditOption) *RedditClient {
	base := []RedditOption{
		WithRedditEndpoints(s.server.URL, s.server.URL+"/api/v1/access_token"),
		WithRequestSpacing(0),
		WithRetryBackoff(4, time.Millisecond, 5*time.Millisecond),
	}
	return NewRedditClient(config.RedditConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "test-agent/1.0",
	}, append(base, opts...)...)
}

func TestRedditClient_Search(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/gadgets+tech/search", r.URL.Path)
		assert.Equal(t, "Acme Widget", r.URL.Query().Get("q"))
		assert.Equal(t, "relevance", r.URL.Query().Get("sort"))
		assert.Equal(t, "all", r.URL.Query().Get("t"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "on", r.URL.Query().Get("restrict_sr"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(searchListing))
	}

	posts, err := stub.client().Search(context.Background(), "gadgets+tech", "Acme Widget", "all", 5)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "abc", posts[0].ID)
	assert.Equal(t, "/r/gadgets/comments/abc/acme_widget_review/", posts[0].Permalink)
	assert.Equal(t, 7, posts[0].NumComments)
	assert.Equal(t, "def", posts[1].ID)
}

func TestRedditClient_RetriesTooManyRequests(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		if stub.searchCalls.Load() < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(searchListing))
	}

	posts, err := stub.client().Search(context.Background(), "all", "widget", "year", 6)

	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, int32(3), stub.searchCalls.Load())
}

func TestRedditClient_ServerErrorsExhaustRetries(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}

	_, err := stub.client().Search(context.Background(), "all", "widget", "year", 6)

	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(4), stub.searchCalls.Load())
}

func TestRedditClient_ForbiddenIsNotRetried(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}

	_, err := stub.client().Search(context.Background(), "private", "widget", "all", 5)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), stub.searchCalls.Load())
}

func TestRedditClient_RefreshesTokenOnce(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		if stub.searchCalls.Load() == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(searchListing))
	}

	_, err := stub.client().Search(context.Background(), "all", "widget", "year", 6)

	require.NoError(t, err)
	assert.Equal(t, int32(2), stub.tokenCalls.Load())
}

func TestRedditClient_TopComments(t *testing.T) {
	stub := newRedditStub(t)

	comments, err := stub.client().TopComments(context.Background(), "abc", 10)

	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "[deleted]", comments[1].Body)
	assert.Equal(t, "c3", comments[2].ID)

	limited, err := stub.client().TopComments(context.Background(), "abc", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func TestRedditClient_ResponseCache(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchListing))
	}
	rc := stub.client(WithResponseCache(&mapCache{data: map[string][]byte{}}, time.Minute))

	first, err := rc.Search(context.Background(), "all", "widget", "year", 6)
	require.NoError(t, err)
	second, err := rc.Search(context.Background(), "all", "widget", "year", 6)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), stub.searchCalls.Load())
}

func TestRedditClient_Throttle(t *testing.T) {
	stub := newRedditStub(t)
	stub.search = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchListing))
	}
	rc := stub.client(WithRequestSpacing(30 * time.Millisecond))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := rc.Search(context.Background(), "all", "widget", "year", 6)
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
