// internal/provider/twitter/trends_test.go

package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trendsPayload = `[
  {
    "trends": [
      {"name": "#GoLang", "url": "http://twitter.com/search?q=%23GoLang", "query": "%23GoLang", "tweet_volume": 52100},
      {"name": "Rust", "url": "http://twitter.com/search?q=Rust", "query": "Rust", "tweet_volume": null},
      {"name": "", "url": "", "query": "", "tweet_volume": 12}
    ],
    "as_of": "2024-03-01T10:00:00Z"
  }
]`

func newTestTrendsClient(handler http.Handler) (*TrendsClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	client := NewTrendsClient("test-token", 1)
	client.BaseURL = server.URL
	client.HTTPClient = server.Client()

	return client, server
}

func TestCurrentTrends_MapsTrendingTopics(t *testing.T) {
	var gotPath, gotAuth string
	client, server := newTestTrendsClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(trendsPayload))
	}))
	defer server.Close()

	topics, err := client.CurrentTrends(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/trends/place.json?id=1", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)

	require.Len(t, topics, 3)

	assert.Equal(t, "#GoLang", topics[0].Name)
	assert.Equal(t, "#GoLang", topics[0].Query)
	assert.Equal(t, 1, topics[0].Rank)
	assert.Equal(t, 52100, topics[0].TweetVolume)

	assert.Equal(t, "Rust", topics[1].Name)
	assert.Equal(t, 2, topics[1].Rank)
	assert.Zero(t, topics[1].TweetVolume)

	assert.Equal(t, 3, topics[2].Rank)
}

func TestCurrentTrends_UsesConfiguredWOEID(t *testing.T) {
	var gotID string
	client, server := newTestTrendsClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client.WOEID = 23424977

	_, err := client.CurrentTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "23424977", gotID)
}

func TestCurrentTrends_EmptyPayloadYieldsEmptySet(t *testing.T) {
	client, server := newTestTrendsClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	topics, err := client.CurrentTrends(context.Background())
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestCurrentTrends_NonOKStatusIsAnError(t *testing.T) {
	client, server := newTestTrendsClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := client.CurrentTrends(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCurrentTrends_RequiresBearerToken(t *testing.T) {
	client := NewTrendsClient("", 1)

	_, err := client.CurrentTrends(context.Background())
	require.Error(t, err)
}
