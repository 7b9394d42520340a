// internal/tracker/tracker_test.go

package tracker

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwatch/internal/domain/trend"
)

// newTestTracker connects to the Redis named by TRENDWATCH_TEST_REDIS_URL
// under a key prefix unique to the test, so runs do not see each other's
// windows. Tests are skipped when the variable is unset.
func newTestTracker(t *testing.T, keywordLimit int) *Tracker {
	t.Helper()

	url := os.Getenv("TRENDWATCH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TRENDWATCH_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	rdb, err := NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	prefix := fmt.Sprintf("trackertest:%s:%d", t.Name(), time.Now().UnixNano())
	return NewTracker(rdb, prefix, keywordLimit)
}

func TestTracker_SnapshotAveragesRecordedScores(t *testing.T) {
	tr := newTestTracker(t, 10)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "golang", 0.5, []string{"generics", "release"}))
	require.NoError(t, tr.Record(ctx, "golang", -0.1, []string{"generics"}))
	require.NoError(t, tr.Record(ctx, "rustlang", 1, nil))

	stats, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	golang := stats["golang"]
	assert.InDelta(t, 0.2, golang.Sentiment, 1e-9)
	assert.Equal(t, int64(2), golang.TweetsAnalyzed)
	require.Len(t, golang.Keywords, 2)
	assert.Equal(t, "generics", golang.Keywords[0].Word)
	assert.Equal(t, int64(2), golang.Keywords[0].Occurrences)
	assert.Equal(t, "release", golang.Keywords[1].Word)
	assert.Equal(t, int64(1), golang.Keywords[1].Occurrences)

	rust := stats["rustlang"]
	assert.InDelta(t, 1, rust.Sentiment, 1e-9)
	assert.Equal(t, int64(1), rust.TweetsAnalyzed)
	assert.Empty(t, rust.Keywords)
}

func TestTracker_SnapshotDrainsWindows(t *testing.T) {
	tr := newTestTracker(t, 10)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "golang", 0.4, []string{"tip"}))

	first, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	require.Contains(t, first, "golang")

	second, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestTracker_SnapshotBoundsKeywords(t *testing.T) {
	tr := newTestTracker(t, 2)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "golang", 0, []string{"a", "b", "c"}))
	require.NoError(t, tr.Record(ctx, "golang", 0, []string{"a", "b"}))
	require.NoError(t, tr.Record(ctx, "golang", 0, []string{"a"}))

	stats, err := tr.Snapshot(ctx)
	require.NoError(t, err)

	keywords := stats["golang"].Keywords
	require.Len(t, keywords, 2)
	assert.Equal(t, "a", keywords[0].Word)
	assert.Equal(t, int64(3), keywords[0].Occurrences)
	assert.Equal(t, "b", keywords[1].Word)
	assert.Equal(t, int64(2), keywords[1].Occurrences)
}

func TestParseWindow_AveragesSumOverCount(t *testing.T) {
	result := []interface{}{"1.5", "3", []interface{}{"go", "2", "gopher", "1"}}

	window, err := parseWindow(result)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, window.Sentiment, 1e-9)
	assert.Equal(t, int64(3), window.TweetsAnalyzed)
	assert.Equal(t, []trend.Keyword{
		{Word: "go", Occurrences: 2},
		{Word: "gopher", Occurrences: 1},
	}, window.Keywords)
}

func TestParseWindow_EmptyWindowHasNoSentiment(t *testing.T) {
	result := []interface{}{"0", "0", []interface{}{}}

	window, err := parseWindow(result)
	require.NoError(t, err)

	assert.Zero(t, window.Sentiment)
	assert.Zero(t, window.TweetsAnalyzed)
	assert.Empty(t, window.Keywords)
}

func TestParseWindow_RejectsMalformedResults(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
	}{
		{name: "not a slice", result: "nope"},
		{name: "wrong length", result: []interface{}{"1", "2"}},
		{name: "non-numeric sum", result: []interface{}{"abc", "2", []interface{}{}}},
		{name: "non-numeric count", result: []interface{}{"1", "abc", []interface{}{}}},
		{name: "keyword list of wrong type", result: []interface{}{"1", "2", "nope"}},
		{name: "non-numeric keyword count", result: []interface{}{"1", "2", []interface{}{"go", "abc"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWindow(tt.result)
			assert.Error(t, err)
		})
	}
}
