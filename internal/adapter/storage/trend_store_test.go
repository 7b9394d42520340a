// internal/adapter/storage/trend_store_test.go

package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwatch/internal/domain/trend"
)

// newTestStore connects to the database named by TRENDWATCH_TEST_DATABASE_URL
// and hands back a store over a clean trend_records table. Tests are skipped
// when the variable is unset.
func newTestStore(t *testing.T) *TrendStore {
	t.Helper()

	url := os.Getenv("TRENDWATCH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TRENDWATCH_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewTrendStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	_, err = pool.Exec(ctx, "TRUNCATE trend_records")
	require.NoError(t, err)

	return store
}

func sampleRecord(name string, rank int) trend.Record {
	return trend.Record{
		Name:                 name,
		Rank:                 rank,
		SentimentScore:       0.25,
		SentimentDescription: "Positive",
		TweetsAnalyzed:       8,
		Keywords:             []trend.Keyword{{Word: "alpha", Occurrences: 10}, {Word: "beta", Occurrences: 3}},
		Tweets:               []trend.Tweet{{ID: "1", Text: "hello", Author: "42", Likes: 2, Retweets: 1, PostedAt: time.Now().UTC().Truncate(time.Second)}},
		Articles:             []trend.Article{{Title: "headline", URL: "https://example.com/a", Source: "Example", PublishedAt: time.Now().UTC().Truncate(time.Second)}},
	}
}

func TestTrendStore_UpsertAndFindByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleRecord("golang", 1)
	require.NoError(t, store.Upsert(ctx, want))

	got, err := store.FindByName(ctx, "golang")
	require.NoError(t, err)

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Rank, got.Rank)
	assert.InDelta(t, want.SentimentScore, got.SentimentScore, 1e-9)
	assert.Equal(t, want.SentimentDescription, got.SentimentDescription)
	assert.Equal(t, want.TweetsAnalyzed, got.TweetsAnalyzed)
	assert.Equal(t, want.Keywords, got.Keywords)
	require.Len(t, got.Tweets, 1)
	assert.Equal(t, want.Tweets[0].Text, got.Tweets[0].Text)
	require.Len(t, got.Articles, 1)
	assert.Equal(t, want.Articles[0].URL, got.Articles[0].URL)
	assert.False(t, got.FirstSeen.IsZero())
	assert.False(t, got.LastUpdated.IsZero())
}

func TestTrendStore_FindByNameMissingReturnsErrNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FindByName(context.Background(), "nope")
	assert.ErrorIs(t, err, trend.ErrNotFound)
}

func TestTrendStore_UpsertReplacesExistingAndKeepsFirstSeen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, sampleRecord("golang", 5)))

	first, err := store.FindByName(ctx, "golang")
	require.NoError(t, err)

	updated := sampleRecord("golang", 1)
	updated.SentimentScore = -0.5
	updated.TweetsAnalyzed = 20
	updated.FirstSeen = first.FirstSeen
	require.NoError(t, store.Upsert(ctx, updated))

	got, err := store.FindByName(ctx, "golang")
	require.NoError(t, err)

	assert.Equal(t, 1, got.Rank)
	assert.InDelta(t, -0.5, got.SentimentScore, 1e-9)
	assert.Equal(t, int64(20), got.TweetsAnalyzed)
	assert.WithinDuration(t, first.FirstSeen, got.FirstSeen, time.Millisecond)
	assert.False(t, got.LastUpdated.Before(first.LastUpdated))
}

func TestTrendStore_DeleteAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, sampleRecord("keep", 1)))
	require.NoError(t, store.Upsert(ctx, sampleRecord("stale-one", 2)))
	require.NoError(t, store.Upsert(ctx, sampleRecord("stale-two", 3)))

	removed, err := store.DeleteAbsent(ctx, []string{"keep", "never-stored"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = store.FindByName(ctx, "keep")
	assert.NoError(t, err)

	_, err = store.FindByName(ctx, "stale-one")
	assert.ErrorIs(t, err, trend.ErrNotFound)
}

func TestTrendStore_DeleteAbsentWithEmptySetRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, sampleRecord("one", 1)))
	require.NoError(t, store.Upsert(ctx, sampleRecord("two", 2)))

	removed, err := store.DeleteAbsent(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTrendStore_ListOrdersByRank(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, sampleRecord("third", 3)))
	require.NoError(t, store.Upsert(ctx, sampleRecord("first", 1)))
	require.NoError(t, store.Upsert(ctx, sampleRecord("second", 2)))

	records, err := store.List(ctx)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "second", records[1].Name)
	assert.Equal(t, "third", records[2].Name)
}
