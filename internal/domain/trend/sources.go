// internal/domain/trend/sources.go

package trend

import (
	"context"
)

// TrendSource reports the set of currently trending topics
type TrendSource interface {
	// CurrentTrends returns the current trending set in rank order
	CurrentTrends(ctx context.Context) ([]Topic, error)
}

// NewsProvider fetches news coverage for a topic
type NewsProvider interface {
	// TopHeadlines returns up to limit articles about the query
	TopHeadlines(ctx context.Context, query string, limit int) ([]Article, error)
}

// TweetProvider fetches a sample of recent tweets for a topic
type TweetProvider interface {
	// Sample returns up to limit recent tweets matching the query
	Sample(ctx context.Context, query string, limit int) ([]Tweet, error)
}

// StreamTracker accumulates live sentiment windows per trend name
type StreamTracker interface {
	// Snapshot drains and returns the window gathered since the previous
	// call, keyed by trend name. Names without a window are absent.
	Snapshot(ctx context.Context) (map[string]StreamStats, error)
}
