// internal/service/aggregate/aggregator.go

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trendwatch/internal/domain/trend"
	"trendwatch/internal/metrics"
)

// ErrEmptyTrendingSet is returned when the trend source reports no topics.
// The cycle aborts before touching any stored record, so a flaky source
// cannot wipe the table through reconciliation.
var ErrEmptyTrendingSet = errors.New("trend source returned an empty trending set")

// AggregatorConfig contains configuration for the aggregator
type AggregatorConfig struct {
	MaxTweetsPerTrend    int
	MaxKeywordsPerTrend  int
	MaxArticlesPerTrend  int
	FetchTimeout         time.Duration
	MaxConcurrentUpdates int
}

// EventSink receives trend lifecycle notifications. Implementations must be
// safe for concurrent use; publish failures never fail a cycle.
type EventSink interface {
	TrendCreated(rec trend.Record) error
	TrendUpdated(rec trend.Record) error
	TrendsRemoved(removed int64) error
	CycleCompleted(created, updated int, removed int64, failed int) error
}

// CycleSummary reports what one aggregation cycle did.
type CycleSummary struct {
	Topics  int
	Created int
	Updated int
	Removed int64
	Failed  int
}

// Aggregator folds the current trending set, provider fetches and drained
// stream windows into persisted trend records, one cycle at a time.
type Aggregator struct {
	source  trend.TrendSource
	news    trend.NewsProvider
	tweets  trend.TweetProvider
	tracker trend.StreamTracker
	store   trend.Store
	events  EventSink
	label   trend.LabelFunc
	config  AggregatorConfig
}

// NewAggregator creates a new aggregator. events may be nil to disable
// lifecycle notifications.
func NewAggregator(
	source trend.TrendSource,
	news trend.NewsProvider,
	tweets trend.TweetProvider,
	tracker trend.StreamTracker,
	store trend.Store,
	events EventSink,
	label trend.LabelFunc,
	config AggregatorConfig,
) *Aggregator {
	if config.MaxConcurrentUpdates < 1 {
		config.MaxConcurrentUpdates = 1
	}

	return &Aggregator{
		source:  source,
		news:    news,
		tweets:  tweets,
		tracker: tracker,
		store:   store,
		events:  events,
		label:   label,
		config:  config,
	}
}

// unitResult carries the outcome of one concurrent cycle unit.
type unitResult struct {
	name      string
	created   bool
	removed   int64
	reconcile bool
	err       error
}

// RunCycle executes one aggregation cycle: it fetches the trending set,
// drains the stream tracker once, updates every trending topic concurrently
// and removes records that left the set. Per-unit failures do not stop the
// other units; they are collected and returned joined together alongside the
// summary of what did succeed.
func (a *Aggregator) RunCycle(ctx context.Context) (CycleSummary, error) {
	started := time.Now()

	topics, err := a.fetchTopics(ctx)
	if err != nil {
		metrics.AggregationCyclesTotal.WithLabelValues("error").Inc()
		return CycleSummary{}, fmt.Errorf("fetching trending set: %w", err)
	}
	if len(topics) == 0 {
		metrics.AggregationCyclesTotal.WithLabelValues("error").Inc()
		return CycleSummary{}, ErrEmptyTrendingSet
	}

	metrics.TrendingSetSize.Set(float64(len(topics)))

	// One snapshot per cycle. Every window drained here is either consumed
	// by a trending topic below or dropped.
	windows, err := a.tracker.Snapshot(ctx)
	if err != nil {
		metrics.AggregationCyclesTotal.WithLabelValues("error").Inc()
		return CycleSummary{}, fmt.Errorf("snapshotting stream windows: %w", err)
	}

	results := make(chan unitResult, len(topics)+1)
	sem := make(chan struct{}, a.config.MaxConcurrentUpdates)

	var wg sync.WaitGroup
	for _, topic := range topics {
		wg.Add(1)
		go func(topic trend.Topic) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			var stream *trend.StreamStats
			if window, ok := windows[topic.Name]; ok {
				stream = &window
			}

			created, err := a.updateTrend(ctx, topic, stream)
			results <- unitResult{name: topic.Name, created: created, err: err}
		}(topic)
	}

	names := make([]string, len(topics))
	for i, topic := range topics {
		names[i] = topic.Name
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		removed, err := a.reconcile(ctx, names)
		results <- unitResult{reconcile: true, removed: removed, err: err}
	}()

	wg.Wait()
	close(results)

	summary := CycleSummary{Topics: len(topics)}
	var errs []error
	for res := range results {
		if res.reconcile {
			summary.Removed = res.removed
			if res.err != nil {
				errs = append(errs, fmt.Errorf("reconciling trending set: %w", res.err))
			}
			continue
		}

		if res.err != nil {
			summary.Failed++
			metrics.TrendUpdateFailuresTotal.Inc()
			errs = append(errs, fmt.Errorf("trend %q: %w", res.name, res.err))
			continue
		}

		if res.created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	metrics.TrendsCreatedTotal.Add(float64(summary.Created))
	metrics.TrendsUpdatedTotal.Add(float64(summary.Updated))
	metrics.TrendsRemovedTotal.Add(float64(summary.Removed))
	metrics.AggregationCycleDuration.Observe(time.Since(started).Seconds())

	result := "success"
	if len(errs) > 0 {
		result = "partial"
	}
	metrics.AggregationCyclesTotal.WithLabelValues(result).Inc()

	if a.events != nil {
		if err := a.events.CycleCompleted(summary.Created, summary.Updated, summary.Removed, summary.Failed); err != nil {
			slog.Warn("Failed to publish cycle event", "error", err)
		}
	}

	return summary, errors.Join(errs...)
}

// updateTrend builds the observation for one topic and folds it into the
// stored record, creating the record when none exists. It reports whether a
// new record was created.
func (a *Aggregator) updateTrend(ctx context.Context, topic trend.Topic, stream *trend.StreamStats) (bool, error) {
	obs, err := a.observe(ctx, topic, stream)
	if err != nil {
		return false, err
	}

	existing, err := a.store.FindByName(ctx, topic.Name)
	switch {
	case err == nil:
		rec, err := trend.MergeRecord(*existing, obs, a.config.MaxKeywordsPerTrend, a.label)
		if err != nil {
			return false, err
		}
		if err := a.store.Upsert(ctx, rec); err != nil {
			return false, fmt.Errorf("storing record: %w", err)
		}
		a.notify(func() error { return a.events.TrendUpdated(rec) }, "updated", rec.Name)
		return false, nil

	case errors.Is(err, trend.ErrNotFound):
		rec, err := trend.NewRecord(obs, a.config.MaxKeywordsPerTrend, a.label)
		if err != nil {
			return false, err
		}
		if err := a.store.Upsert(ctx, rec); err != nil {
			return false, fmt.Errorf("storing record: %w", err)
		}
		a.notify(func() error { return a.events.TrendCreated(rec) }, "created", rec.Name)
		return true, nil

	default:
		return false, fmt.Errorf("loading stored record: %w", err)
	}
}

// observe gathers news coverage and a tweet sample for one topic. Each
// provider call runs under its own fetch timeout.
func (a *Aggregator) observe(ctx context.Context, topic trend.Topic, stream *trend.StreamStats) (trend.Observation, error) {
	query := topic.Query
	if query == "" {
		query = topic.Name
	}

	articles, err := a.fetchArticles(ctx, query)
	if err != nil {
		return trend.Observation{}, fmt.Errorf("fetching articles: %w", err)
	}

	tweets, err := a.fetchTweets(ctx, query)
	if err != nil {
		return trend.Observation{}, fmt.Errorf("sampling tweets: %w", err)
	}

	return trend.Observation{
		Name:     topic.Name,
		Rank:     topic.Rank,
		Articles: articles,
		Tweets:   tweets,
		Stream:   stream,
	}, nil
}

// reconcile removes every stored record whose name left the trending set.
func (a *Aggregator) reconcile(ctx context.Context, names []string) (int64, error) {
	removed, err := a.store.DeleteAbsent(ctx, names)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		a.notify(func() error { return a.events.TrendsRemoved(removed) }, "removed", "")
	}

	return removed, nil
}

func (a *Aggregator) fetchTopics(ctx context.Context) ([]trend.Topic, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
	defer cancel()

	started := time.Now()
	topics, err := a.source.CurrentTrends(fetchCtx)
	observeProvider("trends", started, err)
	return topics, err
}

func (a *Aggregator) fetchArticles(ctx context.Context, query string) ([]trend.Article, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
	defer cancel()

	started := time.Now()
	articles, err := a.news.TopHeadlines(fetchCtx, query, a.config.MaxArticlesPerTrend)
	observeProvider("news", started, err)
	return articles, err
}

func (a *Aggregator) fetchTweets(ctx context.Context, query string) ([]trend.Tweet, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
	defer cancel()

	started := time.Now()
	tweets, err := a.tweets.Sample(fetchCtx, query, a.config.MaxTweetsPerTrend)
	observeProvider("tweets", started, err)
	return tweets, err
}

// notify runs a publish callback when an event sink is configured. Publish
// failures are logged, never returned.
func (a *Aggregator) notify(publish func() error, event, name string) {
	if a.events == nil {
		return
	}

	if err := publish(); err != nil {
		slog.Warn("Failed to publish trend event", "event", event, "trend", name, "error", err)
	}
}

func observeProvider(provider string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}
