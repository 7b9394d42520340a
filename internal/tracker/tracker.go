// internal/tracker/tracker.go

package tracker

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"trendwatch/internal/domain/trend"
)

// drainScript atomically reads one trend's window (score sum, tweet count,
// top keywords), deletes the window keys and removes the name from the
// registry, so every observation lands in exactly one snapshot.
// ARGV: [1]=trend name, [2]=keyword limit
var drainScript = goredis.NewScript(`
local sum = redis.call('GET', KEYS[1]) or '0'
local count = redis.call('GET', KEYS[2]) or '0'
local words = {}
if tonumber(ARGV[2]) > 0 then
	words = redis.call('ZREVRANGE', KEYS[3], 0, tonumber(ARGV[2]) - 1, 'WITHSCORES')
end
redis.call('DEL', KEYS[1], KEYS[2], KEYS[3])
redis.call('SREM', KEYS[4], ARGV[1])
return {sum, count, words}
`)

// Tracker accumulates per-trend sentiment windows in Redis. Writers feed it
// one scored tweet at a time through Record; the aggregation cycle drains
// everything gathered since the previous cycle through Snapshot.
type Tracker struct {
	rdb          *goredis.Client
	prefix       string
	keywordLimit int
}

// NewTracker creates a tracker using the given key prefix. keywordLimit
// bounds how many keywords a snapshot reports per trend.
func NewTracker(rdb *goredis.Client, prefix string, keywordLimit int) *Tracker {
	return &Tracker{
		rdb:          rdb,
		prefix:       prefix,
		keywordLimit: keywordLimit,
	}
}

func (t *Tracker) namesKey() string            { return t.prefix + ":names" }
func (t *Tracker) sumKey(name string) string   { return t.prefix + ":sum:" + name }
func (t *Tracker) countKey(name string) string { return t.prefix + ":count:" + name }
func (t *Tracker) wordsKey(name string) string { return t.prefix + ":words:" + name }

// Record adds one scored tweet to a trend's current window.
func (t *Tracker) Record(ctx context.Context, name string, score float64, words []string) error {
	pipe := t.rdb.TxPipeline()
	pipe.SAdd(ctx, t.namesKey(), name)
	pipe.IncrByFloat(ctx, t.sumKey(name), score)
	pipe.Incr(ctx, t.countKey(name))
	for _, w := range words {
		pipe.ZIncrBy(ctx, t.wordsKey(name), 1, w)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording observation for %q: %w", name, err)
	}

	return nil
}

// Snapshot drains and returns every tracked window, keyed by trend name.
// Names observed since the previous snapshot are present; everything else is
// absent. The windows are reset as part of the read.
func (t *Tracker) Snapshot(ctx context.Context) (map[string]trend.StreamStats, error) {
	names, err := t.rdb.SMembers(ctx, t.namesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing tracked trends: %w", err)
	}

	stats := make(map[string]trend.StreamStats, len(names))
	for _, name := range names {
		keys := []string{t.sumKey(name), t.countKey(name), t.wordsKey(name), t.namesKey()}
		result, err := drainScript.Run(ctx, t.rdb, keys, name, t.keywordLimit).Result()
		if err != nil {
			return nil, fmt.Errorf("draining window for %q: %w", name, err)
		}

		window, err := parseWindow(result)
		if err != nil {
			return nil, fmt.Errorf("parsing window for %q: %w", name, err)
		}

		stats[name] = window
	}

	return stats, nil
}

func parseWindow(result interface{}) (trend.StreamStats, error) {
	parts, ok := result.([]interface{})
	if !ok || len(parts) != 3 {
		return trend.StreamStats{}, fmt.Errorf("unexpected script result %T", result)
	}

	sumStr, _ := parts[0].(string)
	sum, err := strconv.ParseFloat(sumStr, 64)
	if err != nil {
		return trend.StreamStats{}, fmt.Errorf("parsing score sum: %w", err)
	}

	countStr, _ := parts[1].(string)
	count, err := strconv.ParseInt(countStr, 10, 64)
	if err != nil {
		return trend.StreamStats{}, fmt.Errorf("parsing tweet count: %w", err)
	}

	window := trend.StreamStats{TweetsAnalyzed: count}
	if count > 0 {
		window.Sentiment = sum / float64(count)
	}

	pairs, ok := parts[2].([]interface{})
	if !ok {
		return trend.StreamStats{}, fmt.Errorf("unexpected keyword list %T", parts[2])
	}

	for i := 0; i+1 < len(pairs); i += 2 {
		word, _ := pairs[i].(string)
		scoreStr, _ := pairs[i+1].(string)
		occurrences, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			return trend.StreamStats{}, fmt.Errorf("parsing keyword count: %w", err)
		}
		window.Keywords = append(window.Keywords, trend.Keyword{Word: word, Occurrences: int64(occurrences)})
	}

	return window, nil
}
