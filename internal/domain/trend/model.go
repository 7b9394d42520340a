// internal/domain/trend/model.go

package trend

import (
	"time"
)

// Keyword is a word pulled from the live tweet stream together with the
// number of times it has been counted for a trend.
type Keyword struct {
	Word string `json:"word"`
	// The tag keeps the spelling already present in stored rows.
	Occurrences int64 `json:"occurences"`
}

// Tweet is a sampled tweet carried on a trend record verbatim.
type Tweet struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	Likes    int       `json:"likes"`
	Retweets int       `json:"retweets"`
	PostedAt time.Time `json:"posted_at"`
}

// Article is a news article carried on a trend record verbatim.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

// Record is the persisted aggregate for a single trending topic, keyed by
// its unique name. SentimentScore and TweetsAnalyzed accumulate across
// update cycles; Rank, Tweets and Articles always reflect the latest cycle.
type Record struct {
	Name                 string    `json:"name"`
	Rank                 int       `json:"rank"`
	SentimentScore       float64   `json:"sentiment_score"`
	SentimentDescription string    `json:"sentiment_description"`
	TweetsAnalyzed       int64     `json:"tweets_analyzed"`
	Keywords             []Keyword `json:"keywords"`
	Tweets               []Tweet   `json:"tweets"`
	Articles             []Article `json:"articles"`
	FirstSeen            time.Time `json:"first_seen"`
	LastUpdated          time.Time `json:"last_updated"`
}

// StreamStats is one tracking window of live sentiment data for a trend,
// drained from the stream tracker at the start of an update cycle.
type StreamStats struct {
	Sentiment      float64
	TweetsAnalyzed int64
	Keywords       []Keyword
}

// Observation bundles everything gathered for one trending topic during a
// cycle. A nil Stream means no tracking window exists for the topic yet.
type Observation struct {
	Name     string
	Rank     int
	Articles []Article
	Tweets   []Tweet
	Stream   *StreamStats
}

// Topic is an entry in the current trending set as reported by the trend
// source. Query is the provider's canonical search string for the topic.
type Topic struct {
	Name        string
	Query       string
	Rank        int
	TweetVolume int
}
