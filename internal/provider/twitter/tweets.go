// internal/provider/twitter/tweets.go

package twitter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gotwitter "github.com/g8rswimmer/go-twitter/v2"

	"trendwatch/internal/domain/trend"
)

// bearerAuthorizer signs API requests with an app-only bearer token.
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// TweetClient samples recent tweets through the v2 search API.
type TweetClient struct {
	client *gotwitter.Client
}

// NewTweetClient creates a tweet sampling client. A nil httpClient falls
// back to a client with a ten second timeout.
func NewTweetClient(bearerToken string, httpClient *http.Client) *TweetClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Second * 10}
	}

	return &TweetClient{
		client: &gotwitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     httpClient,
			Host:       "https://api.twitter.com",
		},
	}
}

// Sample returns up to limit recent tweets matching the query.
func (c *TweetClient) Sample(ctx context.Context, query string, limit int) ([]trend.Tweet, error) {
	if limit <= 0 {
		return nil, nil
	}

	opts := gotwitter.TweetRecentSearchOpts{
		// The endpoint only accepts max_results between 10 and 100.
		MaxResults: clamp(limit, 10, 100),
		TweetFields: []gotwitter.TweetField{
			gotwitter.TweetFieldCreatedAt,
			gotwitter.TweetFieldAuthorID,
			gotwitter.TweetFieldPublicMetrics,
		},
	}

	resp, err := c.client.TweetRecentSearch(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("searching recent tweets for %q: %w", query, err)
	}
	if resp.Raw == nil {
		return nil, nil
	}

	return mapTweets(resp.Raw.Tweets, limit), nil
}

// mapTweets converts raw API tweet objects into domain tweets, keeping at
// most limit entries.
func mapTweets(raw []*gotwitter.TweetObj, limit int) []trend.Tweet {
	tweets := make([]trend.Tweet, 0, len(raw))
	for _, tw := range raw {
		if len(tweets) == limit {
			break
		}
		if tw == nil {
			continue
		}

		var likes, retweets int
		if tw.PublicMetrics != nil {
			likes = tw.PublicMetrics.Likes
			retweets = tw.PublicMetrics.Retweets
		}

		postedAt, _ := time.Parse(time.RFC3339, tw.CreatedAt)

		tweets = append(tweets, trend.Tweet{
			ID:       tw.ID,
			Text:     tw.Text,
			Author:   tw.AuthorID,
			Likes:    likes,
			Retweets: retweets,
			PostedAt: postedAt,
		})
	}

	return tweets
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
