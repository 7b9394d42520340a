// internal/provider/twitter/trends.go

package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"trendwatch/internal/domain/trend"
)

// trendsResponse mirrors the payload of the v1.1 trends/place endpoint.
type trendsResponse []struct {
	Trends []struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Query       string `json:"query"`
		TweetVolume int    `json:"tweet_volume"`
	} `json:"trends"`
	AsOf time.Time `json:"as_of"`
}

// TrendsClient reads the current trending set from the Twitter v1.1 API.
type TrendsClient struct {
	BearerToken string
	BaseURL     string
	WOEID       int
	HTTPClient  *http.Client
}

// NewTrendsClient creates a trends client for the given location WOEID
// (1 is worldwide).
func NewTrendsClient(bearerToken string, woeid int) *TrendsClient {
	return &TrendsClient{
		BearerToken: bearerToken,
		BaseURL:     "https://api.twitter.com/1.1",
		WOEID:       woeid,
		HTTPClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// CurrentTrends fetches the trending set for the configured location. Ranks
// follow the provider's reported order, starting at 1.
func (c *TrendsClient) CurrentTrends(ctx context.Context) ([]trend.Topic, error) {
	if c.BearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token not configured")
	}

	woeid := c.WOEID
	if woeid == 0 {
		woeid = 1
	}

	endpoint := fmt.Sprintf("%s/trends/place.json?id=%d", c.BaseURL, woeid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+c.BearerToken)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter API returned status code %d", resp.StatusCode)
	}

	var payload trendsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if len(payload) == 0 {
		return []trend.Topic{}, nil
	}

	topics := make([]trend.Topic, 0, len(payload[0].Trends))
	for i, tr := range payload[0].Trends {
		// The query field arrives URL-encoded (e.g. %23hashtag).
		query, err := url.QueryUnescape(tr.Query)
		if err != nil || query == "" {
			query = tr.Name
		}

		topics = append(topics, trend.Topic{
			Name:        tr.Name,
			Query:       query,
			Rank:        i + 1,
			TweetVolume: tr.TweetVolume,
		})
	}

	return topics, nil
}
