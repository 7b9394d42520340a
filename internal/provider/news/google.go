// internal/provider/news/google.go

package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"trendwatch/internal/domain/trend"
)

// Google fetches headlines from the Google News search RSS feed.
type Google struct {
	parser   *gofeed.Parser
	baseURL  string
	language string
	country  string
}

// NewGoogle creates a provider against the given base URL, usually
// "https://news.google.com".
func NewGoogle(baseURL, language, country string) *Google {
	return &Google{
		parser:   gofeed.NewParser(),
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		country:  country,
	}
}

// TopHeadlines returns up to limit articles about the query, in the order
// the feed reports them.
func (g *Google) TopHeadlines(ctx context.Context, query string, limit int) ([]trend.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	feedURL := fmt.Sprintf("%s/rss/search?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		g.baseURL,
		url.QueryEscape(query),
		g.language,
		g.country,
		g.country,
		shortLanguage(g.language),
	)

	feed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching news feed for %q: %w", query, err)
	}

	articles := make([]trend.Article, 0, limit)
	for _, item := range feed.Items {
		if len(articles) == limit {
			break
		}
		if item == nil {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		}

		title, source := splitSource(item.Title)

		articles = append(articles, trend.Article{
			Title:       title,
			URL:         item.Link,
			Source:      source,
			Summary:     item.Description,
			PublishedAt: publishedAt,
		})
	}

	return articles, nil
}

// splitSource separates the publisher suffix the feed appends to item
// titles ("Headline - Publisher").
func splitSource(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return title, ""
	}
	return title[:idx], title[idx+3:]
}

// shortLanguage reduces a locale like "en-US" to its language part.
func shortLanguage(language string) string {
	if idx := strings.Index(language, "-"); idx > 0 {
		return language[:idx]
	}
	return language
}
