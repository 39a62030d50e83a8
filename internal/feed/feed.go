package feed

import (
	"context"
	"fmt"

	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/config"
	"github.com/mmcdole/gofeed"
)

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]cache.Article, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]cache.Article, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	articles := make([]cache.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, normalize(item, source.Name))
	}
	return articles, nil
}

// normalize maps one feed item to an article, filling the placeholder
// defaults for absent fields. Summary prefers the description and falls
// back to the content body. Published is kept as the raw source-provided
// string; formats vary per feed and are not interpreted here.
func normalize(item *gofeed.Item, source string) cache.Article {
	title := item.Title
	if title == "" {
		title = "No title"
	}

	link := item.Link
	if link == "" {
		link = "#"
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}
	if summary == "" {
		summary = "No summary"
	}

	return cache.Article{
		Title:     title,
		Link:      link,
		Summary:   summary,
		Published: item.Published,
		Source:    source,
	}
}

type FetchResult struct {
	Articles []cache.Article
	Errors   []error
}

// FetchAll pulls every source in the order it was declared, one at a time.
// Entries keep their in-feed order. A source that fails contributes zero
// entries and an error; the remaining sources are still fetched.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []config.Source) FetchResult {
	var result FetchResult
	for _, src := range sources {
		articles, err := fetcher.Fetch(ctx, src)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Articles = append(result.Articles, articles...)
	}
	return result
}
