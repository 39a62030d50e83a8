package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ltlx4/technews/internal/analyze"
	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/config"
	"github.com/ltlx4/technews/internal/feed"
)

// Processor runs the ingest-dedup-score-persist pipeline. Collaborators are
// injected; nothing here reaches for process-wide state.
type Processor struct {
	Store    *cache.Store
	Fetcher  feed.Fetcher
	Analyzer analyze.Analyzer
	Sources  []config.Source

	// Now is the clock used for processed_at and last_updated stamps.
	// Defaults to time.Now.
	Now func() time.Time
}

// Stats summarizes one pipeline run.
type Stats struct {
	Fetched    int
	New        int
	FeedErrors int
}

// Run executes one pipeline pass: load the cache, fetch every source, score
// articles not seen before, and persist if anything was added.
//
// An article already in the cache is skipped outright: no re-analysis and no
// field refresh, even when the same title+source reappears with different
// content. Failed analyses are cached as the default verdict and are never
// retried. Per-feed and per-article failures are contained; Run always
// returns a usable cache. The returned error is a persistence failure only —
// in that case the run's new articles exist in memory but not on disk.
func (p *Processor) Run(ctx context.Context) (*cache.Cache, Stats, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	c := p.Store.Load()

	result := feed.FetchAll(ctx, p.Fetcher, p.Sources)
	for _, err := range result.Errors {
		log.Printf("feed error: %v", err)
	}

	stats := Stats{Fetched: len(result.Articles), FeedErrors: len(result.Errors)}

	updated := false
	for _, article := range result.Articles {
		key := article.Key()
		if _, seen := c.Articles[key]; seen {
			continue
		}

		log.Printf("processing new article: %s", article.Title)
		analysis := p.Analyzer.Analyze(ctx, article)

		c.Articles[key] = &cache.CachedArticle{
			Article:     article,
			Analysis:    analysis,
			ProcessedAt: now().Format(time.RFC3339),
		}
		stats.New++
		updated = true
	}

	if updated {
		ts := now().Format(time.RFC3339)
		c.LastUpdated = &ts
		if err := p.Store.Save(c); err != nil {
			return c, stats, fmt.Errorf("persisting cache: %w", err)
		}
	}

	return c, stats, nil
}
