package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ltlx4/technews/internal/analyze"
	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/config"
)

type stubFetcher struct {
	articles []cache.Article
	err      error
}

func (s *stubFetcher) Fetch(ctx context.Context, src config.Source) ([]cache.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

type stubAnalyzer struct {
	analysis cache.Analysis
	fail     bool
	calls    []string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, article cache.Article) cache.Analysis {
	s.calls = append(s.calls, article.Title)
	if s.fail {
		return analyze.DefaultAnalysis()
	}
	return s.analysis
}

var fixedTime = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestProcessor(t *testing.T, fetcher *stubFetcher, analyzer *stubAnalyzer) *Processor {
	t.Helper()
	return &Processor{
		Store:    cache.NewStore(filepath.Join(t.TempDir(), "news_cache.json")),
		Fetcher:  fetcher,
		Analyzer: analyzer,
		Sources:  []config.Source{{Name: "Wired"}},
		Now:      func() time.Time { return fixedTime },
	}
}

func wiredArticle() cache.Article {
	return cache.Article{
		Title:     "AI breakthrough",
		Link:      "https://wired.com/ai",
		Summary:   "Big news",
		Published: "Mon, 02 Jun 2025 09:00:00 GMT",
		Source:    "Wired",
	}
}

func TestRunCachesNewArticle(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: cache.Analysis{Score: 9, Reasons: []string{"major"}, Tags: []string{"ai"}, IsHighlight: true}}
	p := newTestProcessor(t, &stubFetcher{articles: []cache.Article{wiredArticle()}}, analyzer)

	c, stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.New != 1 || stats.Fetched != 1 {
		t.Errorf("stats = %+v", stats)
	}

	entry, ok := c.Articles["AI breakthrough-Wired"]
	if !ok {
		t.Fatal("expected entry keyed by title-source")
	}
	if entry.Score != 9 || !entry.IsHighlight {
		t.Errorf("analysis not merged: %+v", entry.Analysis)
	}
	if entry.ProcessedAt != fixedTime.Format(time.RFC3339) {
		t.Errorf("processed_at = %q", entry.ProcessedAt)
	}
	if c.LastUpdated == nil || *c.LastUpdated != fixedTime.Format(time.RFC3339) {
		t.Errorf("last_updated = %v", c.LastUpdated)
	}

	// Persisted too
	if got := p.Store.Load(); len(got.Articles) != 1 {
		t.Errorf("expected 1 persisted article, got %d", len(got.Articles))
	}
}

func TestRunSkipsSeenArticles(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: cache.Analysis{Score: 9, Reasons: []string{}, Tags: []string{}}}
	p := newTestProcessor(t, &stubFetcher{articles: []cache.Article{wiredArticle()}}, analyzer)

	if _, _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	fileBefore, err := os.ReadFile(p.Store.Path())
	if err != nil {
		t.Fatal(err)
	}
	mtimeBefore := mtime(t, p.Store.Path())

	// Second run: same entry comes back from the feed
	c, stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.New != 0 {
		t.Errorf("second run added %d articles", stats.New)
	}
	if len(analyzer.calls) != 1 {
		t.Errorf("analyzer called %d times, want 1 (no re-analysis of seen keys)", len(analyzer.calls))
	}
	if len(c.Articles) != 1 {
		t.Errorf("expected 1 article, got %d", len(c.Articles))
	}

	fileAfter, err := os.ReadFile(p.Store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fileBefore, fileAfter) {
		t.Error("no-op run must leave the cache file byte-identical")
	}
	if !mtime(t, p.Store.Path()).Equal(mtimeBefore) {
		t.Error("no-op run must not rewrite the cache file")
	}
}

func TestRunDedupIgnoresDriftingFields(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: cache.Analysis{Score: 9, Reasons: []string{}, Tags: []string{}}}
	first := wiredArticle()
	fetcher := &stubFetcher{articles: []cache.Article{first}}
	p := newTestProcessor(t, fetcher, analyzer)

	if _, _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Same title+source, everything else changed
	drifted := first
	drifted.Link = "https://wired.com/ai-updated"
	drifted.Summary = "Rewritten summary"
	drifted.Published = "Tue, 03 Jun 2025 09:00:00 GMT"
	fetcher.articles = []cache.Article{drifted}

	c, stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.New != 0 {
		t.Error("drifted duplicate must not count as new")
	}

	entry := c.Articles["AI breakthrough-Wired"]
	if entry.Summary != "Big news" || entry.Link != "https://wired.com/ai" {
		t.Errorf("first-seen fields must survive: %+v", entry.Article)
	}
}

func TestRunCachesDefaultOnAnalysisFailure(t *testing.T) {
	analyzer := &stubAnalyzer{fail: true}
	p := newTestProcessor(t, &stubFetcher{articles: []cache.Article{wiredArticle()}}, analyzer)

	c, stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.New != 1 {
		t.Error("failed analysis still counts as a processed article")
	}

	entry := c.Articles["AI breakthrough-Wired"]
	want := analyze.DefaultAnalysis()
	if !reflect.DeepEqual(entry.Analysis, want) {
		t.Errorf("cached analysis = %+v, want default %+v", entry.Analysis, want)
	}
	if c.LastUpdated == nil {
		t.Error("last_updated must advance even when analysis failed")
	}

	// The default verdict is permanent: the next run must not retry
	if _, _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(analyzer.calls) != 1 {
		t.Errorf("failed analysis retried: %d calls", len(analyzer.calls))
	}
}

func TestRunAllFeedsFailing(t *testing.T) {
	p := newTestProcessor(t, &stubFetcher{err: fmt.Errorf("network down")}, &stubAnalyzer{})

	c, stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("feed failures must not abort the run: %v", err)
	}
	if c == nil {
		t.Fatal("run must always return a cache")
	}
	if stats.FeedErrors != 1 || stats.New != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if c.LastUpdated != nil {
		t.Error("no insertion, last_updated must stay unset")
	}
	if _, err := os.Stat(p.Store.Path()); !os.IsNotExist(err) {
		t.Error("no-op run must not create the cache file")
	}
}

func TestRunPreservesExistingCacheAcrossRuns(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: cache.Analysis{Score: 6, Reasons: []string{}, Tags: []string{}}}
	fetcher := &stubFetcher{articles: []cache.Article{wiredArticle()}}
	p := newTestProcessor(t, fetcher, analyzer)

	if _, _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	second := cache.Article{Title: "Chip shortage", Source: "Wired", Link: "https://wired.com/chips", Summary: "s"}
	fetcher.articles = []cache.Article{wiredArticle(), second}

	c, stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.New != 1 {
		t.Errorf("expected 1 new article, got %d", stats.New)
	}
	if len(c.Articles) != 2 {
		t.Errorf("cache must grow monotonically, got %d articles", len(c.Articles))
	}
}

func TestRunPersistFailureStillReturnsCache(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &Processor{
		// Parent "directory" is a regular file, so MkdirAll fails
		Store:    cache.NewStore(filepath.Join(blocker, "news_cache.json")),
		Fetcher:  &stubFetcher{articles: []cache.Article{wiredArticle()}},
		Analyzer: &stubAnalyzer{analysis: cache.Analysis{Score: 9, Reasons: []string{}, Tags: []string{}}},
		Sources:  []config.Source{{Name: "Wired"}},
		Now:      func() time.Time { return fixedTime },
	}

	c, _, err := p.Run(context.Background())
	if err == nil {
		t.Error("expected a persistence error")
	}
	if c == nil || len(c.Articles) != 1 {
		t.Error("in-memory cache must still hold the run's articles")
	}
}

func mtime(t *testing.T, path string) time.Time {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return fi.ModTime()
}
