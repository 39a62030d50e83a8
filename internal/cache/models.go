package cache

// Article is one normalized feed entry, as fetched. It has no identity of
// its own until keyed with Key.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
	Source    string `json:"source"`
}

// Analysis is the scoring verdict for one article. Score is always an
// integer in [1,10]; the analyzer guarantees that by construction.
type Analysis struct {
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	Tags        []string `json:"tags"`
	IsHighlight bool     `json:"is_highlight"`
}

// CachedArticle is an article plus its analysis, immutable once written.
// The field layout matches the persisted cache document.
type CachedArticle struct {
	Article
	Analysis
	ProcessedAt string `json:"processed_at"`
}

// Cache is the full persisted state: every processed article keyed by
// Key(title, source), plus the timestamp of the last run that added one.
// LastUpdated is nil (JSON null) until the first article lands.
type Cache struct {
	Articles    map[string]*CachedArticle `json:"articles"`
	LastUpdated *string                   `json:"last_updated"`
}

// NewCache returns an empty cache with a non-nil article map.
func NewCache() *Cache {
	return &Cache{Articles: make(map[string]*CachedArticle)}
}

// Key derives the dedup identity for an article. Two entries with the same
// title and source are the same article, even when link, summary, or
// published drift between fetches. A title collision within one source is
// indistinguishable; that lossiness is accepted.
func Key(title, source string) string {
	return title + "-" + source
}

// Key returns the dedup identity of the article.
func (a Article) Key() string {
	return Key(a.Title, a.Source)
}
