package view

import (
	"sort"
	"time"

	"github.com/ltlx4/technews/internal/cache"
)

// Ranked returns all cached articles ordered by score descending. Ties
// break on title so the ordering is stable across runs of the same cache.
func Ranked(c *cache.Cache) []*cache.CachedArticle {
	articles := make([]*cache.CachedArticle, 0, len(c.Articles))
	for _, a := range c.Articles {
		articles = append(articles, a)
	}
	sort.Slice(articles, func(i, j int) bool {
		if articles[i].Score != articles[j].Score {
			return articles[i].Score > articles[j].Score
		}
		return articles[i].Title < articles[j].Title
	})
	return articles
}

// Highlights filters articles flagged by the scoring model. The flag is
// taken as stored; it is not recomputed from the score.
func Highlights(articles []*cache.CachedArticle) []*cache.CachedArticle {
	var out []*cache.CachedArticle
	for _, a := range articles {
		if a.IsHighlight {
			out = append(out, a)
		}
	}
	return out
}

// TagGroups indexes articles by tag. Tags are free-form and case-sensitive;
// "AI" and "ai" are distinct groups.
func TagGroups(articles []*cache.CachedArticle) map[string][]*cache.CachedArticle {
	groups := make(map[string][]*cache.CachedArticle)
	for _, a := range articles {
		for _, tag := range a.Tags {
			groups[tag] = append(groups[tag], a)
		}
	}
	return groups
}

// TagNames returns the group names sorted by group size (largest first),
// then alphabetically.
func TagNames(groups map[string][]*cache.CachedArticle) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(groups[names[i]]) != len(groups[names[j]]) {
			return len(groups[names[i]]) > len(groups[names[j]])
		}
		return names[i] < names[j]
	})
	return names
}

// FormatTimestamp renders an ISO-8601 timestamp string for display.
// Unparseable values come back verbatim.
func FormatTimestamp(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return value
}
