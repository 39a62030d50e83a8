package cache

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		title  string
		source string
		want   string
	}{
		{"AI breakthrough", "Wired", "AI breakthrough-Wired"},
		{"No title", "TechCrunch", "No title-TechCrunch"},
		{"", "", "-"},
	}
	for _, tt := range tests {
		if got := Key(tt.title, tt.source); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.title, tt.source, got, tt.want)
		}
	}
}

func TestArticleKeyIgnoresOtherFields(t *testing.T) {
	a := Article{Title: "Same", Source: "Wired", Link: "https://a", Summary: "one", Published: "Mon"}
	b := Article{Title: "Same", Source: "Wired", Link: "https://b", Summary: "two", Published: "Tue"}
	if a.Key() != b.Key() {
		t.Error("articles with equal title and source must share a key")
	}

	c := Article{Title: "Same", Source: "Verge"}
	if a.Key() == c.Key() {
		t.Error("different sources must not share a key")
	}
}
