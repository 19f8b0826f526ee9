package suggest

import "testing"

func TestFromMatchedSection(t *testing.T) {
	cases := []struct {
		pattern string
		want    string
	}{
		{"bundle:article", "article"},
		{"node.type.article", "article"},
		{"/news/*", "news"},
		{"/news/local-story", "news_local-story"},
		{"view.frontpage", "frontpage"},
		{"view.articles.page_1", "articles_page_1"},
		{"articles", "articles"},
		{"/node/*", "node"},
		{"UPPER/Case", "upper_case"},
		{"", ""},
		{"***", ""},
	}

	for _, c := range cases {
		if got := FromMatchedSection(c.pattern); got != c.want {
			t.Errorf("FromMatchedSection(%q) = %q, want %q", c.pattern, got, c.want)
		}
	}
}
