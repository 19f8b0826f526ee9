package logic

import (
	"testing"

	"github.com/opencms/sectionbanner/internal/models"
)

func contentCtx(path, alias, bundle string) models.RequestContext {
	return BuildRequestContext(RawRequest{
		Path:    path,
		Alias:   alias,
		RouteID: "entity.node.canonical",
		Bundle:  bundle,
	})
}

func listingCtx(path, alias, routeID string) models.RequestContext {
	return BuildRequestContext(RawRequest{
		Path:    path,
		Alias:   alias,
		RouteID: routeID,
	})
}

func TestMatches_RouteID(t *testing.T) {
	ctx := models.RequestContext{Path: "/admin/banner", RouteID: "section_banner.settings"}

	if !Matches("section_banner.settings", ctx) {
		t.Errorf("expected dotted pattern equal to route id to match")
	}
	if Matches("section_banner.other", ctx) {
		t.Errorf("expected different route id not to match")
	}
}

func TestMatches_Bundle(t *testing.T) {
	ctx := contentCtx("/node/12", "/news/local-story", "article")

	cases := []struct {
		pattern string
		want    bool
	}{
		{"bundle:article", true},
		{"node.type.article", true},
		{"bundle:page", false},
		{"node.type.page", false},
	}
	for _, c := range cases {
		if got := Matches(c.pattern, ctx); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.pattern, got, c.want)
		}
	}

	// Bundle patterns never match off content pages, even when the path
	// would line up.
	listing := listingCtx("/articles", "", "view.articles.page_1")
	if Matches("bundle:article", listing) {
		t.Errorf("bundle pattern must not match on a listing route")
	}
}

func TestMatches_AllContentWildcard(t *testing.T) {
	content := contentCtx("/node/7", "", "article")
	listing := listingCtx("/news", "", "view.news.page_1")

	for _, pattern := range []string{"/node/*", "node/*", "/node/*/"} {
		if !Matches(pattern, content) {
			t.Errorf("Matches(%q) on content page = false, want true", pattern)
		}
		if Matches(pattern, listing) {
			t.Errorf("Matches(%q) on listing = true, want false", pattern)
		}
	}
}

func TestMatches_ListingByID(t *testing.T) {
	ctx := listingCtx("/articles", "", "view.articles.page_1")

	if !Matches("view.articles", ctx) {
		t.Errorf("expected view.articles to match view.articles.page_1")
	}
	if Matches("view.article", ctx) {
		t.Errorf("listing id match must not treat a name prefix as a match")
	}
	if Matches("view.news", ctx) {
		t.Errorf("expected different listing not to match")
	}

	content := contentCtx("/node/3", "", "article")
	if Matches("view.articles", content) {
		t.Errorf("listing pattern must not match content pages")
	}
}

func TestMatches_ListingByName(t *testing.T) {
	ctx := listingCtx("/articles", "", "view.articles.page_1")

	if !Matches("articles", ctx) {
		t.Errorf("expected bare listing name to match")
	}
	if Matches("news", ctx) {
		t.Errorf("expected other bare name not to match on listing route")
	}
	// The bare token is resolved as a listing name, never as the path
	// "/news": path /news with listing name "articles" must not match "news".
	other := listingCtx("/news", "", "view.articles.page_1")
	if Matches("news", other) {
		t.Errorf("bare token on listing route must not fall back to path matching")
	}
}

func TestMatches_ListingByPath(t *testing.T) {
	ctx := listingCtx("/articles", "/all-articles", "view.articles.page_1")

	if !Matches("/articles", ctx) {
		t.Errorf("expected exact path to match listing")
	}
	if !Matches("/articles/", ctx) {
		t.Errorf("expected trailing slash to be ignored")
	}
	if !Matches("/all-articles", ctx) {
		t.Errorf("expected alias to match listing")
	}
	// Wildcards are not consulted for listing paths.
	if Matches("/arti*", ctx) {
		t.Errorf("wildcard must not apply to listing paths")
	}
	if Matches("/other", ctx) {
		t.Errorf("expected different path not to match")
	}
}

func TestMatches_GenericPath(t *testing.T) {
	ctx := contentCtx("/node/12", "/news/local-story", "article")

	cases := []struct {
		pattern string
		want    bool
	}{
		{"/node/12", true},
		{"node/12", true}, // leading slash is implied
		{"/news/local-story", true},
		{"/news/*", true},
		{"/news*", true},
		{"/sports/*", false},
		{"/node/13", false},
		{"", false},
	}
	for _, c := range cases {
		if got := Matches(c.pattern, ctx); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.pattern, got, c.want)
		}
	}
}

// A wildcard matches any run of characters, so "/news/*" also covers paths
// that merely extend the prefix string.
func TestMatches_WildcardIsSubstringRun(t *testing.T) {
	ctx := models.RequestContext{Path: "/newsroom"}

	if !Matches("/news*", ctx) {
		t.Errorf("expected /news* to match /newsroom")
	}
	if Matches("/news/*", ctx) {
		t.Errorf("expected /news/* not to match /newsroom")
	}
	if !Matches("/news/*", models.RequestContext{Path: "/news/"}) {
		t.Errorf("expected /news/* to match /news/ with empty tail")
	}
}

func TestMatches_MalformedWildcardNeverMatches(t *testing.T) {
	// QuoteMeta keeps wildcard compilation total, so every pattern either
	// compiles or matches nothing. Regexp metacharacters stay literal.
	ctx := models.RequestContext{Path: "/a(b"}
	if !Matches("/a(b", ctx) {
		t.Errorf("expected parenthesis to be treated literally")
	}
	if Matches("/a(*", models.RequestContext{Path: "/anything"}) {
		t.Errorf("expected literal prefix not to match unrelated path")
	}
}

func TestMatches_FirstApplicableRuleWins(t *testing.T) {
	// "articles" as a bare name matches the listing even when a path
	// "/articles" exists with a different alias.
	ctx := listingCtx("/some/internal/path", "/articles", "view.articles.page_1")
	if !Matches("articles", ctx) {
		t.Errorf("expected listing name rule to fire before path rules")
	}

	// A dotted pattern equal to the route id wins even on listing routes.
	ctx2 := listingCtx("/articles", "", "view.articles.page_1")
	if !Matches("view.articles.page_1", ctx2) {
		t.Errorf("expected full route id to match")
	}
}

func TestIsExclusion(t *testing.T) {
	if !IsExclusion("except:bundle:article") {
		t.Errorf("expected except: prefix to mark an exclusion")
	}
	if IsExclusion("bundle:article") {
		t.Errorf("plain bundle pattern is not an exclusion")
	}
}

func TestExclusionTarget(t *testing.T) {
	cases := []struct {
		pattern string
		want    string
	}{
		{"except:bundle:article", "article"},
		{"except:node.type.article", "article"},
		{"except:article", "article"},
		{"bundle:article", ""},
	}
	for _, c := range cases {
		if got := ExclusionTarget(c.pattern); got != c.want {
			t.Errorf("ExclusionTarget(%q) = %q, want %q", c.pattern, got, c.want)
		}
	}
}
