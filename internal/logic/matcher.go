package logic

import (
	"regexp"
	"strings"

	"github.com/opencms/sectionbanner/internal/models"
)

// Target pattern prefixes. A pattern is a plain string whose shape decides
// how it is evaluated; see Matches for the full rule chain.
const (
	exclusionPrefix  = "except:"
	bundlePrefix     = "bundle:"
	bundleTypePrefix = "node.type."
	listingPrefix    = "view."

	// allContentPattern is the wildcard that targets every
	// single-content-item page regardless of bundle.
	allContentPattern = "/node/*"
)

// IsExclusion reports whether the pattern is an exclusion rule rather than a
// target rule.
func IsExclusion(pattern string) bool {
	return strings.HasPrefix(pattern, exclusionPrefix)
}

// ExclusionTarget returns the bundle name an exclusion pattern applies to.
// Both "except:bundle:article" and "except:node.type.article" yield
// "article". For non-exclusion patterns it returns the empty string.
func ExclusionTarget(pattern string) string {
	if !IsExclusion(pattern) {
		return ""
	}
	inner := pattern[len(exclusionPrefix):]
	if name, ok := bundlePatternName(inner); ok {
		return name
	}
	return inner
}

// Matches reports whether one target pattern applies to the request context.
//
// Patterns are ambiguous by design: a bare token may look like a path, a
// bundle name or a listing name at the same time. The rules below are
// evaluated strictly top to bottom and the first applicable rule assigns the
// verdict; the order is a compatibility contract, not an implementation
// detail.
//
//  1. A dotted pattern equal to the current route id matches.
//  2. "bundle:<name>" / "node.type.<name>" match the current bundle.
//  3. The all-content wildcard matches any single-content-item page.
//  4. "view.<name>" matches listing routes of that listing.
//  5. On a listing route, a pattern equal to the listing name matches
//     (inequality falls through).
//  6. On a listing route, a "/"-pattern matches by path equality only.
//  7. On a listing route, a bare token is checked against the listing name
//     once more and decides either way, so it is never retried as a path.
//  8. Otherwise generic path matching: exact against path, exact against
//     alias, then "*" wildcard against both.
func Matches(pattern string, ctx models.RequestContext) bool {
	if pattern == "" {
		return false
	}

	// 1. Route identifier.
	if strings.Contains(pattern, ".") && pattern == ctx.RouteID {
		return true
	}

	// 2. Bundle.
	if name, ok := bundlePatternName(pattern); ok {
		return ctx.Bundle != "" && ctx.Bundle == name
	}

	// 3. All content items.
	if normalizePath(strings.TrimSuffix(pattern, "/")) == allContentPattern {
		return ctx.OnContentItem()
	}

	// 4. Listing by id.
	if strings.HasPrefix(pattern, listingPrefix) {
		return ctx.OnListing() && strings.HasPrefix(ctx.ViewRouteID, pattern+".")
	}

	listing := listingName(ctx.ViewRouteID)

	// 5. Listing by bare name. Inequality falls through so path-shaped
	// patterns still reach the rules below.
	if listing != "" && pattern == listing {
		return true
	}

	// 6. Listing by path. Equality only; wildcards are deliberately not
	// consulted for listing-path shortcuts.
	if strings.HasPrefix(pattern, "/") && ctx.OnListing() {
		p := trimTrailingSlash(pattern)
		if p == trimTrailingSlash(ctx.Path) {
			return true
		}
		return ctx.Alias != "" && p == trimTrailingSlash(ctx.Alias)
	}

	// 7. Bare token on a listing route. Redundant with rule 5 as long as
	// rule 5 keeps its current guard; kept for compatibility. Assigning a
	// verdict here is what stops "articles" from being retried as the
	// literal path "/articles" on listing routes.
	if ctx.OnListing() && !strings.ContainsAny(pattern, ":/*") {
		return pattern == listing
	}

	// 8. Generic path matching.
	p := normalizePath(pattern)
	path := normalizePath(ctx.Path)
	if p == path {
		return true
	}
	var alias string
	if ctx.Alias != "" {
		alias = normalizePath(ctx.Alias)
		if p == alias {
			return true
		}
	}
	if strings.Contains(p, "*") {
		re, err := compileWildcard(p)
		if err != nil {
			// Malformed pattern: never matches, caller logs.
			return false
		}
		if re.MatchString(path) {
			return true
		}
		if alias != "" && re.MatchString(alias) {
			return true
		}
	}
	return false
}

// bundlePatternName extracts the bundle name from a bundle-shaped pattern.
func bundlePatternName(pattern string) (string, bool) {
	if strings.HasPrefix(pattern, bundlePrefix) {
		return pattern[len(bundlePrefix):], true
	}
	if strings.HasPrefix(pattern, bundleTypePrefix) {
		return pattern[len(bundleTypePrefix):], true
	}
	return "", false
}

// listingName extracts the listing machine name from a view route id like
// "view.articles.page_1". Empty when the route is not a listing route.
func listingName(viewRouteID string) string {
	if viewRouteID == "" {
		return ""
	}
	parts := strings.Split(viewRouteID, ".")
	if len(parts) < 2 || parts[0] != "view" {
		return ""
	}
	return parts[1]
}

// normalizePath guarantees a leading "/".
func normalizePath(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func trimTrailingSlash(p string) string {
	if p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/")
}

// compileWildcard turns a path pattern into an anchored regexp where "*"
// matches any run of characters and every other character is literal.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	expr := "^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$"
	return regexp.Compile(expr)
}
