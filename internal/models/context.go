package models

// RequestContext holds the resolved routing facts of one HTTP request, used
// for evaluating banner target patterns. It is built once per request and
// never mutated afterwards; the matcher and selector treat it as read-only.
type RequestContext struct {
	// Path is the internal system path of the request, always starting
	// with "/".
	Path string
	// Alias is the human-readable alias of Path, or empty when the path
	// has no alias. It is never equal to Path.
	Alias string
	// RouteID is the opaque dotted identifier of the resolved route, or
	// empty when the request did not resolve to a named route.
	RouteID string
	// Bundle is the content type id of the displayed item. It is set only
	// when the request is a single-content-item canonical page.
	Bundle string
	// ViewRouteID is set only when the resolved route belongs to a
	// listing/view. It has the form "view.<listing>.<display>" so the
	// listing's machine name is the second dotted segment.
	ViewRouteID string
}

// OnContentItem reports whether a single-content-item route is active.
func (c RequestContext) OnContentItem() bool {
	return c.Bundle != ""
}

// OnListing reports whether the current route is a listing route.
func (c RequestContext) OnListing() bool {
	return c.ViewRouteID != ""
}
