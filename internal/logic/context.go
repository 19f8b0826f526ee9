package logic

import (
	"strings"

	"github.com/opencms/sectionbanner/internal/models"
)

// RawRequest carries the routing facts the CMS resolved for the current
// request, before normalization.
type RawRequest struct {
	// Path is the internal system path.
	Path string
	// Alias is the path alias, when the CMS knows one.
	Alias string
	// RouteID identifies the resolved route handler.
	RouteID string
	// Bundle is the content type of the displayed item, when the request
	// is a single-content-item page.
	Bundle string
}

// BuildRequestContext assembles the immutable request context consumed by the
// matcher. It is a pure transformation and never fails; fields whose route
// conditions do not hold come out empty.
func BuildRequestContext(raw RawRequest) models.RequestContext {
	ctx := models.RequestContext{
		Path:    normalizePath(raw.Path),
		RouteID: raw.RouteID,
	}

	if raw.Alias != "" {
		alias := normalizePath(raw.Alias)
		// An alias identical to the system path is no alias at all.
		if alias != ctx.Path {
			ctx.Alias = alias
		}
	}

	if strings.HasPrefix(raw.RouteID, listingPrefix) {
		ctx.ViewRouteID = raw.RouteID
	}

	// A bundle is only meaningful on single-content-item pages; listing
	// routes never carry one even if the caller supplied it.
	if raw.Bundle != "" && ctx.ViewRouteID == "" {
		ctx.Bundle = raw.Bundle
	}

	return ctx
}
