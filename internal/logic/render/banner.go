// Package render assembles the final render payload for a selected banner:
// resolved translation, substituted tokens, sanitized body markup, image URL,
// template suggestion and cache metadata.
package render

import (
	"context"

	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/files"
	"github.com/opencms/sectionbanner/internal/logic"
	"github.com/opencms/sectionbanner/internal/models"
	"github.com/opencms/sectionbanner/internal/richtext"
	"github.com/opencms/sectionbanner/internal/suggest"
	"github.com/opencms/sectionbanner/internal/tokens"
)

// Builder turns a selection result into render data. All collaborator calls
// (token substitution, rich text rendering, file lookup) are optional
// enrichments: their failure degrades the payload but never aborts it.
type Builder struct {
	tokens        *tokens.Service
	richText      *richtext.Renderer
	files         files.Lookup
	logger        *zap.Logger
	defaultFormat string
}

// NewBuilder constructs a Builder. files may be nil when no file storage is
// configured; banners then render without image URLs.
func NewBuilder(tokenSvc *tokens.Service, rt *richtext.Renderer, fileLookup files.Lookup,
	logger *zap.Logger, defaultFormat string) *Builder {
	return &Builder{
		tokens:        tokenSvc,
		richText:      rt,
		files:         fileLookup,
		logger:        logger,
		defaultFormat: defaultFormat,
	}
}

// Build produces the render payload for a selection. currentLang is the
// request's content language, defaultLang the site default used in the
// translation fallback chain.
func (b *Builder) Build(ctx context.Context, sel *models.Selection, reqCtx models.RequestContext,
	currentLang, defaultLang string) *models.RenderData {
	if sel == nil {
		return nil
	}

	tr := logic.ResolveTranslation(sel.Banner, currentLang, defaultLang, b.defaultFormat)

	title := tr.Title
	body := tr.Body
	if b.tokens != nil {
		title = b.tokens.Replace(title, reqCtx, currentLang)
		body.Value = b.tokens.Replace(body.Value, reqCtx, currentLang)
	}

	var bodyHTML string
	if b.richText != nil {
		bodyHTML = b.richText.Render(body.Value, body.Format)
	}

	var imageURL string
	if b.files != nil && sel.Banner.ImageID != "" {
		url, ok := b.files.ResolveURL(ctx, sel.Banner.ImageID)
		if !ok && b.logger != nil {
			b.logger.Debug("banner image not resolvable",
				zap.Int("banner", sel.Index),
				zap.String("image_id", sel.Banner.ImageID))
		}
		imageURL = url
	}

	return &models.RenderData{
		Title:             title,
		Body:              body,
		BodyHTML:          bodyHTML,
		ImageURL:          imageURL,
		CSSClass:          sel.Banner.CSSClass,
		MatchedPattern:    sel.MatchedPattern,
		SectionSuggestion: suggest.FromMatchedSection(sel.MatchedPattern),
		Cache:             logic.ComputeCacheInfo(sel, reqCtx),
	}
}
