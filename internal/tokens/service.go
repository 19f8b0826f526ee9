// Package tokens provides placeholder substitution for banner titles and
// bodies, in the [group:name] style CMS editors are used to.
package tokens

import (
	"time"

	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/models"
)

// Service wraps an Expander with the site-level configuration needed to build
// substitution contexts from request contexts.
type Service struct {
	expander *Expander
	logger   *zap.Logger
	siteName string
	siteURL  string
}

// NewService creates a token substitution service.
func NewService(logger *zap.Logger, siteName, siteURL string) *Service {
	return &Service{
		expander: NewExpander(logger),
		logger:   logger.Named("token_service"),
		siteName: siteName,
		siteURL:  siteURL,
	}
}

// NewServiceForTesting creates a service with isolated metrics.
func NewServiceForTesting(logger *zap.Logger, siteName, siteURL string) *Service {
	return &Service{
		expander: NewExpanderForTesting(logger, false),
		logger:   logger.Named("token_service"),
		siteName: siteName,
		siteURL:  siteURL,
	}
}

// RegisterCustomToken allows registration of additional token resolvers.
func (s *Service) RegisterCustomToken(name string, resolver ResolverFunc) error {
	return s.expander.RegisterToken(name, resolver)
}

// Replace substitutes tokens in text using the request context. On failure
// the original text is returned unchanged: substitution is an optional
// enrichment and must never abort banner rendering.
func (s *Service) Replace(text string, ctx models.RequestContext, lang string) string {
	if text == "" {
		return text
	}

	out, err := s.expander.Replace(text, &SubstitutionContext{
		Path:      ctx.Path,
		Alias:     ctx.Alias,
		RouteID:   ctx.RouteID,
		Language:  lang,
		Timestamp: time.Now(),
		SiteName:  s.siteName,
		SiteURL:   s.siteURL,
	})
	if err != nil {
		s.logger.Warn("token substitution failed, using original text", zap.Error(err))
		return text
	}
	return out
}
