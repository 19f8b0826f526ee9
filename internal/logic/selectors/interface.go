package selectors

import (
	"github.com/opencms/sectionbanner/internal/models"
)

// Selector defines a pluggable interface for banner selection. A nil result
// means no banner targets the request; that is a normal outcome, not an
// error.
type Selector interface {
	Select(banners []models.Banner, ctx models.RequestContext) *models.Selection
}
