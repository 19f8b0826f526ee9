package selectors

import (
	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/logic"
	"github.com/opencms/sectionbanner/internal/models"
)

// RuleBasedSelector is the default Selector implementation. It walks the
// configured banner list in stored order, applies exclusion patterns before
// target patterns, and returns the first banner whose first stored pattern
// matches. The whole pass is a pure function of its inputs: identical banner
// list and context always yield the identical selection.
type RuleBasedSelector struct {
	logger *zap.Logger
}

var _ Selector = (*RuleBasedSelector)(nil)

// NewRuleBasedSelector constructs a RuleBasedSelector.
func NewRuleBasedSelector() *RuleBasedSelector {
	return &RuleBasedSelector{}
}

// SetLogger configures the logger for this selector. Without one, skipped
// banners are not logged.
func (s *RuleBasedSelector) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Select delegates to performSelection without tracing.
func (s *RuleBasedSelector) Select(banners []models.Banner, ctx models.RequestContext) *models.Selection {
	return s.performSelection(banners, ctx, nil)
}

// SelectWithTrace behaves like Select but records per-banner outcomes in the
// provided SelectionTrace.
func (s *RuleBasedSelector) SelectWithTrace(banners []models.Banner, ctx models.RequestContext,
	trace *logic.SelectionTrace) *models.Selection {
	return s.performSelection(banners, ctx, trace)
}

// performSelection contains the selection loop shared by Select and
// SelectWithTrace.
func (s *RuleBasedSelector) performSelection(banners []models.Banner, ctx models.RequestContext,
	trace *logic.SelectionTrace) *models.Selection {
	if trace != nil {
		all := make([]int, len(banners))
		for i := range banners {
			all[i] = i
		}
		trace.AddStep("start", all)
	}

	for i, banner := range banners {
		// A banner with no target sections can never match.
		if len(banner.TargetSections) == 0 {
			continue
		}

		if bundle, excluded := s.excludedBy(banner, ctx); excluded {
			trace.AddStepWithDetails("excluded", []int{i}, map[string]string{"bundle": bundle})
			if s.logger != nil {
				s.logger.Debug("banner excluded by bundle",
					zap.Int("banner", i),
					zap.String("bundle", bundle))
			}
			continue
		}

		// Target patterns in stored order; the first match wins globally,
		// across all remaining banners and patterns.
		for _, pattern := range banner.TargetSections {
			if logic.IsExclusion(pattern) {
				continue
			}
			if logic.Matches(pattern, ctx) {
				trace.AddStepWithDetails("match", []int{i}, map[string]string{"pattern": pattern})
				return &models.Selection{
					Banner:         banner,
					Index:          i,
					MatchedPattern: pattern,
				}
			}
		}
	}

	trace.AddStep("no_match", nil)
	return nil
}

// excludedBy reports whether any exclusion pattern of the banner names the
// context's current bundle. An excluded banner is skipped entirely, even if
// one of its target patterns would otherwise match.
func (s *RuleBasedSelector) excludedBy(banner models.Banner, ctx models.RequestContext) (string, bool) {
	if ctx.Bundle == "" {
		return "", false
	}
	for _, pattern := range banner.TargetSections {
		if !logic.IsExclusion(pattern) {
			continue
		}
		if logic.ExclusionTarget(pattern) == ctx.Bundle {
			return ctx.Bundle, true
		}
	}
	return "", false
}
