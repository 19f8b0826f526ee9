package tokens

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// tokenPattern matches placeholder tokens of the form [group:name].
var tokenPattern = regexp.MustCompile(`\[([a-z0-9_-]+):([a-z0-9_.-]+)\]`)

// Expander replaces [group:name] tokens in banner text with request-derived
// values. Tokens that no resolver recognizes are removed from the output,
// never left literal.
type Expander struct {
	logger      *zap.Logger
	resolvers   map[string]ResolverFunc
	resolversMu sync.RWMutex
	strictMode  bool // If true, any resolver failure fails the whole substitution

	// Metrics
	substitutionCounter  *prometheus.CounterVec
	substitutionDuration prometheus.Histogram
	failureCounter       *prometheus.CounterVec
}

// ResolverFunc produces the replacement value for one token.
type ResolverFunc func(ctx *SubstitutionContext) (string, error)

// SubstitutionContext contains all data available for token substitution.
type SubstitutionContext struct {
	// Request context
	Path      string
	Alias     string
	RouteID   string
	Language  string
	Timestamp time.Time

	// Site context
	SiteName string
	SiteURL  string
}

// NewExpander creates an expander with the default token set, registered on
// the global prometheus registry.
func NewExpander(logger *zap.Logger) *Expander {
	return newExpander(logger, false, promauto.With(prometheus.DefaultRegisterer))
}

// NewExpanderForTesting creates an expander with an isolated metrics registry
// so parallel tests do not collide on metric registration.
func NewExpanderForTesting(logger *zap.Logger, strictMode bool) *Expander {
	return newExpander(logger, strictMode, promauto.With(prometheus.NewRegistry()))
}

func newExpander(logger *zap.Logger, strictMode bool, factory promauto.Factory) *Expander {
	e := &Expander{
		logger:     logger,
		resolvers:  make(map[string]ResolverFunc),
		strictMode: strictMode,

		substitutionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banner_token_substitutions_total",
				Help: "Total number of token substitutions performed",
			},
			[]string{"token", "success"},
		),
		substitutionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "banner_token_substitution_duration_seconds",
				Help:    "Time taken to substitute all tokens in a text",
				Buckets: prometheus.DefBuckets,
			},
		),
		failureCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banner_token_substitution_failures_total",
				Help: "Total number of token substitution failures",
			},
			[]string{"token", "error_type"},
		),
	}
	e.registerDefaultTokens()
	return e
}

// SetStrictMode enables or disables strict substitution mode.
func (e *Expander) SetStrictMode(strict bool) {
	e.strictMode = strict
}

// Replace substitutes every token in text. Unresolved or failing tokens are
// cleared in lenient mode; in strict mode a resolver failure aborts with an
// error.
func (e *Expander) Replace(text string, ctx *SubstitutionContext) (string, error) {
	start := time.Now()
	defer func() {
		e.substitutionDuration.Observe(time.Since(start).Seconds())
	}()

	if text == "" || !strings.Contains(text, "[") {
		return text, nil
	}

	e.resolversMu.RLock()
	defer e.resolversMu.RUnlock()

	var firstErr error
	out := tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := token[1 : len(token)-1]
		resolver, ok := e.resolvers[name]
		if !ok {
			// Unknown token: removed, not left literal.
			e.substitutionCounter.WithLabelValues(name, "false").Inc()
			e.failureCounter.WithLabelValues(name, "unknown_token").Inc()
			return ""
		}

		value, err := resolver(ctx)
		if err != nil {
			e.substitutionCounter.WithLabelValues(name, "false").Inc()
			e.failureCounter.WithLabelValues(name, "resolver_error").Inc()
			e.logger.Error("failed to resolve token",
				zap.String("token", name),
				zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("resolve token %q: %w", name, err)
			}
			return ""
		}

		e.substitutionCounter.WithLabelValues(name, "true").Inc()
		return value
	})

	if firstErr != nil && e.strictMode {
		return "", firstErr
	}
	return out, nil
}

// RegisterToken adds a custom token resolver under "group:name".
func (e *Expander) RegisterToken(name string, resolver ResolverFunc) error {
	if name == "" {
		return fmt.Errorf("token name cannot be empty")
	}
	if resolver == nil {
		return fmt.Errorf("resolver cannot be nil")
	}

	e.resolversMu.Lock()
	defer e.resolversMu.Unlock()
	e.resolvers[name] = resolver

	e.logger.Info("registered custom token", zap.String("token", name))
	return nil
}

// RegisteredTokens returns the names of all registered tokens.
func (e *Expander) RegisteredTokens() []string {
	e.resolversMu.RLock()
	defer e.resolversMu.RUnlock()

	names := make([]string, 0, len(e.resolvers))
	for name := range e.resolvers {
		names = append(names, name)
	}
	return names
}

// registerDefaultTokens installs the built-in token set.
func (e *Expander) registerDefaultTokens() {
	e.resolvers["site:name"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.SiteName, nil
	}
	e.resolvers["site:url"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.SiteURL, nil
	}

	e.resolvers["current-page:path"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.Path, nil
	}
	e.resolvers["current-page:alias"] = func(ctx *SubstitutionContext) (string, error) {
		if ctx.Alias != "" {
			return ctx.Alias, nil
		}
		return ctx.Path, nil
	}
	e.resolvers["current-page:url"] = func(ctx *SubstitutionContext) (string, error) {
		path := ctx.Alias
		if path == "" {
			path = ctx.Path
		}
		return strings.TrimSuffix(ctx.SiteURL, "/") + path, nil
	}
	e.resolvers["current-page:route"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.RouteID, nil
	}
	e.resolvers["current-page:language"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.Language, nil
	}

	e.resolvers["date:short"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.Timestamp.Format("2006-01-02"), nil
	}
	e.resolvers["date:year"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.Timestamp.Format("2006"), nil
	}
	e.resolvers["date:iso"] = func(ctx *SubstitutionContext) (string, error) {
		return ctx.Timestamp.Format(time.RFC3339), nil
	}

	// Cache-busting helper for embedded asset URLs.
	e.resolvers["random:uuid"] = func(ctx *SubstitutionContext) (string, error) {
		return uuid.New().String(), nil
	}
}
