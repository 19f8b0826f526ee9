package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/analytics"
	"github.com/opencms/sectionbanner/internal/config"
	"github.com/opencms/sectionbanner/internal/db"
	"github.com/opencms/sectionbanner/internal/geoip"
	"github.com/opencms/sectionbanner/internal/logic"
	"github.com/opencms/sectionbanner/internal/logic/render"
	"github.com/opencms/sectionbanner/internal/logic/selectors"
	"github.com/opencms/sectionbanner/internal/middleware"
	"github.com/opencms/sectionbanner/internal/models"
	"github.com/opencms/sectionbanner/internal/observability"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Store     *db.RedisStore
	PG        *db.Postgres
	Banners   models.BannerStore
	Analytics analytics.Service
	GeoIP     *geoip.GeoIP
	Selector  *selectors.RuleBasedSelector
	Renderer  *render.Builder
	Metrics   observability.MetricsRegistry
	Config    config.Config

	reloadMu sync.Mutex
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store *db.RedisStore, pg *db.Postgres,
	banners models.BannerStore, analyticsSvc analytics.Service, geo *geoip.GeoIP,
	selector *selectors.RuleBasedSelector, renderer *render.Builder,
	metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if selector == nil {
		selector = selectors.NewRuleBasedSelector()
		selector.SetLogger(logger)
	}

	return &Server{
		Logger:    logger,
		Store:     store,
		PG:        pg,
		Banners:   banners,
		Analytics: analyticsSvc,
		GeoIP:     geo,
		Selector:  selector,
		Renderer:  renderer,
		Metrics:   metrics,
		Config:    cfg,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/v1/banner", s.SelectBannerHandler).Methods(http.MethodGet)

	r.HandleFunc("/v1/banners", s.ListBanners).Methods(http.MethodGet)
	r.HandleFunc("/v1/banners", s.CreateBanner).Methods(http.MethodPost)
	r.HandleFunc("/v1/banners/{index}", s.GetBanner).Methods(http.MethodGet)
	r.HandleFunc("/v1/banners/{index}", s.UpdateBanner).Methods(http.MethodPut)
	r.HandleFunc("/v1/banners/{index}", s.DeleteBanner).Methods(http.MethodDelete)

	r.HandleFunc("/v1/reload", s.ReloadHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = middleware.WithTraceLogger(s.Logger)(handler)
	return otelhttp.NewHandler(handler, "sectionbanner")
}

// Reload refreshes the banner snapshot from Postgres.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}

	banners, err := s.PG.LoadBanners()
	if err != nil {
		return fmt.Errorf("load banners: %w", err)
	}
	if err := s.Banners.SetBanners(banners); err != nil {
		return fmt.Errorf("refresh banner snapshot: %w", err)
	}
	return nil
}

// notifyInvalidation publishes a cache-tag invalidation after a banner write.
// Peers reload their snapshot when they see the banner list tag.
func (s *Server) notifyInvalidation(tag string) {
	if s.Store == nil || s.Store.Client == nil {
		s.Logger.Warn("redis store not available, skipping invalidation")
		return
	}
	if err := s.Store.PublishInvalidation(tag); err != nil {
		s.Logger.Error("failed to publish invalidation", zap.Error(err))
		return
	}
	s.Metrics.IncrementInvalidations()
}

// StartInvalidationListener subscribes to the invalidation channel and
// reloads the banner snapshot whenever the banner list tag is invalidated by
// another instance. It blocks until ctx is cancelled.
func (s *Server) StartInvalidationListener(ctx context.Context) {
	if s.Store == nil || s.Store.Client == nil {
		return
	}
	sub := s.Store.SubscribeInvalidations(ctx)
	defer func() {
		_ = sub.Close()
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != logic.BannerListCacheTag {
				continue
			}
			if err := s.Reload(); err != nil {
				s.Logger.Error("reload after invalidation failed", zap.Error(err))
			} else {
				s.Logger.Info("banner snapshot reloaded after invalidation")
			}
		}
	}
}
