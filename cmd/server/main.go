package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/analytics"
	"github.com/opencms/sectionbanner/internal/api"
	"github.com/opencms/sectionbanner/internal/config"
	"github.com/opencms/sectionbanner/internal/db"
	"github.com/opencms/sectionbanner/internal/files"
	"github.com/opencms/sectionbanner/internal/geoip"
	"github.com/opencms/sectionbanner/internal/logic/render"
	"github.com/opencms/sectionbanner/internal/logic/selectors"
	"github.com/opencms/sectionbanner/internal/models"
	"github.com/opencms/sectionbanner/internal/observability"
	"github.com/opencms/sectionbanner/internal/richtext"
	"github.com/opencms/sectionbanner/internal/tokens"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TracingEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	store, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer store.Close()

	metricsRegistry := observability.NewPrometheusRegistry()

	// Analytics and GeoIP are optional; the server runs without them.
	var analyticsSvc analytics.Service
	if cfg.ClickHouseDSN != "" {
		ch, err := analytics.InitClickHouse(cfg.ClickHouseDSN, metricsRegistry)
		if err != nil {
			return fmt.Errorf("failed to connect clickhouse: %w", err)
		}
		defer ch.Close()
		analyticsSvc = ch
	}

	var geoSvc *geoip.GeoIP
	if cfg.GeoIPDB != "" {
		geoSvc, err = geoip.Init(cfg.GeoIPDB)
		if err != nil {
			return fmt.Errorf("failed to load geoip db: %w", err)
		}
		defer func() { _ = geoSvc.Close() }()
	}

	banners := models.NewInMemoryBannerStore()
	loaded, err := pg.LoadBanners()
	if err != nil {
		return fmt.Errorf("load banners: %w", err)
	}
	if err := banners.SetBanners(loaded); err != nil {
		return fmt.Errorf("populate banner store: %w", err)
	}
	logger.Info("banner snapshot loaded", zap.Int("count", len(loaded)))

	selector := selectors.NewRuleBasedSelector()
	selector.SetLogger(logger)

	tokenSvc := tokens.NewService(logger, cfg.SiteName, cfg.SiteURL)
	renderer := render.NewBuilder(
		tokenSvc,
		richtext.New(logger, cfg.DefaultTextFormat),
		files.NewRedisLookup(store.Client, cfg.FileBaseURL, logger),
		logger,
		cfg.DefaultTextFormat,
	)

	srvDeps := api.NewServer(logger, store, pg, banners, analyticsSvc, geoSvc,
		selector, renderer, metricsRegistry, cfg)

	go srvDeps.StartInvalidationListener(ctx)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      srvDeps.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Banner server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
