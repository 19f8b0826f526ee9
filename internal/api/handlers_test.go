package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/analytics"
	"github.com/opencms/sectionbanner/internal/config"
	"github.com/opencms/sectionbanner/internal/files"
	"github.com/opencms/sectionbanner/internal/logic/render"
	"github.com/opencms/sectionbanner/internal/logic/selectors"
	"github.com/opencms/sectionbanner/internal/models"
	"github.com/opencms/sectionbanner/internal/observability"
	"github.com/opencms/sectionbanner/internal/richtext"
	"github.com/opencms/sectionbanner/internal/tokens"
)

func newTestServer(banners []models.Banner) (*Server, *analytics.MockAnalytics) {
	logger := zap.NewNop()
	store := models.NewInMemoryBannerStore()
	_ = store.SetBanners(banners)

	mock := analytics.NewMockAnalytics()

	renderer := render.NewBuilder(
		tokens.NewServiceForTesting(logger, "Example Site", "https://example.com"),
		richtext.New(logger, richtext.FormatBasicHTML),
		files.StaticLookup{"42": "https://cdn.example.com/banner.png"},
		logger,
		richtext.FormatBasicHTML,
	)

	selector := selectors.NewRuleBasedSelector()
	selector.SetLogger(logger)

	cfg := config.Config{
		DefaultLanguage:   "en",
		DefaultTextFormat: richtext.FormatBasicHTML,
		DebugTrace:        true,
	}

	srv := NewServer(logger, nil, nil, store, mock, nil, selector, renderer,
		&observability.MockMetricsRegistry{}, cfg)
	return srv, mock
}

func testBanners() []models.Banner {
	return []models.Banner{
		{
			Translations: []models.Translation{
				{Lang: "en", Title: "News banner", Body: models.Body{
					Value: "<p>Hello</p>", Format: richtext.FormatBasicHTML,
				}},
				{Lang: "fr", Title: "Bannière actus"},
			},
			ImageID:        "42",
			TargetSections: []string{"/news/*", "except:bundle:opinion"},
		},
		{
			Translations:   []models.Translation{{Lang: "en", Title: "Article banner"}},
			TargetSections: []string{"bundle:article"},
		},
	}
}

func TestSelectBannerHandler_Match(t *testing.T) {
	srv, mock := newTestServer(testBanners())

	req := httptest.NewRequest(http.MethodGet, "/v1/banner?path=/news/local&route=entity.node.canonical&bundle=article", nil)
	rr := httptest.NewRecorder()
	srv.SelectBannerHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.RenderData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "News banner" {
		t.Errorf("unexpected title: %q", resp.Title)
	}
	if resp.MatchedPattern != "/news/*" {
		t.Errorf("unexpected matched pattern: %q", resp.MatchedPattern)
	}
	if resp.ImageURL != "https://cdn.example.com/banner.png" {
		t.Errorf("unexpected image url: %q", resp.ImageURL)
	}
	if resp.Cache.MaxAge != models.CacheMaxAgeUnbounded {
		t.Errorf("expected unbounded max-age, got %d", resp.Cache.MaxAge)
	}

	waitForEvents(t, mock, 1)
	ev := mock.Recorded()[0]
	if ev.EventType != analytics.EventDisplay {
		t.Errorf("expected display event, got %q", ev.EventType)
	}
	if ev.BannerIndex == nil || *ev.BannerIndex != 0 {
		t.Errorf("unexpected banner index in event: %+v", ev.BannerIndex)
	}
}

func TestSelectBannerHandler_NoMatch(t *testing.T) {
	srv, mock := newTestServer(testBanners())

	req := httptest.NewRequest(http.MethodGet, "/v1/banner?path=/sports/scores", nil)
	rr := httptest.NewRecorder()
	srv.SelectBannerHandler(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}

	waitForEvents(t, mock, 1)
	if ev := mock.Recorded()[0]; ev.EventType != analytics.EventNoMatch {
		t.Errorf("expected no_match event, got %q", ev.EventType)
	}
}

func TestSelectBannerHandler_ExclusionApplied(t *testing.T) {
	srv, _ := newTestServer(testBanners())

	// The opinion bundle is excluded from the first banner; no other banner
	// targets this request.
	req := httptest.NewRequest(http.MethodGet, "/v1/banner?path=/news/editorial&route=entity.node.canonical&bundle=opinion", nil)
	rr := httptest.NewRecorder()
	srv.SelectBannerHandler(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for excluded bundle, got %d", rr.Code)
	}
}

func TestSelectBannerHandler_LanguageFallback(t *testing.T) {
	srv, _ := newTestServer(testBanners())

	req := httptest.NewRequest(http.MethodGet, "/v1/banner?path=/news/local&lang=de", nil)
	rr := httptest.NewRecorder()
	srv.SelectBannerHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.RenderData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// No German translation exists; the site default wins.
	if resp.Title != "News banner" {
		t.Errorf("expected default-language fallback, got %q", resp.Title)
	}
}

func TestSelectBannerHandler_MissingPath(t *testing.T) {
	srv, _ := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/banner", nil)
	rr := httptest.NewRecorder()
	srv.SelectBannerHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSelectBannerHandler_DebugTrace(t *testing.T) {
	srv, _ := newTestServer(testBanners())

	req := httptest.NewRequest(http.MethodGet, "/v1/banner?path=/news/local&debug=1", nil)
	rr := httptest.NewRecorder()
	srv.SelectBannerHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"trace"`) {
		t.Errorf("expected trace in debug response, got %s", rr.Body.String())
	}
}

func TestBannerCRUD(t *testing.T) {
	srv, _ := newTestServer(nil)
	router := srv.Router()

	// Create.
	payload := `{"translations":[{"lang":"en","title":"New","body":{"value":"x","format":"plain_text"}}],"target_sections":["/promo/*"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/banners", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	// List.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/banners", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var list []models.Banner
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].TargetSections[0] != "/promo/*" {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Update merges translations by language.
	update := `{"translations":[{"lang":"fr","title":"Nouveau"}],"target_sections":["/promo/*"]}`
	req = httptest.NewRequest(http.MethodPut, "/v1/banners/0", bytes.NewBufferString(update))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated models.Banner
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if len(updated.Translations) != 2 {
		t.Errorf("expected merged translations, got %+v", updated.Translations)
	}

	// Get.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/banners/0", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}

	// Delete.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/banners/0", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if srv.Banners.Count() != 0 {
		t.Errorf("expected empty store after delete, got %d", srv.Banners.Count())
	}

	// Out-of-range index.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/banners/5", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing banner, got %d", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer(nil)

	rr := httptest.NewRecorder()
	srv.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ok") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func waitForEvents(t *testing.T, mock *analytics.MockAnalytics, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(mock.Recorded()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d analytics events, got %d", n, len(mock.Recorded()))
}
