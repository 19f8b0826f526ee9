package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/analytics"
	"github.com/opencms/sectionbanner/internal/logic"
	"github.com/opencms/sectionbanner/internal/middleware"
	"github.com/opencms/sectionbanner/internal/models"
)

var tracer = otel.Tracer("sectionbanner")

// bannerResponse is the payload returned for a matched banner.
type bannerResponse struct {
	models.RenderData
	Debug any `json:"debug,omitempty"`
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// SelectBannerHandler handles GET /v1/banner: it builds the request context
// from the query parameters the CMS resolved, runs banner selection and
// returns the render payload. No matching banner yields 204 so the caller
// emits no output.
func (s *Server) SelectBannerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "SelectBannerHandler",
		trace.WithAttributes(
			attribute.String("http.method", "GET"),
			attribute.String("http.route", "/v1/banner"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "banner"
	const method = "GET"

	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		logger.Error("missing path parameter", zap.String("event_type", "banner_request"))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	alias := q.Get("alias")
	if alias == "" && s.Store != nil {
		alias = s.Store.GetAlias(path)
	}

	reqCtx := logic.BuildRequestContext(logic.RawRequest{
		Path:    path,
		Alias:   alias,
		RouteID: q.Get("route"),
		Bundle:  q.Get("bundle"),
	})
	span.SetAttributes(
		attribute.String("banner.path", reqCtx.Path),
		attribute.String("banner.route_id", reqCtx.RouteID),
	)

	lang := q.Get("lang")
	if lang == "" {
		lang = s.Config.DefaultLanguage
	}

	banners := s.Banners.GetBanners()

	var selTrace *logic.SelectionTrace
	debug := s.Config.DebugTrace && q.Get("debug") == "1"
	if debug {
		selTrace = &logic.SelectionTrace{}
	}

	selStart := time.Now()
	sel := s.Selector.SelectWithTrace(banners, reqCtx, selTrace)
	s.Metrics.RecordSelectionDuration(time.Since(selStart))

	requestID := uuid.New().String()
	visitor := logic.ResolveVisitor(s.GeoIP, r)
	s.recordEvent(sel, reqCtx, lang, requestID, visitor)

	if sel == nil {
		s.Metrics.IncrementSelections("no_match")
		s.Metrics.IncrementRequests(endpoint, method, "204")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		if debug {
			writeJSON(w, map[string]any{"debug": map[string]any{"trace": selTrace}})
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.Metrics.IncrementSelections("match")

	data := s.Renderer.Build(ctx, sel, reqCtx, lang, s.Config.DefaultLanguage)

	resp := bannerResponse{RenderData: *data}
	if debug {
		resp.Debug = map[string]any{"trace": selTrace}
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, resp)
}

// recordEvent hands the selection outcome to analytics. Recording is
// best-effort and asynchronous; failures are logged and never affect the
// response.
func (s *Server) recordEvent(sel *models.Selection, reqCtx models.RequestContext,
	lang, requestID string, visitor logic.VisitorInfo) {
	if s.Analytics == nil {
		return
	}

	ev := analytics.DisplayEvent{
		Timestamp:  time.Now(),
		EventType:  analytics.EventNoMatch,
		RequestID:  requestID,
		Path:       reqCtx.Path,
		RouteID:    reqCtx.RouteID,
		Language:   lang,
		DeviceType: visitor.DeviceType,
		Country:    visitor.Country,
		IsBot:      visitor.IsBot,
	}
	if sel != nil {
		index := int32(sel.Index)
		ev.EventType = analytics.EventDisplay
		ev.BannerIndex = &index
		ev.MatchedPattern = sel.MatchedPattern
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Analytics.RecordEvent(ctx, ev); err != nil && err != analytics.ErrUnavailable {
			s.Logger.Warn("record banner event", zap.Error(err))
		}
	}()
}
