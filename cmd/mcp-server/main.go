package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/db"
	"github.com/opencms/sectionbanner/internal/logic"
	"github.com/opencms/sectionbanner/internal/logic/selectors"
)

type ListBannersInput struct{}

type BannerSummary struct {
	Index          int      `json:"index"`
	Languages      []string `json:"languages"`
	TargetSections []string `json:"target_sections"`
	ImageID        string   `json:"image_id,omitempty"`
	CSSClass       string   `json:"css_class,omitempty"`
}

type ListBannersOutput struct {
	Banners []BannerSummary `json:"banners"`
}

type PreviewSelectionInput struct {
	Path    string `json:"path"`
	Alias   string `json:"alias,omitempty"`
	RouteID string `json:"route,omitempty"`
	Bundle  string `json:"bundle,omitempty"`
	Lang    string `json:"lang,omitempty"`
}

type PreviewSelectionOutput struct {
	Matched        bool                  `json:"matched"`
	BannerIndex    int                   `json:"banner_index,omitempty"`
	MatchedPattern string                `json:"matched_pattern,omitempty"`
	Title          string                `json:"title,omitempty"`
	Trace          *logic.SelectionTrace `json:"trace"`
}

// BannerOpsServer exposes banner inspection tools over MCP.
type BannerOpsServer struct {
	pg       *db.Postgres
	selector *selectors.RuleBasedSelector
	logger   *zap.Logger
}

// ListBanners returns a summary of every stored banner in selection order.
func (s *BannerOpsServer) ListBanners(ctx context.Context, req *mcp.CallToolRequest, input ListBannersInput) (*mcp.CallToolResult, ListBannersOutput, error) {
	banners, err := s.pg.LoadBanners()
	if err != nil {
		return nil, ListBannersOutput{}, fmt.Errorf("load banners: %w", err)
	}

	summaries := make([]BannerSummary, 0, len(banners))
	for i, b := range banners {
		langs := make([]string, 0, len(b.Translations))
		for _, t := range b.Translations {
			langs = append(langs, t.Lang)
		}
		summaries = append(summaries, BannerSummary{
			Index:          i,
			Languages:      langs,
			TargetSections: b.TargetSections,
			ImageID:        b.ImageID,
			CSSClass:       b.CSSClass,
		})
	}
	return nil, ListBannersOutput{Banners: summaries}, nil
}

// PreviewSelection runs banner selection against a synthetic request context
// and returns the outcome together with the full selection trace.
func (s *BannerOpsServer) PreviewSelection(ctx context.Context, req *mcp.CallToolRequest, input PreviewSelectionInput) (*mcp.CallToolResult, PreviewSelectionOutput, error) {
	if input.Path == "" {
		return nil, PreviewSelectionOutput{}, fmt.Errorf("path is required")
	}

	banners, err := s.pg.LoadBanners()
	if err != nil {
		return nil, PreviewSelectionOutput{}, fmt.Errorf("load banners: %w", err)
	}

	reqCtx := logic.BuildRequestContext(logic.RawRequest{
		Path:    input.Path,
		Alias:   input.Alias,
		RouteID: input.RouteID,
		Bundle:  input.Bundle,
	})

	trace := &logic.SelectionTrace{}
	sel := s.selector.SelectWithTrace(banners, reqCtx, trace)

	out := PreviewSelectionOutput{Trace: trace}
	if sel != nil {
		lang := input.Lang
		if lang == "" {
			lang = "en"
		}
		tr := logic.ResolveTranslation(sel.Banner, lang, "en", "basic_html")
		out.Matched = true
		out.BannerIndex = sel.Index
		out.MatchedPattern = sel.MatchedPattern
		out.Title = tr.Title
	}
	return nil, out, nil
}

func main() {
	// Log to stderr so stdio stays free for the MCP transport.
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("sectionbanner-mcp").With(zap.String("service", "sectionbanner-mcp"))

	logger.Info("Starting banner MCP server")

	postgresURL := os.Getenv("POSTGRES_DSN")
	if postgresURL == "" {
		logger.Fatal("POSTGRES_DSN environment variable is required")
	}

	pg, err := db.InitPostgres(postgresURL, 10, 5, 30*time.Minute, time.Minute)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	logger.Info("Connected to PostgreSQL")

	selector := selectors.NewRuleBasedSelector()
	selector.SetLogger(logger)

	opsServer := &BannerOpsServer{
		pg:       pg,
		selector: selector,
		logger:   logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sectionbanner",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_banners",
		Description: "List all stored banners with their target sections, in selection order",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, opsServer.ListBanners)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_selection",
		Description: "Run banner selection against a synthetic page request and return the matched banner plus the full selection trace",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Request path, e.g. /news/local",
				},
				"alias": map[string]interface{}{
					"type":        "string",
					"description": "Path alias if the CMS resolved one (optional)",
				},
				"route": map[string]interface{}{
					"type":        "string",
					"description": "Route identifier, e.g. entity.node.canonical or view.articles.page_1 (optional)",
				},
				"bundle": map[string]interface{}{
					"type":        "string",
					"description": "Content bundle of the viewed item, e.g. article (optional)",
				},
				"lang": map[string]interface{}{
					"type":        "string",
					"description": "Content language for the previewed title (optional, defaults to en)",
				},
			},
			"required": []string{"path"},
		},
	}, opsServer.PreviewSelection)

	stdioTransport := &mcp.StdioTransport{}

	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: stdioTransport,
		Writer:    &logBuffer,
	}

	logger.Info("MCP server running via stdio")

	if err := server.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
