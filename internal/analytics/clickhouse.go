package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/opencms/sectionbanner/internal/observability"
)

// Event types recorded for banner requests.
const (
	EventDisplay = "display"
	EventNoMatch = "no_match"
)

// DisplayEvent mirrors a row in the banner_events table. BannerIndex and
// MatchedPattern are unset for no_match events.
type DisplayEvent struct {
	Timestamp      time.Time
	EventType      string
	RequestID      string
	BannerIndex    *int32
	MatchedPattern string
	Path           string
	RouteID        string
	Language       string
	DeviceType     string
	Country        string
	IsBot          bool
}

// Service records banner delivery events. Implementations must return
// ErrUnavailable when the underlying storage is not configured; callers treat
// recording as best-effort and never let it affect selection.
type Service interface {
	RecordEvent(ctx context.Context, ev DisplayEvent) error
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

// InitClickHouse connects to ClickHouse and ensures the banner_events table
// exists.
func InitClickHouse(dsn string, metrics observability.MetricsRegistry) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(25)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS banner_events (
       timestamp       DateTime,
       event_type      String,
       request_id      String,
       banner_index    Nullable(Int32),
       matched_pattern String,
       path            String,
       route_id        String,
       language        String,
       device_type     String,
       country         String,
       is_bot          UInt8
   ) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

// RecordEvent inserts a single event row into the banner_events table.
func (a *Analytics) RecordEvent(ctx context.Context, ev DisplayEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	var index sql.NullInt32
	if ev.BannerIndex != nil {
		index.Int32 = *ev.BannerIndex
		index.Valid = true
	}
	isBot := uint8(0)
	if ev.IsBot {
		isBot = 1
	}

	_, err := a.DB.ExecContext(ctx,
		`INSERT INTO banner_events
            (timestamp, event_type, request_id, banner_index, matched_pattern,
             path, route_id, language, device_type, country, is_bot)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Timestamp, ev.EventType, ev.RequestID, index, ev.MatchedPattern,
		ev.Path, ev.RouteID, ev.Language, ev.DeviceType, ev.Country, isBot)
	if err != nil {
		if a.Metrics != nil {
			a.Metrics.IncrementAnalyticsErrors()
		}
		return fmt.Errorf("insert banner event: %w", err)
	}
	if a.Metrics != nil {
		a.Metrics.IncrementEvent(ev.EventType)
	}
	return nil
}

// Close shuts down the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
