package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/models"
)

// Postgres wraps the banner persistence connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the banner table if it doesn't exist. Banner identity is
// the dense position column; saves rewrite the whole list so positions never
// have gaps.
const schemaSQL = `CREATE TABLE IF NOT EXISTS banners (
    position INT PRIMARY KEY,
    translations JSONB NOT NULL DEFAULT '[]',
    image_id TEXT NOT NULL DEFAULT '',
    target_sections TEXT[] NOT NULL DEFAULT '{}',
    css_class TEXT NOT NULL DEFAULT ''
);`

// InitPostgres connects to Postgres with connection pooling configuration and
// ensures the schema exists.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// LoadBanners fetches the banner list in stored order. An empty table yields
// an empty slice.
func (p *Postgres) LoadBanners() ([]models.Banner, error) {
	rows, err := p.DB.QueryContext(context.Background(),
		`SELECT translations, image_id, target_sections, css_class FROM banners ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load banners: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	banners := []models.Banner{}
	for rows.Next() {
		var (
			b            models.Banner
			translations []byte
			sections     pq.StringArray
		)
		if err := rows.Scan(&translations, &b.ImageID, &sections, &b.CSSClass); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		if err := json.Unmarshal(translations, &b.Translations); err != nil {
			return nil, fmt.Errorf("decode banner translations: %w", err)
		}
		b.TargetSections = []string(sections)
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load banners: %w", err)
	}
	return banners, nil
}

// ReplaceBanners rewrites the whole banner list in one transaction with dense
// positions. Concurrent saves resolve last-write-wins at this layer.
func (p *Postgres) ReplaceBanners(banners []models.Banner) error {
	ctx := context.Background()
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace banners: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM banners`); err != nil {
		return fmt.Errorf("clear banners: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO banners (position, translations, image_id, target_sections, css_class)
         VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("prepare banner insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, b := range banners {
		translations := b.Translations
		if translations == nil {
			translations = []models.Translation{}
		}
		encoded, err := json.Marshal(translations)
		if err != nil {
			return fmt.Errorf("encode banner %d translations: %w", i, err)
		}
		sections := b.TargetSections
		if sections == nil {
			sections = []string{}
		}
		if _, err := stmt.ExecContext(ctx, i, encoded, b.ImageID, pq.Array(sections), b.CSSClass); err != nil {
			return fmt.Errorf("insert banner %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace banners: %w", err)
	}
	return nil
}
