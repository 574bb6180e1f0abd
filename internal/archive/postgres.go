package archive

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

const createDailySummary = `
	CREATE TABLE IF NOT EXISTS daily_summary (
		place_key      VARCHAR(120) NOT NULL,
		date           DATE NOT NULL,
		place_name     VARCHAR(100),
		timezone       VARCHAR(64),
		tmin           DECIMAL,
		tmax           DECIMAL,
		dew_mean       DECIMAL,
		precipitation  DECIMAL,
		rain           DECIMAL,
		snowfall       DECIMAL,
		wind_speed_min DECIMAL,
		wind_speed_max DECIMAL,
		gusts_max      DECIMAL,
		band           VARCHAR(10),
		generated_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (place_key, date)
	);`

const upsertDailySummary = `
	INSERT INTO daily_summary (
		place_key,
		date,
		place_name,
		timezone,
		tmin,
		tmax,
		dew_mean,
		precipitation,
		rain,
		snowfall,
		wind_speed_min,
		wind_speed_max,
		gusts_max,
		band,
		generated_at
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	ON CONFLICT (place_key, date) DO UPDATE SET
		place_name     = EXCLUDED.place_name,
		timezone       = EXCLUDED.timezone,
		tmin           = EXCLUDED.tmin,
		tmax           = EXCLUDED.tmax,
		dew_mean       = EXCLUDED.dew_mean,
		precipitation  = EXCLUDED.precipitation,
		rain           = EXCLUDED.rain,
		snowfall       = EXCLUDED.snowfall,
		wind_speed_min = EXCLUDED.wind_speed_min,
		wind_speed_max = EXCLUDED.wind_speed_max,
		gusts_max      = EXCLUDED.gusts_max,
		band           = EXCLUDED.band,
		generated_at   = EXCLUDED.generated_at;`

// Postgres archives daily summaries in a PostgreSQL table, one row per place
// and local date. Later overviews overwrite earlier rows for the same day.
type Postgres struct {
	db *sql.DB
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the daily_summary table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createDailySummary); err != nil {
		return fmt.Errorf("create daily_summary: %w", err)
	}
	return nil
}

// SaveOverview upserts every day of ov in a single transaction.
func (p *Postgres) SaveOverview(ctx context.Context, ov weather.Overview) error {
	rows := summaryRows(ov)
	if len(rows) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertDailySummary)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.PlaceKey,
			r.Date.String(),
			r.PlaceName,
			r.Timezone,
			r.TMin,
			r.TMax,
			r.DewMean,
			r.Precipitation,
			r.Rain,
			r.Snowfall,
			r.WindSpeedMin,
			r.WindSpeedMax,
			r.GustsMax,
			r.Band,
			r.GeneratedAt,
		); err != nil {
			return fmt.Errorf("upsert %s %s: %w", r.PlaceKey, r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}
