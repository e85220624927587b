// Package store persists approved contributions and recomputed KPI-period
// aggregates in SQLite. Aggregate upserts are last-writer-wins; the
// aggregation core is deterministic over its inputs, so recomputing is
// always safe.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"qpro/internal/aggregate"
	"qpro/internal/ingest"
)

// Store manages QPRO state in SQLite.
type Store struct {
	DBPath string
	db     *sql.DB
}

// Open opens or creates the QPRO state database.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	store := &Store{
		DBPath: absPath,
		db:     db,
	}

	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS contributions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	initiative_id TEXT NOT NULL,
	kra_id TEXT NOT NULL,
	unit_id TEXT NOT NULL,
	year INTEGER NOT NULL,
	quarter INTEGER NOT NULL,
	reported TEXT NOT NULL,
	target TEXT,
	data_type TEXT
);

CREATE INDEX IF NOT EXISTS idx_contrib_period ON contributions(initiative_id, year, quarter);

CREATE TABLE IF NOT EXISTS aggregates (
	kra_id TEXT NOT NULL,
	initiative_id TEXT NOT NULL,
	year INTEGER NOT NULL,
	quarter INTEGER NOT NULL,
	total_reported REAL NOT NULL,
	total_target REAL NOT NULL,
	achievement_percent REAL NOT NULL,
	manual_override REAL,
	PRIMARY KEY (kra_id, initiative_id, year, quarter)
);

CREATE INDEX IF NOT EXISTS idx_agg_initiative_year ON aggregates(initiative_id, year);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertContribution records one approved contribution.
func (s *Store) InsertContribution(ctx context.Context, c ingest.Contribution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributions (initiative_id, kra_id, unit_id, year, quarter, reported, target, data_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.InitiativeID, c.KRAID, c.UnitID, c.Year, c.Quarter, c.Reported, c.Target, c.DataType)
	if err != nil {
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

// ContributionsForPeriod returns approved contributions for one KPI-period.
// Year or quarter of zero matches any period. Implements ingest.PeriodSource.
func (s *Store) ContributionsForPeriod(ctx context.Context, initiativeID string, year, quarter int) ([]ingest.Contribution, error) {
	query := `
		SELECT initiative_id, kra_id, unit_id, year, quarter, reported, target, data_type
		FROM contributions
		WHERE initiative_id = ?
	`
	args := []any{initiativeID}
	if year != 0 {
		query += " AND year = ?"
		args = append(args, year)
	}
	if quarter != 0 {
		query += " AND quarter = ?"
		args = append(args, quarter)
	}
	query += " ORDER BY unit_id, year, quarter"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	var out []ingest.Contribution
	for rows.Next() {
		var c ingest.Contribution
		var target, dataType sql.NullString
		if err := rows.Scan(&c.InitiativeID, &c.KRAID, &c.UnitID, &c.Year, &c.Quarter, &c.Reported, &target, &dataType); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		if target.Valid {
			c.Target = target.String
		}
		if dataType.Valid {
			c.DataType = dataType.String
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}
	return out, nil
}

// UpsertAggregate writes the recomputed aggregate for one KPI-period,
// preserving any manual override already set on the row.
func (s *Store) UpsertAggregate(ctx context.Context, row aggregate.Row) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aggregates (kra_id, initiative_id, year, quarter, total_reported, total_target, achievement_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kra_id, initiative_id, year, quarter) DO UPDATE SET
			total_reported = excluded.total_reported,
			total_target = excluded.total_target,
			achievement_percent = excluded.achievement_percent
	`, row.KRAID, row.InitiativeID, row.Year, row.Quarter, row.TotalReported, row.TotalTarget, row.AchievementPercent)
	if err != nil {
		return fmt.Errorf("upsert aggregate: %w", err)
	}
	return nil
}

// SetManualOverride sets the manual override for one KPI-period, creating
// the row if the period has no computed aggregate yet.
func (s *Store) SetManualOverride(ctx context.Context, kraID, initiativeID string, year, quarter int, value float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aggregates (kra_id, initiative_id, year, quarter, total_reported, total_target, achievement_percent, manual_override)
		VALUES (?, ?, ?, ?, 0, 0, 0, ?)
		ON CONFLICT (kra_id, initiative_id, year, quarter) DO UPDATE SET
			manual_override = excluded.manual_override
	`, kraID, initiativeID, year, quarter, value)
	if err != nil {
		return fmt.Errorf("set manual override: %w", err)
	}
	return nil
}

// ClearManualOverride removes the manual override for one KPI-period.
func (s *Store) ClearManualOverride(ctx context.Context, kraID, initiativeID string, year, quarter int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE aggregates
		SET manual_override = NULL
		WHERE kra_id = ? AND initiative_id = ? AND year = ? AND quarter = ?
	`, kraID, initiativeID, year, quarter)
	if err != nil {
		return fmt.Errorf("clear manual override: %w", err)
	}
	return nil
}

// GetAggregate returns the aggregate row for one KPI-period.
func (s *Store) GetAggregate(ctx context.Context, kraID, initiativeID string, year, quarter int) (*aggregate.Row, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT kra_id, initiative_id, year, quarter, total_reported, total_target, achievement_percent, manual_override
		FROM aggregates
		WHERE kra_id = ? AND initiative_id = ? AND year = ? AND quarter = ?
	`, kraID, initiativeID, year, quarter)

	var agg aggregate.Row
	var override sql.NullFloat64
	err := row.Scan(&agg.KRAID, &agg.InitiativeID, &agg.Year, &agg.Quarter, &agg.TotalReported, &agg.TotalTarget, &agg.AchievementPercent, &override)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregate: %w", err)
	}
	if override.Valid {
		v := override.Float64
		agg.ManualOverride = &v
	}
	return &agg, nil
}

// AggregatesThrough returns all aggregate rows for one initiative with
// year at or before the query year, ordered for the cumulative fold.
func (s *Store) AggregatesThrough(ctx context.Context, kraID, initiativeID string, year int) ([]aggregate.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kra_id, initiative_id, year, quarter, total_reported, total_target, achievement_percent, manual_override
		FROM aggregates
		WHERE kra_id = ? AND initiative_id = ? AND year <= ?
		ORDER BY quarter, year
	`, kraID, initiativeID, year)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var out []aggregate.Row
	for rows.Next() {
		var agg aggregate.Row
		var override sql.NullFloat64
		if err := rows.Scan(&agg.KRAID, &agg.InitiativeID, &agg.Year, &agg.Quarter, &agg.TotalReported, &agg.TotalTarget, &agg.AchievementPercent, &override); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		if override.Valid {
			v := override.Float64
			agg.ManualOverride = &v
		}
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}
	return out, nil
}
