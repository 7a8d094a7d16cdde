package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/macro-eval/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS series (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	units      TEXT NOT NULL DEFAULT '',
	frequency  TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS observations (
	series_id TEXT NOT NULL REFERENCES series(id),
	date      TEXT NOT NULL,
	value     REAL,
	PRIMARY KEY (series_id, date)
);

CREATE INDEX IF NOT EXISTS idx_observations_series_date ON observations(series_id, date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertSeries(ctx context.Context, meta model.SeriesMeta) error {
	fetchedAt := meta.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO series (id, title, units, frequency, notes, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   units = excluded.units,
		   frequency = excluded.frequency,
		   notes = excluded.notes,
		   fetched_at = excluded.fetched_at`,
		meta.ID, meta.Title, meta.Units, string(meta.Frequency), meta.Notes, fetchedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert series %s", meta.ID)
}

func (s *SQLiteStore) ListSeries(ctx context.Context) ([]model.SeriesMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, units, frequency, notes, fetched_at FROM series ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list series")
	}
	defer rows.Close()

	var metas []model.SeriesMeta
	for rows.Next() {
		var m model.SeriesMeta
		var freq string
		if err := rows.Scan(&m.ID, &m.Title, &m.Units, &freq, &m.Notes, &m.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan series")
		}
		m.Frequency = model.Frequency(freq)
		metas = append(metas, m)
	}
	return metas, eris.Wrap(rows.Err(), "sqlite: list series iterate")
}

func (s *SQLiteStore) InsertObservations(ctx context.Context, obs []model.Observation) (int64, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (series_id, date, value)
		 VALUES (?, ?, ?)
		 ON CONFLICT (series_id, date) DO UPDATE SET value = excluded.value`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare observation insert")
	}
	defer stmt.Close()

	var n int64
	for _, o := range obs {
		var val any
		if o.Value != nil {
			val = *o.Value
		}
		if _, err := stmt.ExecContext(ctx, o.SeriesID, o.Date.String(), val); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert observation %s %s", o.SeriesID, o.Date)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit observations")
	}
	return n, nil
}

func (s *SQLiteStore) GetSeries(ctx context.Context, id string) (*model.Series, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, units, frequency FROM series WHERE id = ?`, id,
	)

	series := &model.Series{}
	var freq string
	err := row.Scan(&series.ID, &series.Title, &series.Units, &freq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSeriesNotFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get series %s", id)
	}
	series.Frequency = model.Frequency(freq)

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, value FROM observations WHERE series_id = ? ORDER BY date`, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get observations %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var dateStr string
		var val sql.NullFloat64
		if err := rows.Scan(&dateStr, &val); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan observation")
		}
		date, err := model.ParseDate(dateStr)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: bad observation date for %s", id)
		}
		o := model.Observation{SeriesID: id, Date: date}
		if val.Valid {
			o.Value = model.Float64(val.Float64)
		}
		series.Observations = append(series.Observations, o)
	}
	return series, eris.Wrapf(rows.Err(), "sqlite: observations iterate %s", id)
}
