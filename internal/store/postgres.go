package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/macro-eval/internal/db"
	"github.com/sells-group/macro-eval/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot read path: truth computation loads whole series repeatedly.
var preparedStatements = map[string]string{
	"upsert_series": `INSERT INTO series (id, title, units, frequency, notes, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		  title = EXCLUDED.title, units = EXCLUDED.units,
		  frequency = EXCLUDED.frequency, notes = EXCLUDED.notes,
		  fetched_at = EXCLUDED.fetched_at`,
	"get_series":       `SELECT id, title, units, frequency FROM series WHERE id = $1`,
	"get_observations": `SELECT date, value FROM observations WHERE series_id = $1 ORDER BY date`,
	"list_series":      `SELECT id, title, units, frequency, notes, fetched_at FROM series ORDER BY id`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Tests use this with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS series (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	units      TEXT NOT NULL DEFAULT '',
	frequency  TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS observations (
	series_id TEXT NOT NULL REFERENCES series(id),
	date      DATE NOT NULL,
	value     DOUBLE PRECISION,
	PRIMARY KEY (series_id, date)
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertSeries(ctx context.Context, meta model.SeriesMeta) error {
	fetchedAt := meta.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, preparedStatements["upsert_series"],
		meta.ID, meta.Title, meta.Units, string(meta.Frequency), meta.Notes, fetchedAt,
	)
	return eris.Wrapf(err, "postgres: upsert series %s", meta.ID)
}

func (s *PostgresStore) ListSeries(ctx context.Context) ([]model.SeriesMeta, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["list_series"])
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list series")
	}
	defer rows.Close()

	var metas []model.SeriesMeta
	for rows.Next() {
		var m model.SeriesMeta
		var freq string
		if err := rows.Scan(&m.ID, &m.Title, &m.Units, &freq, &m.Notes, &m.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan series")
		}
		m.Frequency = model.Frequency(freq)
		metas = append(metas, m)
	}
	return metas, eris.Wrap(rows.Err(), "postgres: list series iterate")
}

func (s *PostgresStore) InsertObservations(ctx context.Context, obs []model.Observation) (int64, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(obs))
	for i, o := range obs {
		var val any
		if o.Value != nil {
			val = *o.Value
		}
		rows[i] = []any{o.SeriesID, o.Date.Time, val}
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "observations",
		Columns:      []string{"series_id", "date", "value"},
		ConflictKeys: []string{"series_id", "date"},
	}, rows)
	return n, eris.Wrap(err, "postgres: insert observations")
}

func (s *PostgresStore) GetSeries(ctx context.Context, id string) (*model.Series, error) {
	series := &model.Series{}
	var freq string
	err := s.pool.QueryRow(ctx, preparedStatements["get_series"], id).
		Scan(&series.ID, &series.Title, &series.Units, &freq)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSeriesNotFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get series %s", id)
	}
	series.Frequency = model.Frequency(freq)

	rows, err := s.pool.Query(ctx, preparedStatements["get_observations"], id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get observations %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var date time.Time
		var val *float64
		if err := rows.Scan(&date, &val); err != nil {
			return nil, eris.Wrap(err, "postgres: scan observation")
		}
		series.Observations = append(series.Observations, model.Observation{
			SeriesID: id,
			Date:     model.DateOf(date),
			Value:    val,
		})
	}
	return series, eris.Wrapf(rows.Err(), "postgres: observations iterate %s", id)
}
