// Package store persists the series warehouse: a catalog of series
// metadata plus their dated observations. SQLite backs local golden-set
// work; Postgres backs shared deployments.
package store

import (
	"context"

	"github.com/sells-group/macro-eval/internal/model"
)

// Store defines the persistence interface for the series warehouse.
type Store interface {
	// Catalog
	UpsertSeries(ctx context.Context, meta model.SeriesMeta) error
	ListSeries(ctx context.Context) ([]model.SeriesMeta, error)

	// Observations. InsertObservations overwrites existing readings for
	// the same (series, date): providers revise history on re-ingest.
	InsertObservations(ctx context.Context, obs []model.Observation) (int64, error)
	GetSeries(ctx context.Context, id string) (*model.Series, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
