// Package ingest pulls series from FRED into the warehouse store.
package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/store"
	"github.com/sells-group/macro-eval/pkg/fred"
)

// Ingestor fetches series from FRED and persists them.
type Ingestor struct {
	client  fred.Client
	store   store.Store
	workers int
}

// New creates an Ingestor. workers < 1 ingests series sequentially.
func New(client fred.Client, st store.Store, workers int) *Ingestor {
	if workers < 1 {
		workers = 1
	}
	return &Ingestor{client: client, store: st, workers: workers}
}

// Result summarizes one ingest run.
type Result struct {
	Series       int
	Observations int64
}

// Ingest fetches and stores every listed series. It fails fast: a bad
// series ID or an unknown frequency aborts the run, since a warehouse
// with silently absent series produces misleading golden sets.
func (in *Ingestor) Ingest(ctx context.Context, seriesIDs []string) (*Result, error) {
	if len(seriesIDs) == 0 {
		return nil, eris.New("ingest: no series requested")
	}

	var total Result
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)

	counts := make([]int64, len(seriesIDs))
	for i, id := range seriesIDs {
		g.Go(func() error {
			n, err := in.ingestSeries(ctx, id)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total.Series = len(seriesIDs)
	for _, n := range counts {
		total.Observations += n
	}
	return &total, nil
}

func (in *Ingestor) ingestSeries(ctx context.Context, id string) (int64, error) {
	start := time.Now()

	info, err := in.client.GetSeries(ctx, id)
	if err != nil {
		return 0, err
	}
	freq, err := frequencyFromShort(info.FrequencyShort)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: series %s", id)
	}

	raw, err := in.client.GetObservations(ctx, id)
	if err != nil {
		return 0, err
	}

	obs := make([]model.Observation, 0, len(raw))
	for _, r := range raw {
		date, err := model.ParseDate(r.Date)
		if err != nil {
			return 0, eris.Wrapf(err, "ingest: series %s", id)
		}
		obs = append(obs, model.Observation{SeriesID: id, Date: date, Value: r.Value})
	}

	if err := in.store.UpsertSeries(ctx, model.SeriesMeta{
		ID:        info.ID,
		Title:     info.Title,
		Units:     info.Units,
		Frequency: freq,
		Notes:     info.Notes,
		FetchedAt: time.Now().UTC(),
	}); err != nil {
		return 0, err
	}

	n, err := in.store.InsertObservations(ctx, obs)
	if err != nil {
		return 0, err
	}

	zap.L().Info("ingest: series stored",
		zap.String("series_id", id),
		zap.Int64("observations", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

// frequencyFromShort maps FRED's one-letter frequency code to a
// warehouse frequency. Only monthly and quarterly series are supported.
func frequencyFromShort(short string) (model.Frequency, error) {
	switch short {
	case "M":
		return model.FrequencyMonthly, nil
	case "Q":
		return model.FrequencyQuarterly, nil
	}
	return "", eris.Errorf("ingest: unsupported frequency %q", short)
}
