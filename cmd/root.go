package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/config"
	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "macro-eval",
	Short: "Deterministic eval harness for macro time-series QA agents",
	Long:  "Ingests FRED series into a local warehouse, samples golden question sets with known answers, runs agents against them, and verifies every response with severity-tiered rules.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the configured warehouse backend.
func openStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver == "postgres" {
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	}
	return store.NewSQLite(cfg.Store.SQLitePath)
}

// loadWarehouse reads every series in the warehouse plus a titles map
// for question rendering.
func loadWarehouse(ctx context.Context, st store.Store) ([]*model.Series, map[string]string, error) {
	metas, err := st.ListSeries(ctx)
	if err != nil {
		return nil, nil, err
	}

	series := make([]*model.Series, 0, len(metas))
	titles := make(map[string]string, len(metas))
	for _, m := range metas {
		s, err := st.GetSeries(ctx, m.ID)
		if err != nil {
			return nil, nil, err
		}
		series = append(series, s)
		titles[m.ID] = m.Title
	}
	return series, titles, nil
}
