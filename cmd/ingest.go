package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/ingest"
	"github.com/sells-group/macro-eval/pkg/fred"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest SERIES_ID...",
	Short: "Fetch series from FRED into the warehouse",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		client := fred.NewClient(cfg.FRED.Key,
			fred.WithBaseURL(cfg.FRED.BaseURL),
			fred.WithRateLimit(cfg.FRED.RequestsPerMinute),
		)

		res, err := ingest.New(client, st, cfg.FRED.IngestWorkers).Ingest(ctx, args)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}

		zap.L().Info("ingest complete",
			zap.Int("series", res.Series),
			zap.Int64("observations", res.Observations),
		)
		cmd.Printf("Ingested %d series (%d observations)\n", res.Series, res.Observations)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
