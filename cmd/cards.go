package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/cards"
	"github.com/sells-group/macro-eval/internal/model"
)

var cardsFlags struct {
	out  string
	last int
}

var cardsCmd = &cobra.Command{
	Use:   "cards [SERIES_ID...]",
	Short: "Render Markdown series cards from the warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		metas, err := st.ListSeries(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]model.SeriesMeta, len(metas))
		for _, m := range metas {
			byID[m.ID] = m
		}

		ids := args
		if len(ids) == 0 {
			for _, m := range metas {
				ids = append(ids, m.ID)
			}
		}
		if len(ids) == 0 {
			return eris.New("cards: warehouse is empty, run ingest first")
		}

		if err := os.MkdirAll(cardsFlags.out, 0755); err != nil {
			return eris.Wrap(err, "cards: create output dir")
		}

		for _, id := range ids {
			meta, ok := byID[id]
			if !ok {
				return eris.Wrap(model.ErrSeriesNotFound(id), "cards")
			}
			series, err := st.GetSeries(ctx, id)
			if err != nil {
				return err
			}

			path := filepath.Join(cardsFlags.out, cards.DocID(id)+".md")
			if err := os.WriteFile(path, []byte(cards.Render(meta, series, cardsFlags.last)), 0644); err != nil {
				return eris.Wrapf(err, "cards: write %s", path)
			}
		}

		zap.L().Info("cards written",
			zap.String("dir", cardsFlags.out),
			zap.Int("series", len(ids)),
		)
		cmd.Printf("Wrote %d cards to %s\n", len(ids), cardsFlags.out)
		return nil
	},
}

func init() {
	cardsCmd.Flags().StringVar(&cardsFlags.out, "out", "cards", "output directory")
	cardsCmd.Flags().IntVar(&cardsFlags.last, "last", cards.DefaultRecentObservations, "recent observations per card")
	rootCmd.AddCommand(cardsCmd)
}
