package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/evalset"
	"github.com/sells-group/macro-eval/internal/expect"
	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/question"
	"github.com/sells-group/macro-eval/internal/sampler"
)

var goldenFlags struct {
	out       string
	seed      uint64
	perSeries int
	profile   string
}

var goldenCmd = &cobra.Command{
	Use:   "golden",
	Short: "Sample a golden question set with known answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("seed") {
			goldenFlags.seed = cfg.Sampler.Seed
		}
		if goldenFlags.perSeries == 0 {
			goldenFlags.perSeries = cfg.Sampler.PerSeries
		}
		if goldenFlags.profile == "" {
			goldenFlags.profile = cfg.Sampler.Profile
		}
		if err := cfg.Validate("golden"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		series, titles, err := loadWarehouse(ctx, st)
		if err != nil {
			return err
		}
		if len(series) == 0 {
			return eris.New("golden: warehouse is empty, run ingest first")
		}

		profile, err := profileByName(goldenFlags.profile)
		if err != nil {
			return err
		}

		specs, err := sampler.New(series, profile, goldenFlags.seed).Sample(goldenFlags.perSeries)
		if err != nil {
			return eris.Wrap(err, "golden: sample")
		}

		byID := make(map[string]*model.Series, len(series))
		for _, s := range series {
			byID[s.ID] = s
		}
		cache := expect.NewTruthCache(func(id string) (*model.Series, bool) {
			s, ok := byID[id]
			return s, ok
		})
		gen := question.NewGenerator(titles, goldenFlags.seed)

		opts := expectOptions()
		cases := make([]model.EvalCase, 0, len(specs))
		for _, spec := range specs {
			truth, err := cache.Get(spec)
			if err != nil {
				return eris.Wrapf(err, "golden: truth for %s", spec.Key())
			}
			variants, err := gen.Variants(spec, 1)
			if err != nil {
				return eris.Wrapf(err, "golden: question for %s", spec.Key())
			}

			cases = append(cases, model.EvalCase{
				ID:        caseID(spec),
				Question:  variants[0].Question,
				TruthSpec: &spec,
				Expect:    expect.FromTruth(spec, truth, opts...),
				Meta: map[string]any{
					"template": variants[0].Template,
					"profile":  profile.Name,
					"seed":     goldenFlags.seed,
				},
			})
		}

		if err := evalset.Write(goldenFlags.out, cases); err != nil {
			return err
		}

		zap.L().Info("golden set written",
			zap.String("path", goldenFlags.out),
			zap.Int("cases", len(cases)),
			zap.Uint64("seed", goldenFlags.seed),
		)
		cmd.Printf("Wrote %d cases to %s\n", len(cases), goldenFlags.out)
		return nil
	},
}

func profileByName(name string) (sampler.Profile, error) {
	switch name {
	case "base":
		return sampler.BaseProfile(), nil
	case "tough":
		return sampler.ToughProfile(), nil
	}
	return sampler.Profile{}, eris.Errorf("golden: unknown profile %q", name)
}

func expectOptions() []expect.Option {
	opts := []expect.Option{expect.WithTolerance(cfg.Eval.Tolerance)}
	if cfg.Eval.RequireCitations {
		opts = append(opts, expect.WithCitationRequired())
	}
	return opts
}

func caseID(spec model.TruthSpec) string {
	return fmt.Sprintf("%s_%s_%04d", strings.ToLower(spec.SeriesID), spec.Transform, spec.SeedIndex)
}

func init() {
	goldenCmd.Flags().StringVar(&goldenFlags.out, "out", "golden.jsonl", "output JSONL path")
	goldenCmd.Flags().Uint64Var(&goldenFlags.seed, "seed", 0, "sampler seed (default from config)")
	goldenCmd.Flags().IntVar(&goldenFlags.perSeries, "per-series", 0, "cases per series (default from config)")
	goldenCmd.Flags().StringVar(&goldenFlags.profile, "profile", "", "sampling profile: base or tough (default from config)")
	rootCmd.AddCommand(goldenCmd)
}
