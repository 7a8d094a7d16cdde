package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/evalset"
	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/question"
)

var questionsFlags struct {
	in       string
	out      string
	variants int
	seed     uint64
}

// questionsCmd rephrases golden cases into noisy variants. The truth
// spec and expectation stay identical; only the question text varies,
// which probes how robust an agent is to phrasing.
var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate noisy question variants for an existing golden set",
	RunE: func(cmd *cobra.Command, args []string) error {
		if questionsFlags.variants < 1 {
			return eris.New("questions: --variants must be >= 1")
		}
		ctx := cmd.Context()

		cases, err := evalset.Load(questionsFlags.in)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		metas, err := st.ListSeries(ctx)
		if err != nil {
			return err
		}
		titles := make(map[string]string, len(metas))
		for _, m := range metas {
			titles[m.ID] = m.Title
		}

		gen := question.NewGenerator(titles, questionsFlags.seed)

		var out []model.EvalCase
		skipped := 0
		for _, c := range cases {
			if c.TruthSpec == nil {
				skipped++
				continue
			}
			variants, err := gen.Variants(*c.TruthSpec, questionsFlags.variants)
			if err != nil {
				return eris.Wrapf(err, "questions: case %s", c.ID)
			}
			for _, v := range variants {
				vc := c
				vc.ID = fmt.Sprintf("%s_v%d", c.ID, v.Index)
				vc.Question = v.Question
				vc.Meta = map[string]any{
					"template": v.Template,
					"base_id":  c.ID,
				}
				out = append(out, vc)
			}
		}

		if err := evalset.Write(questionsFlags.out, out); err != nil {
			return err
		}

		zap.L().Info("question variants written",
			zap.String("path", questionsFlags.out),
			zap.Int("variants", len(out)),
			zap.Int("skipped_refusals", skipped),
		)
		cmd.Printf("Wrote %d variant cases to %s\n", len(out), questionsFlags.out)
		return nil
	},
}

func init() {
	questionsCmd.Flags().StringVar(&questionsFlags.in, "in", "golden.jsonl", "input golden JSONL path")
	questionsCmd.Flags().StringVar(&questionsFlags.out, "out", "questions.jsonl", "output JSONL path")
	questionsCmd.Flags().IntVar(&questionsFlags.variants, "variants", 3, "phrasings per case")
	questionsCmd.Flags().Uint64Var(&questionsFlags.seed, "seed", 1, "phrasing seed")
	rootCmd.AddCommand(questionsCmd)
}
