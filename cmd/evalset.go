package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/evalset"
	"github.com/sells-group/macro-eval/internal/expect"
	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/question"
)

var evalsetFlags struct {
	out      string
	refusals string
}

var evalsetCmd = &cobra.Command{
	Use:   "evalset IN.jsonl...",
	Short: "Merge golden sets and refusal templates into one evalset",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var answered []model.EvalCase
		for _, path := range args {
			cases, err := evalset.Load(path)
			if err != nil {
				return err
			}
			answered = append(answered, cases...)
		}

		var refusalCases []model.EvalCase
		if evalsetFlags.refusals != "" {
			templates, err := question.LoadRefusals(evalsetFlags.refusals)
			if err != nil {
				return err
			}
			for _, tpl := range templates {
				refusalCases = append(refusalCases, model.EvalCase{
					ID:       tpl.ID,
					Question: tpl.Question,
					Expect:   expect.FromRefusal(tpl),
					Meta:     map[string]any{"reason": tpl.Reason},
				})
			}
		}

		merged, err := evalset.Merge(answered, refusalCases)
		if err != nil {
			return eris.Wrap(err, "evalset")
		}

		if err := evalset.Write(evalsetFlags.out, merged); err != nil {
			return err
		}

		zap.L().Info("evalset written",
			zap.String("path", evalsetFlags.out),
			zap.Int("answered", len(answered)),
			zap.Int("refusals", len(refusalCases)),
		)
		cmd.Printf("Wrote %d cases to %s\n", len(merged), evalsetFlags.out)
		return nil
	},
}

func init() {
	evalsetCmd.Flags().StringVar(&evalsetFlags.out, "out", "evalset.jsonl", "output JSONL path")
	evalsetCmd.Flags().StringVar(&evalsetFlags.refusals, "refusals", "", "refusal templates YAML path")
	rootCmd.AddCommand(evalsetCmd)
}
