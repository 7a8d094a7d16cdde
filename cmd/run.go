package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/agent"
	"github.com/sells-group/macro-eval/internal/evalset"
	"github.com/sells-group/macro-eval/internal/report"
	"github.com/sells-group/macro-eval/internal/runner"
	"github.com/sells-group/macro-eval/internal/verify"
	"github.com/sells-group/macro-eval/pkg/anthropic"
)

var runFlags struct {
	evalset   string
	agentName string
	out       string
	jsonOut   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an agent over an evalset and verify every response",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}
		ctx := cmd.Context()

		cases, err := evalset.Load(runFlags.evalset)
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			return eris.Errorf("run: evalset %s is empty", runFlags.evalset)
		}

		ag, err := buildAgent(runFlags.agentName)
		if err != nil {
			return err
		}

		runID := uuid.New().String()
		start := time.Now()
		zap.L().Info("run started",
			zap.String("run_id", runID),
			zap.String("agent", runFlags.agentName),
			zap.Int("cases", len(cases)),
		)

		verifier := verify.New(verify.Options{})
		results, err := runner.New(ag, verifier, cfg.Eval.Workers).Run(ctx, cases)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		rep := report.Summarize(results, cfg.Eval.ReportExampleCap)

		if runFlags.out != "" {
			if err := os.WriteFile(runFlags.out, []byte(rep.Markdown(runFlags.agentName)), 0644); err != nil {
				return eris.Wrap(err, "run: write report")
			}
		}
		if runFlags.jsonOut != "" {
			data, err := report.JSON(rep, runFlags.agentName, results)
			if err != nil {
				return err
			}
			if err := os.WriteFile(runFlags.jsonOut, data, 0644); err != nil {
				return eris.Wrap(err, "run: write json report")
			}
		}

		zap.L().Info("run finished",
			zap.String("run_id", runID),
			zap.Float64("pass_rate", rep.PassRate),
			zap.Int("critical_failures", rep.CriticalFailures),
			zap.Duration("elapsed", time.Since(start)),
		)
		cmd.Printf("Pass rate: %.1f%% (%d/%d), critical failures: %d\n",
			rep.PassRate, rep.Passed, rep.Total, rep.CriticalFailures)

		if rep.PassRate < cfg.Eval.MinPassRate {
			return eris.Errorf("run: pass rate %.1f%% below threshold %.1f%%", rep.PassRate, cfg.Eval.MinPassRate)
		}
		if rep.CriticalFailures > cfg.Eval.MaxCriticalFails {
			return eris.Errorf("run: %d critical failures exceed limit %d", rep.CriticalFailures, cfg.Eval.MaxCriticalFails)
		}
		return nil
	},
}

// buildAgent constructs the agent under test. The oracle answers from
// the baked-in expectations and is the harness's own smoke test.
func buildAgent(name string) (runner.Agent, error) {
	switch name {
	case "oracle":
		return agent.Oracle{}, nil
	case "claude":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("run: anthropic.key is required for the claude agent")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return agent.NewClaude(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	}
	return nil, eris.Errorf("run: unknown agent %q", name)
}

func init() {
	runCmd.Flags().StringVar(&runFlags.evalset, "evalset", "evalset.jsonl", "evalset JSONL path")
	runCmd.Flags().StringVar(&runFlags.agentName, "agent", "oracle", "agent under test: oracle or claude")
	runCmd.Flags().StringVar(&runFlags.out, "out", "report.md", "markdown report path (empty to skip)")
	runCmd.Flags().StringVar(&runFlags.jsonOut, "json", "", "JSON report path (empty to skip)")
	rootCmd.AddCommand(runCmd)
}
