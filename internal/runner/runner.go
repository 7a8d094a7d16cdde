// Package runner executes an evalset against an agent under test and
// verifies every response. Cases run with bounded parallelism purely to
// amortize agent latency; verification itself is pure and synchronous.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/verify"
)

// Agent answers a rendered question with a raw JSON payload in the
// agreed response shape. Implementations live in internal/agent.
type Agent interface {
	Answer(ctx context.Context, c model.EvalCase) ([]byte, error)
}

// RuleAgentError is reported when the agent call itself fails or returns
// an unparseable payload; it is critical but scoped to its own case.
const RuleAgentError = "agent_error"

// Runner drives cases through an agent and the verifier.
type Runner struct {
	agent    Agent
	verifier *verify.Verifier
	workers  int
}

// New creates a Runner. workers < 1 runs cases sequentially.
func New(agent Agent, verifier *verify.Verifier, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{agent: agent, verifier: verifier, workers: workers}
}

// Run evaluates every case and returns results in case order. A single
// bad case never aborts the rest: agent failures become a critical
// agent_error result for that case only. The returned error is reserved
// for context cancellation.
func (r *Runner) Run(ctx context.Context, cases []model.EvalCase) ([]model.CaseResult, error) {
	results := make([]model.CaseResult, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			results[i] = r.runCase(ctx, c)
			zap.L().Debug("runner: case finished",
				zap.String("case_id", c.ID),
				zap.Bool("passed", results[i].Passed()),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runCase(ctx context.Context, c model.EvalCase) model.CaseResult {
	cr := model.CaseResult{CaseID: c.ID, Question: c.Question}

	payload, err := r.agent.Answer(ctx, c)
	if err != nil {
		cr.Results = []model.RuleResult{{
			Rule:     RuleAgentError,
			Severity: model.SeverityCritical,
			Passed:   false,
			Message:  err.Error(),
		}}
		return cr
	}

	resp, err := model.DecodeAgentResponse(payload)
	if err != nil {
		cr.Results = []model.RuleResult{{
			Rule:     RuleAgentError,
			Severity: model.SeverityCritical,
			Passed:   false,
			Message:  "unparseable agent payload: " + err.Error(),
		}}
		return cr
	}

	cr.Results = r.verifier.Verify(c.Expect, resp)
	return cr
}
