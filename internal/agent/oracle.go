// Package agent provides implementations of the runner's Agent
// interface: a deterministic oracle for harness self-tests and a
// Claude-backed agent for real evaluations.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/verify"
)

// Oracle answers every case perfectly from its own expectation. It
// exercises the full runner/verifier pipeline end to end: a healthy
// harness must give the oracle a 100% pass rate with zero critical
// failures, which makes it the smoke test for verifier regressions.
type Oracle struct{}

// Answer builds the canonical correct payload for the case.
func (Oracle) Answer(_ context.Context, c model.EvalCase) ([]byte, error) {
	if !c.Expect.ShouldHaveValue {
		return json.Marshal(map[string]any{
			"value": nil,
			"text":  "This question is ambiguous; I can't resolve it to a single series and period.",
		})
	}
	if c.TruthSpec == nil {
		return nil, eris.Errorf("oracle: case %s expects a value but has no truth spec", c.ID)
	}

	payload := map[string]any{
		"value":     c.Expect.Value,
		"transform": string(c.Expect.Transform),
		"citations": []string{verify.SeriesDocID(c.Expect.SeriesID)},
		"text":      fmt.Sprintf("The %s value for %s is %v.", c.Expect.Transform, c.Expect.SeriesID, c.Expect.Value),
	}
	if c.Expect.AnchorDate != nil {
		payload["date"] = c.Expect.AnchorDate.String()
	}
	if c.Expect.Window != nil {
		payload["window"] = map[string]string{
			"start": c.Expect.Window.Start.String(),
			"end":   c.Expect.Window.End.String(),
		}
	}
	return json.Marshal(payload)
}
