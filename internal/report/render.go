package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/macro-eval/internal/model"
)

// Markdown renders the report for humans: summary, failure breakdown,
// and the example failing cases.
func (r Report) Markdown(agent string) string {
	var b strings.Builder
	b.WriteString("# Eval Report\n\n")
	fmt.Fprintf(&b, "- Agent: %s\n", agent)
	fmt.Fprintf(&b, "- Total cases: %d\n", r.Total)
	fmt.Fprintf(&b, "- Passed: %d\n", r.Passed)
	fmt.Fprintf(&b, "- Failed: %d\n", r.Failed)
	fmt.Fprintf(&b, "- Pass rate: %.1f%%\n", r.PassRate)
	fmt.Fprintf(&b, "- Critical failures: %d\n", r.CriticalFailures)

	b.WriteString("\n## Failure breakdown\n")
	if len(r.FailureBreakdown) == 0 {
		b.WriteString("- None\n")
	} else {
		for _, rule := range r.BreakdownRules() {
			fmt.Fprintf(&b, "- %s: %d\n", rule, r.FailureBreakdown[rule])
		}
	}

	b.WriteString("\n## Example failed cases\n")
	if len(r.Examples) == 0 {
		b.WriteString("- None\n")
	}
	for _, ex := range r.Examples {
		fmt.Fprintf(&b, "- **%s**\n", ex.CaseID)
		fmt.Fprintf(&b, "  - Question: %s\n", ex.Question)
		for _, f := range ex.Failures {
			fmt.Fprintf(&b, "  - [%s] %s: %s\n", f.Severity, f.Rule, f.Message)
		}
	}
	return b.String()
}

// JSON renders the full report plus per-case results as an indented
// document for machine consumption.
func JSON(rep Report, agent string, results []model.CaseResult) ([]byte, error) {
	doc := struct {
		Agent   string             `json:"agent"`
		Summary Report             `json:"summary"`
		Cases   []model.CaseResult `json:"cases"`
	}{Agent: agent, Summary: rep, Cases: results}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal")
	}
	return data, nil
}
