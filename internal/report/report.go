// Package report folds per-case verification results into aggregate
// counts and renders them. Aggregation is a single associative fold:
// permuting the case order never changes the totals.
package report

import (
	"math"
	"sort"

	"github.com/sells-group/macro-eval/internal/model"
)

// Example is one illustrative failing case carried into the report.
type Example struct {
	CaseID   string             `json:"case_id"`
	Question string             `json:"question"`
	Failures []model.RuleResult `json:"failures"`
}

// Report is the aggregate view of a verification run. It is purely
// derived from the case results, never authoritative state.
type Report struct {
	Total            int            `json:"total"`
	Passed           int            `json:"passed"`
	Failed           int            `json:"failed"`
	PassRate         float64        `json:"pass_rate"` // 0-100, one decimal
	CriticalFailures int            `json:"critical_failures"`
	FailureBreakdown map[string]int `json:"failure_breakdown"`
	Examples         []Example      `json:"examples"`
}

// DefaultExampleCap bounds how many failing cases a report carries as
// illustrations.
const DefaultExampleCap = 5

// Summarize folds the case results into a Report. Zero cases yield a
// zero report with a 0 pass rate rather than a division error. The
// critical-failure count is summed over every failure, not deduplicated
// per case.
func Summarize(results []model.CaseResult, exampleCap int) Report {
	if exampleCap <= 0 {
		exampleCap = DefaultExampleCap
	}
	rep := Report{
		Total:            len(results),
		FailureBreakdown: make(map[string]int),
	}
	for _, cr := range results {
		if cr.Passed() {
			rep.Passed++
		} else {
			rep.Failed++
		}
		failures := cr.Failures()
		for _, f := range failures {
			rep.FailureBreakdown[f.Rule]++
			if f.Severity == model.SeverityCritical {
				rep.CriticalFailures++
			}
		}
		if !cr.Passed() && len(rep.Examples) < exampleCap {
			rep.Examples = append(rep.Examples, Example{
				CaseID:   cr.CaseID,
				Question: cr.Question,
				Failures: failures,
			})
		}
	}
	if rep.Total > 0 {
		// One-decimal resolution so the Markdown and JSON renderings agree.
		rep.PassRate = math.Round(float64(rep.Passed)/float64(rep.Total)*1000) / 10
	}
	return rep
}

// BreakdownRules returns the failure-breakdown rule names sorted for
// stable rendering.
func (r Report) BreakdownRules() []string {
	rules := make([]string, 0, len(r.FailureBreakdown))
	for rule := range r.FailureBreakdown {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	return rules
}
