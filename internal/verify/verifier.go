// Package verify applies the ordered rule set that compares an agent
// response against its expectation. Rules are independent: ordering is for
// reporting only, every applicable rule runs even after earlier failures,
// and a single case can therefore report several simultaneous failures.
package verify

import (
	"fmt"
	"math"

	"github.com/sells-group/macro-eval/internal/model"
)

// Rule names, in reporting order.
const (
	RuleValuePresence  = "expectation_value_presence"
	RuleTransform      = "expectation_transform"
	RuleDate           = "date_rules"
	RuleWindow         = "window_rules"
	RuleTruthMatches   = "truth_matches"
	RuleValueMentioned = "primary_value_mentioned"
	RuleCitations      = "citation_rules"
)

// Options tunes rule severities that the contract leaves configurable.
type Options struct {
	// CitationSeverity applies to citation_rules. Defaults to high.
	CitationSeverity model.Severity
}

// Verifier checks agent responses against expectations. It holds no
// mutable state and is safe for concurrent use.
type Verifier struct {
	opts Options
}

// New creates a Verifier, filling in default severities.
func New(opts Options) *Verifier {
	if opts.CitationSeverity == "" {
		opts.CitationSeverity = model.SeverityHigh
	}
	return &Verifier{opts: opts}
}

// Verify runs every applicable rule and returns the ordered results.
func (v *Verifier) Verify(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	var out []model.RuleResult
	out = append(out, valuePresence(exp, resp)...)
	out = append(out, transformTag(exp, resp)...)
	out = append(out, dateRules(exp, resp)...)
	out = append(out, windowRules(exp, resp)...)
	out = append(out, truthMatches(exp, resp)...)
	out = append(out, valueMentioned(exp, resp)...)
	out = append(out, v.citationRules(exp, resp)...)
	return out
}

func pass(rule string, sev model.Severity) model.RuleResult {
	return model.RuleResult{Rule: rule, Severity: sev, Passed: true}
}

func fail(rule string, sev model.Severity, format string, args ...any) model.RuleResult {
	return model.RuleResult{Rule: rule, Severity: sev, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// valuePresence checks that a value is present exactly when one is
// expected. Refusal cases must answer with a null value.
func valuePresence(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if exp.ShouldHaveValue && resp.Value == nil {
		return []model.RuleResult{fail(RuleValuePresence, model.SeverityHigh, "expected a numeric value but got null")}
	}
	if !exp.ShouldHaveValue && resp.Value != nil {
		return []model.RuleResult{fail(RuleValuePresence, model.SeverityHigh,
			"value %v present though the case expects a refusal", *resp.Value)}
	}
	return []model.RuleResult{pass(RuleValuePresence, model.SeverityHigh)}
}

// transformTag requires an exact tag match; no fuzzy matching between
// related transforms even when the numeric value would coincide.
func transformTag(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if !exp.ShouldHaveValue {
		return nil
	}
	if resp.Transform == nil {
		return []model.RuleResult{fail(RuleTransform, model.SeverityCritical,
			"transform missing, expected %q", exp.Transform)}
	}
	if *resp.Transform != exp.Transform {
		return []model.RuleResult{fail(RuleTransform, model.SeverityCritical,
			"expected transform %q but got %q", exp.Transform, *resp.Transform)}
	}
	return []model.RuleResult{pass(RuleTransform, model.SeverityCritical)}
}

func dateRules(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if !exp.RequireDate {
		return nil
	}
	if resp.Date == nil || resp.Date.IsZero() {
		return []model.RuleResult{fail(RuleDate, model.SeverityCritical, "date missing for %s transform", exp.Transform)}
	}
	if exp.AnchorDate != nil && !resp.Date.Equal(exp.AnchorDate.Time) {
		return []model.RuleResult{fail(RuleDate, model.SeverityCritical,
			"date %s does not match anchor %s", resp.Date, exp.AnchorDate)}
	}
	return []model.RuleResult{pass(RuleDate, model.SeverityCritical)}
}

// windowRules checks the start and end edges independently so that each
// missing or wrong side surfaces as its own failure.
func windowRules(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if !exp.RequireWindow {
		return nil
	}
	var out []model.RuleResult

	var start, end model.Date
	if resp.Window != nil {
		start, end = resp.Window.Start, resp.Window.End
	}
	switch {
	case start.IsZero():
		out = append(out, fail(RuleWindow, model.SeverityCritical, "window.start missing for %s transform", exp.Transform))
	case exp.Window != nil && !start.Equal(exp.Window.Start.Time):
		out = append(out, fail(RuleWindow, model.SeverityCritical,
			"window.start %s does not match %s", start, exp.Window.Start))
	}
	switch {
	case end.IsZero():
		out = append(out, fail(RuleWindow, model.SeverityCritical, "window.end missing for %s transform", exp.Transform))
	case exp.Window != nil && !end.Equal(exp.Window.End.Time):
		out = append(out, fail(RuleWindow, model.SeverityCritical,
			"window.end %s does not match %s", end, exp.Window.End))
	}
	if len(out) == 0 {
		out = append(out, pass(RuleWindow, model.SeverityCritical))
	}
	return out
}

// truthMatches compares the reported value against the computed truth
// within the case tolerance. A null value despite an expected truth is
// reported here as critical, on top of the separate presence failure.
func truthMatches(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if !exp.ShouldHaveValue {
		return nil
	}
	if resp.Value == nil {
		return []model.RuleResult{fail(RuleTruthMatches, model.SeverityCritical, "missing value despite truth spec")}
	}
	if diff := math.Abs(*resp.Value - exp.Value); diff > exp.Tolerance {
		return []model.RuleResult{fail(RuleTruthMatches, model.SeverityCritical,
			"value %v differs from truth %v (diff=%g, tol=%g)", *resp.Value, exp.Value, diff, exp.Tolerance)}
	}
	return []model.RuleResult{pass(RuleTruthMatches, model.SeverityCritical)}
}

// valueMentioned is advisory: the free-text answer should cite the
// expected number in at least one reasonable precision.
func valueMentioned(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if !exp.ShouldHaveValue || resp.RawText == "" {
		return nil
	}
	if mentionsValue(resp.RawText, exp.Value) {
		return []model.RuleResult{pass(RuleValueMentioned, model.SeverityMedium)}
	}
	return []model.RuleResult{fail(RuleValueMentioned, model.SeverityMedium,
		"answer text does not mention the expected value %v", exp.Value)}
}

func (v *Verifier) citationRules(exp model.Expectation, resp model.AgentResponse) []model.RuleResult {
	if !exp.DocIDRequired {
		return nil
	}
	if len(resp.Citations) == 0 {
		return []model.RuleResult{fail(RuleCitations, v.opts.CitationSeverity, "expected citations but none were returned")}
	}
	want := SeriesDocID(exp.SeriesID)
	for _, c := range resp.Citations {
		if c == want {
			return []model.RuleResult{pass(RuleCitations, v.opts.CitationSeverity)}
		}
	}
	return []model.RuleResult{fail(RuleCitations, v.opts.CitationSeverity,
		"no citation references %s", want)}
}

// SeriesDocID is the doc id convention binding a citation to a series.
func SeriesDocID(seriesID string) string {
	return "series_" + seriesID
}
