package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/macro-eval/internal/model"
)

func truthExpectation() model.Expectation {
	anchor := model.MustDate("2024-03-01")
	return model.Expectation{
		ShouldHaveValue: true,
		SeriesID:        "UNRATE",
		Transform:       model.TransformMoM,
		RequireDate:     true,
		AnchorDate:      &anchor,
		Value:           4.29,
		Tolerance:       model.DefaultTolerance,
	}
}

func goodResponse() model.AgentResponse {
	v := 4.29
	tr := model.TransformMoM
	d := model.MustDate("2024-03-01")
	return model.AgentResponse{
		Value:     &v,
		Transform: &tr,
		Date:      &d,
		RawText:   "The month-over-month change was 4.29 percent.",
	}
}

func resultFor(t *testing.T, results []model.RuleResult, rule string) model.RuleResult {
	t.Helper()
	for _, r := range results {
		if r.Rule == rule {
			return r
		}
	}
	t.Fatalf("no result for rule %s", rule)
	return model.RuleResult{}
}

func TestVerify_CleanPass(t *testing.T) {
	results := New(Options{}).Verify(truthExpectation(), goodResponse())

	for _, r := range results {
		assert.True(t, r.Passed, "rule %s failed: %s", r.Rule, r.Message)
	}
	assert.True(t, model.CaseResult{Results: results}.Passed())
}

func TestVerify_RulesRunIndependently(t *testing.T) {
	// Wrong transform tag AND wrong value: both rules must report,
	// never short-circuiting after the first critical failure.
	exp := truthExpectation()
	resp := goodResponse()
	wrongTag := model.TransformPoint
	wrongValue := 261.2
	resp.Transform = &wrongTag
	resp.Value = &wrongValue

	results := New(Options{}).Verify(exp, resp)

	assert.False(t, resultFor(t, results, RuleTransform).Passed)
	assert.False(t, resultFor(t, results, RuleTruthMatches).Passed)
	// Presence and date still evaluated and passing.
	assert.True(t, resultFor(t, results, RuleValuePresence).Passed)
	assert.True(t, resultFor(t, results, RuleDate).Passed)
}

func TestVerify_TransformExactMatchOnly(t *testing.T) {
	// A point tag when mom was expected always fails, even if the
	// numeric value happens to be reused.
	exp := truthExpectation()
	resp := goodResponse()
	tag := model.TransformPoint
	resp.Transform = &tag

	results := New(Options{}).Verify(exp, resp)

	r := resultFor(t, results, RuleTransform)
	assert.False(t, r.Passed)
	assert.Equal(t, model.SeverityCritical, r.Severity)
	assert.True(t, resultFor(t, results, RuleTruthMatches).Passed)
}

func TestVerify_MissingValueDespiteTruth(t *testing.T) {
	exp := truthExpectation()
	resp := goodResponse()
	resp.Value = nil

	results := New(Options{}).Verify(exp, resp)

	presence := resultFor(t, results, RuleValuePresence)
	assert.False(t, presence.Passed)
	assert.Equal(t, model.SeverityHigh, presence.Severity)

	truth := resultFor(t, results, RuleTruthMatches)
	assert.False(t, truth.Passed)
	assert.Equal(t, model.SeverityCritical, truth.Severity)
	assert.Contains(t, truth.Message, "missing value despite truth spec")
}

func TestVerify_ToleranceBoundary(t *testing.T) {
	exp := truthExpectation()
	exp.Tolerance = 0.01

	within := goodResponse()
	v := 4.295
	within.Value = &v
	results := New(Options{}).Verify(exp, within)
	assert.True(t, resultFor(t, results, RuleTruthMatches).Passed)

	outside := goodResponse()
	v2 := 4.35
	outside.Value = &v2
	results = New(Options{}).Verify(exp, outside)
	assert.False(t, resultFor(t, results, RuleTruthMatches).Passed)
}

func TestVerify_DateMismatch(t *testing.T) {
	exp := truthExpectation()
	resp := goodResponse()
	wrong := model.MustDate("2024-02-01")
	resp.Date = &wrong

	results := New(Options{}).Verify(exp, resp)

	r := resultFor(t, results, RuleDate)
	assert.False(t, r.Passed)
	assert.Equal(t, model.SeverityCritical, r.Severity)
}

func TestVerify_WindowSidesReportedIndependently(t *testing.T) {
	w := &model.Window{Start: model.MustDate("2023-01-01"), End: model.MustDate("2023-12-01")}
	exp := model.Expectation{
		ShouldHaveValue: true,
		SeriesID:        "FEDFUNDS",
		Transform:       model.TransformMax,
		RequireWindow:   true,
		Window:          w,
		Value:           5.5,
		Tolerance:       model.DefaultTolerance,
	}
	v := 5.5
	tag := model.TransformMax
	resp := model.AgentResponse{Value: &v, Transform: &tag} // no window at all

	results := New(Options{}).Verify(exp, resp)

	var windowFailures []model.RuleResult
	for _, r := range results {
		if r.Rule == RuleWindow && !r.Passed {
			windowFailures = append(windowFailures, r)
		}
	}
	require.Len(t, windowFailures, 2)
	assert.Contains(t, windowFailures[0].Message, "window.start")
	assert.Contains(t, windowFailures[1].Message, "window.end")
	for _, r := range windowFailures {
		assert.Equal(t, model.SeverityCritical, r.Severity)
	}
}

func TestVerify_RefusalRoundTrip(t *testing.T) {
	exp := model.Expectation{ShouldHaveValue: false, Tolerance: model.DefaultTolerance}

	// A refusal answered with a value fails presence.
	v := 3.2
	answered := model.AgentResponse{Value: &v}
	results := New(Options{}).Verify(exp, answered)
	presence := resultFor(t, results, RuleValuePresence)
	assert.False(t, presence.Passed)
	// High severity alone does not flip the pass bit.
	assert.True(t, model.CaseResult{Results: results}.Passed())

	// A null-valued refusal passes, and no truth/transform/date rules apply.
	declined := model.AgentResponse{RawText: "I can't answer that without a specific series."}
	results = New(Options{}).Verify(exp, declined)
	assert.True(t, resultFor(t, results, RuleValuePresence).Passed)
	for _, r := range results {
		assert.NotEqual(t, RuleTransform, r.Rule)
		assert.NotEqual(t, RuleTruthMatches, r.Rule)
		assert.NotEqual(t, RuleDate, r.Rule)
	}
}

func TestVerify_ValueMentionedAdvisoryOnly(t *testing.T) {
	exp := truthExpectation()
	resp := goodResponse()
	resp.RawText = "It went up a bit that month."

	results := New(Options{}).Verify(exp, resp)

	r := resultFor(t, results, RuleValueMentioned)
	assert.False(t, r.Passed)
	assert.Equal(t, model.SeverityMedium, r.Severity)
	// A medium failure alone still counts as a passing case.
	assert.True(t, model.CaseResult{Results: results}.Passed())
}

func TestVerify_CitationRules(t *testing.T) {
	exp := truthExpectation()
	exp.DocIDRequired = true

	resp := goodResponse()
	results := New(Options{}).Verify(exp, resp)
	r := resultFor(t, results, RuleCitations)
	assert.False(t, r.Passed)
	assert.Equal(t, model.SeverityHigh, r.Severity)

	resp.Citations = []string{"series_UNRATE"}
	results = New(Options{}).Verify(exp, resp)
	assert.True(t, resultFor(t, results, RuleCitations).Passed)

	resp.Citations = []string{"series_CPIAUCSL"}
	results = New(Options{}).Verify(exp, resp)
	assert.False(t, resultFor(t, results, RuleCitations).Passed)

	// Severity is configurable for stricter verifier profiles.
	results = New(Options{CitationSeverity: model.SeverityCritical}).Verify(exp, resp)
	assert.Equal(t, model.SeverityCritical, resultFor(t, results, RuleCitations).Severity)
}

func TestMentionsValue(t *testing.T) {
	tests := []struct {
		text  string
		value float64
		want  bool
	}{
		{"The rate was 4.29 percent.", 4.29, true},
		{"Roughly 4.3 percent.", 4.29, true},
		{"It rose about 4 points.", 4.29, true},
		{"It rose in 2024.", 4.29, false},
		{"Inflation hit 104.29 that year.", 4.29, false},
		{"Down 2.5% on the year.", -2.5, true},
		{"The index printed 103.", 103.0, true},
		{"No numbers here.", 4.29, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mentionsValue(tt.text, tt.value), "text=%q value=%v", tt.text, tt.value)
	}
}

func TestDecodeAgentResponse_Lenient(t *testing.T) {
	// Missing keys become nulls, never a parse error.
	resp, err := model.DecodeAgentResponse([]byte(`{"text":"no idea"}`))
	require.NoError(t, err)
	assert.Nil(t, resp.Value)
	assert.Nil(t, resp.Transform)
	assert.Nil(t, resp.Date)
	assert.Nil(t, resp.Window)
	assert.Equal(t, "no idea", resp.RawText)

	resp, err = model.DecodeAgentResponse([]byte(
		`{"value":3.7,"transform":"point","date":"2024-03-01","window":null,"citations":["series_UNRATE"],"text":"3.7"}`))
	require.NoError(t, err)
	require.NotNil(t, resp.Value)
	assert.Equal(t, 3.7, *resp.Value)
	require.NotNil(t, resp.Transform)
	assert.Equal(t, model.TransformPoint, *resp.Transform)
	require.NotNil(t, resp.Date)
	assert.Equal(t, model.MustDate("2024-03-01"), *resp.Date)

	_, err = model.DecodeAgentResponse([]byte(`not json at all`))
	require.Error(t, err)
}
