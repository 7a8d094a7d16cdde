package model

// Severity is the criticality tier of a verification rule outcome. Only
// critical failures flip a case's pass/fail bit.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// RuleResult is one rule's outcome for one case. Never mutated after
// creation.
type RuleResult struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message,omitempty"`
}

// CaseResult holds the ordered rule outcomes for a single case, plus
// enough context to render a useful failure report.
type CaseResult struct {
	CaseID   string       `json:"id"`
	Question string       `json:"question"`
	Results  []RuleResult `json:"results"`
}

// Passed reports whether the case passed: no rule of critical severity
// failed. High and medium failures are recorded but do not by themselves
// fail the case.
func (cr CaseResult) Passed() bool {
	for _, r := range cr.Results {
		if !r.Passed && r.Severity == SeverityCritical {
			return false
		}
	}
	return true
}

// Failures returns the failed rule results in reporting order.
func (cr CaseResult) Failures() []RuleResult {
	var out []RuleResult
	for _, r := range cr.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
