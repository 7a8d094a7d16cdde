package model

// DefaultTolerance is the absolute numeric tolerance applied to truth
// comparisons unless a case overrides it. It matches the raw output units
// of the transform engine (percentage points for mom/yoy).
const DefaultTolerance = 1e-6

// Expectation is the canonical contract an agent response must satisfy
// for one case. It is derived once, before any agent call, from either a
// TruthSpec+TruthValue pair or a RefusalTemplate, and is read-only to the
// verification engine.
type Expectation struct {
	ShouldHaveValue bool      `json:"should_have_value"`
	SeriesID        string    `json:"series_id,omitempty"`
	Transform       Transform `json:"transform,omitempty"`
	RequireDate     bool      `json:"require_date"`
	RequireWindow   bool      `json:"require_window"`
	AnchorDate      *Date     `json:"anchor_date,omitempty"`
	Window          *Window   `json:"window,omitempty"`
	Value           float64   `json:"value,omitempty"`
	Tolerance       float64   `json:"tolerance,omitempty"`
	DocIDRequired   bool      `json:"doc_id_required"`
}

// RefusalTemplate is a hand-authored ambiguous prompt with no associated
// truth spec. The correct agent behavior is to decline to answer.
type RefusalTemplate struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Reason   string `json:"reason" yaml:"reason"`
}
