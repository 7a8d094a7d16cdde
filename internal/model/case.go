package model

// EvalCase is one entry of an evalset: a rendered question bound to the
// contract its answer must satisfy. Truth-derived cases carry the spec
// that produced them; refusal cases carry only the expectation.
type EvalCase struct {
	ID        string         `json:"id"`
	Question  string         `json:"question"`
	TruthSpec *TruthSpec     `json:"truth_spec,omitempty"`
	Expect    Expectation    `json:"expect"`
	Meta      map[string]any `json:"meta,omitempty"`
}
