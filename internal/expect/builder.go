// Package expect derives the canonical per-case contract an agent
// response must satisfy, and caches truth values by spec identity.
package expect

import (
	"github.com/sells-group/macro-eval/internal/model"
)

// Option adjusts a built expectation.
type Option func(*model.Expectation)

// WithTolerance overrides the default absolute tolerance for one case.
func WithTolerance(tol float64) Option {
	return func(e *model.Expectation) {
		e.Tolerance = tol
	}
}

// WithCitationRequired marks the case as requiring a doc citation
// consistent with the series.
func WithCitationRequired() Option {
	return func(e *model.Expectation) {
		e.DocIDRequired = true
	}
}

// FromTruth builds the expectation for a truth-derived case. Single-date
// transforms require the anchor date in the response; windowed transforms
// require both window edges.
func FromTruth(spec model.TruthSpec, truth *model.TruthValue, opts ...Option) model.Expectation {
	e := model.Expectation{
		ShouldHaveValue: true,
		SeriesID:        spec.SeriesID,
		Transform:       spec.Transform,
		RequireDate:     !spec.Transform.NeedsWindow(),
		RequireWindow:   spec.Transform.NeedsWindow(),
		AnchorDate:      spec.Date,
		Window:          spec.Window,
		Value:           truth.Value,
		Tolerance:       model.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// FromRefusal builds the expectation for a deliberately ambiguous case:
// the correct behavior is to decline, so no value, transform, date, or
// window is required and none may be asserted.
func FromRefusal(_ model.RefusalTemplate, opts ...Option) model.Expectation {
	e := model.Expectation{
		ShouldHaveValue: false,
		Tolerance:       model.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
