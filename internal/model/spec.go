package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Transform is the closed set of supported query transforms.
type Transform string

const (
	TransformPoint Transform = "point"
	TransformMoM   Transform = "mom"
	TransformYoY   Transform = "yoy"
	TransformMA    Transform = "ma"
	TransformMin   Transform = "min"
	TransformMax   Transform = "max"
)

// Transforms lists every transform tag in canonical order. Sampler weight
// profiles and verifier messages rely on this ordering being stable.
var Transforms = []Transform{
	TransformPoint,
	TransformMoM,
	TransformYoY,
	TransformMA,
	TransformMin,
	TransformMax,
}

// ParseTransform maps a tag to a known Transform. Unknown tags are a
// configuration error, never silently defaulted.
func ParseTransform(s string) (Transform, error) {
	tag := Transform(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range Transforms {
		if tag == t {
			return t, nil
		}
	}
	return "", eris.Errorf("model: unknown transform %q", s)
}

// NeedsWindow reports whether the transform is anchored on a date window
// rather than a single date.
func (t Transform) NeedsWindow() bool {
	return t == TransformMin || t == TransformMax
}

// Window is an inclusive [Start, End] date range.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d falls inside the window, inclusive on both ends.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// TruthSpec uniquely identifies one answerable query against the
// warehouse. Specs are immutable once sampled.
type TruthSpec struct {
	SeriesID  string    `json:"series_id"`
	Transform Transform `json:"transform"`
	Date      *Date     `json:"date,omitempty"`
	Window    *Window   `json:"window,omitempty"`
	MAWindow  int       `json:"ma_window,omitempty"`
	SeedIndex int       `json:"seed_index"`
}

// Validate checks the spec's structural invariants: single-date transforms
// carry a date, windowed transforms carry an ordered window, and ma carries
// a window length of at least 2.
func (ts TruthSpec) Validate() error {
	if ts.SeriesID == "" {
		return eris.New("model: truth spec missing series_id")
	}
	if _, err := ParseTransform(string(ts.Transform)); err != nil {
		return err
	}
	if ts.Transform.NeedsWindow() {
		if ts.Window == nil {
			return eris.Errorf("model: %s spec requires a window", ts.Transform)
		}
		if ts.Window.End.Before(ts.Window.Start.Time) {
			return eris.Errorf("model: window start %s after end %s", ts.Window.Start, ts.Window.End)
		}
		return nil
	}
	if ts.Date == nil {
		return eris.Errorf("model: %s spec requires a date", ts.Transform)
	}
	if ts.Transform == TransformMA && ts.MAWindow < 2 {
		return eris.Errorf("model: ma spec requires ma_window >= 2, got %d", ts.MAWindow)
	}
	return nil
}

// Key returns a stable identity string for the spec, used as the truth
// cache key.
func (ts TruthSpec) Key() string {
	var b strings.Builder
	b.WriteString(ts.SeriesID)
	b.WriteByte('|')
	b.WriteString(string(ts.Transform))
	if ts.Date != nil {
		b.WriteByte('|')
		b.WriteString(ts.Date.String())
	}
	if ts.Window != nil {
		fmt.Fprintf(&b, "|%s..%s", ts.Window.Start, ts.Window.End)
	}
	if ts.MAWindow > 0 {
		fmt.Fprintf(&b, "|k=%d", ts.MAWindow)
	}
	return b.String()
}

// TruthValue is the deterministic expected answer for a TruthSpec.
// SupportingDates records the observation dates the value was derived
// from, ascending.
type TruthValue struct {
	Value           float64 `json:"value"`
	SupportingDates []Date  `json:"supporting_dates"`
}

// InsufficientDataError is the normal, first-class outcome when a
// transform cannot be computed from the available observations. It is not
// a fault: the sampler detects and discards these before emission.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data: " + e.Reason
}

// InsufficientData constructs an InsufficientDataError.
func InsufficientData(format string, args ...any) error {
	return &InsufficientDataError{Reason: fmt.Sprintf(format, args...)}
}

// IsInsufficientData reports whether err is an InsufficientDataError,
// distinguishing the data-sparsity outcome from configuration errors.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return eris.As(err, &ide)
}
