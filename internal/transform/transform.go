// Package transform computes deterministic truth values for time-series
// query specs: point lookups, period-over-period changes, trailing moving
// averages, and windowed extrema. All computations are pure functions of
// the series observations; there is no I/O and no randomness.
package transform

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/macro-eval/internal/model"
)

// Compute evaluates a truth spec against a series. The returned error is
// either an InsufficientDataError (a normal, expected outcome over sparse
// data) or a configuration error for a malformed spec; callers distinguish
// them with model.IsInsufficientData.
func Compute(s *model.Series, spec model.TruthSpec) (*model.TruthValue, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Transform {
	case model.TransformPoint:
		return point(s, *spec.Date)
	case model.TransformMoM:
		return change(s, *spec.Date, -s.Frequency.PeriodMonths())
	case model.TransformYoY:
		return change(s, *spec.Date, -12)
	case model.TransformMA:
		return movingAverage(s, *spec.Date, spec.MAWindow)
	case model.TransformMin:
		return extremum(s, *spec.Window, false)
	case model.TransformMax:
		return extremum(s, *spec.Window, true)
	}
	return nil, eris.Errorf("transform: unhandled transform %q", spec.Transform)
}

// point returns the exact observation at d. No forward or backward fill:
// a missing or absent reading is InsufficientData.
func point(s *model.Series, d model.Date) (*model.TruthValue, error) {
	obs, ok := s.At(d)
	if !ok {
		return nil, model.InsufficientData("no observation for %s at %s", s.ID, d)
	}
	if obs.Missing() {
		return nil, model.InsufficientData("observation for %s at %s has no value", s.ID, d)
	}
	return &model.TruthValue{
		Value:           *obs.Value,
		SupportingDates: []model.Date{d},
	}, nil
}

// change returns the percent change between the observation at d and the
// observation exactly months earlier (negative months). The anchor must
// itself exist in the series; a surrounding pair is never substituted. The
// result is in percentage points (5.0 means 5%).
func change(s *model.Series, d model.Date, months int) (*model.TruthValue, error) {
	cur, ok := s.At(d)
	if !ok || cur.Missing() {
		return nil, model.InsufficientData("no anchor observation for %s at %s", s.ID, d)
	}
	base := d.AddMonths(months)
	prev, ok := s.At(base)
	if !ok || prev.Missing() {
		return nil, model.InsufficientData("no base observation for %s at %s", s.ID, base)
	}
	if *prev.Value == 0 {
		return nil, model.InsufficientData("base observation for %s at %s is zero", s.ID, base)
	}
	return &model.TruthValue{
		Value:           (*cur.Value - *prev.Value) / *prev.Value * 100.0,
		SupportingDates: []model.Date{base, d},
	}, nil
}

// movingAverage returns the arithmetic mean of the k most recent
// non-missing observations at or before d, inclusive. The window must be
// anchored on a real reading: if the observation at d itself is missing
// the result is InsufficientData, not an imputed window.
func movingAverage(s *model.Series, d model.Date, k int) (*model.TruthValue, error) {
	anchor, ok := s.At(d)
	if !ok || anchor.Missing() {
		return nil, model.InsufficientData("no anchor observation for %s at %s", s.ID, d)
	}

	dates := make([]model.Date, 0, k)
	sum := 0.0
	for i := len(s.Observations) - 1; i >= 0 && len(dates) < k; i-- {
		obs := s.Observations[i]
		if obs.Date.After(d.Time) || obs.Missing() {
			continue
		}
		dates = append(dates, obs.Date)
		sum += *obs.Value
	}
	if len(dates) < k {
		return nil, model.InsufficientData(
			"only %d of %d observations available for %s at or before %s",
			len(dates), k, s.ID, d)
	}

	// Collected newest-first; report ascending.
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return &model.TruthValue{
		Value:           sum / float64(k),
		SupportingDates: dates,
	}, nil
}

// extremum returns the min or max over all non-missing observations in an
// inclusive window. SupportingDates lists every date achieving the
// extremum, ascending, so ties resolve to the earliest date first.
func extremum(s *model.Series, w model.Window, max bool) (*model.TruthValue, error) {
	var best float64
	var dates []model.Date
	for _, obs := range s.Observations {
		if obs.Missing() || !w.Contains(obs.Date) {
			continue
		}
		v := *obs.Value
		switch {
		case len(dates) == 0:
			best = v
			dates = []model.Date{obs.Date}
		case v == best:
			dates = append(dates, obs.Date)
		case (max && v > best) || (!max && v < best):
			best = v
			dates = []model.Date{obs.Date}
		}
	}
	if len(dates) == 0 {
		return nil, model.InsufficientData(
			"no observations for %s in window %s..%s", s.ID, w.Start, w.End)
	}
	return &model.TruthValue{Value: best, SupportingDates: dates}, nil
}
