package model

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Frequency is the reporting cadence of a series. It determines the step
// size used for previous-period (MoM) and previous-year (YoY) lookups.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// ParseFrequency maps a frequency label to a known Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyMonthly, FrequencyQuarterly:
		return Frequency(s), nil
	}
	return "", eris.Errorf("model: unknown frequency %q", s)
}

// PeriodMonths returns the number of months in one reporting period.
func (f Frequency) PeriodMonths() int {
	if f == FrequencyQuarterly {
		return 3
	}
	return 1
}

// SeriesMeta is the warehouse catalog row for a series, without its
// observations.
type SeriesMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Units     string    `json:"units"`
	Frequency Frequency `json:"frequency"`
	Notes     string    `json:"notes,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Observation is a single (date, value) reading. A nil Value marks a
// period the provider reported without a usable number.
type Observation struct {
	SeriesID string   `json:"series_id"`
	Date     Date     `json:"date"`
	Value    *float64 `json:"value"`
}

// Missing reports whether the observation carries no usable value.
func (o Observation) Missing() bool {
	return o.Value == nil
}

// Series is an immutable, date-ascending run of observations for one
// warehouse series. Duplicate dates are forbidden; gaps (absent dates or
// nil values) are legal. Safe for concurrent readers.
type Series struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Units        string        `json:"units"`
	Frequency    Frequency     `json:"frequency"`
	Observations []Observation `json:"observations"`

	indexOnce sync.Once
	byDate    map[Date]int
}

// At returns the observation at an exact date, if one exists. The date
// index is built once under sync.Once so concurrent lookups never race.
func (s *Series) At(d Date) (Observation, bool) {
	s.indexOnce.Do(func() {
		s.byDate = make(map[Date]int, len(s.Observations))
		for i, o := range s.Observations {
			s.byDate[o.Date] = i
		}
	})
	idx, ok := s.byDate[d]
	if !ok {
		return Observation{}, false
	}
	return s.Observations[idx], true
}

// DateRange returns the first and last observation dates. ok is false for
// a zero-length series.
func (s *Series) DateRange() (first, last Date, ok bool) {
	if len(s.Observations) == 0 {
		return Date{}, Date{}, false
	}
	return s.Observations[0].Date, s.Observations[len(s.Observations)-1].Date, true
}

// Float64 returns a pointer to v. Convenience for observation fixtures.
func Float64(v float64) *float64 {
	return &v
}
