package model

import "github.com/rotisserie/eris"

// SeriesNotFoundError marks a spec referencing a series the store cannot
// supply. Unlike InsufficientData this is a configuration fault, not a
// data-sparsity outcome, and callers treat it as fatal.
type SeriesNotFoundError struct {
	SeriesID string
}

func (e *SeriesNotFoundError) Error() string {
	return "series not found: " + e.SeriesID
}

// ErrSeriesNotFound constructs a SeriesNotFoundError.
func ErrSeriesNotFound(seriesID string) error {
	return &SeriesNotFoundError{SeriesID: seriesID}
}

// IsSeriesNotFound reports whether err is a SeriesNotFoundError.
func IsSeriesNotFound(err error) bool {
	var snf *SeriesNotFoundError
	return eris.As(err, &snf)
}
