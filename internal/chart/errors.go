package chart

import (
	"errors"
	"fmt"
)

// Precondition errors. Callers match them with errors.Is.
var (
	ErrEmptyDataset     = errors.New("dataset has no series")
	ErrSeriesLength     = errors.New("series lengths differ")
	ErrXAlignment       = errors.New("x values are not aligned across series")
	ErrXOrder           = errors.New("x values are not ascending")
	ErrSeriesIdentity   = errors.New("series mixes point ids")
	ErrNonFinite        = errors.New("y value is not finite")
	ErrHoverIndex       = errors.New("hover index out of range")
	ErrNoMount          = errors.New("mount point is missing")
	ErrUnknownChartType = errors.New("unknown chart type")
	ErrInvalidSize      = errors.New("plot area must be positive")
	ErrNotInitialised   = errors.New("chart is not initialised")
	ErrAlreadyInit      = errors.New("chart is already initialised")
	ErrDestroyed        = errors.New("chart has been destroyed")
)

// InvariantError locates a violated data invariant.
type InvariantError struct {
	Invariant error
	Series    int // -1 when not series specific
	Index     int // -1 when not position specific
	Detail    string
}

func (e *InvariantError) Error() string {
	switch {
	case e.Series >= 0 && e.Index >= 0:
		return fmt.Sprintf("%v: series %d, index %d: %s", e.Invariant, e.Series, e.Index, e.Detail)
	case e.Series >= 0:
		return fmt.Sprintf("%v: series %d: %s", e.Invariant, e.Series, e.Detail)
	case e.Index >= 0:
		return fmt.Sprintf("%v: index %d: %s", e.Invariant, e.Index, e.Detail)
	}
	return fmt.Sprintf("%v: %s", e.Invariant, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return e.Invariant
}

func invariantError(invariant error, series, index int, format string, args ...any) *InvariantError {
	return &InvariantError{
		Invariant: invariant,
		Series:    series,
		Index:     index,
		Detail:    fmt.Sprintf(format, args...),
	}
}

// IsPrecondition reports whether err is a caller-side precondition violation
// (bad data, bad index, missing mount, bad size or type).
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrEmptyDataset, ErrSeriesLength, ErrXAlignment, ErrXOrder, ErrSeriesIdentity,
		ErrNonFinite, ErrHoverIndex, ErrNoMount, ErrUnknownChartType, ErrInvalidSize,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
