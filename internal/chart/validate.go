package chart

import (
	"math"

	"github.com/bobmcallan/strata/internal/models"
)

// Validate checks the aligned-stacking invariant: at least one series, equal
// lengths, one id per series, finite values, pairwise-equal x keys at every
// position and ascending temporal keys.
func Validate(ds models.Dataset) error {
	if len(ds) == 0 {
		return ErrEmptyDataset
	}
	n := len(ds[0])
	for s, series := range ds {
		if len(series) != n {
			return invariantError(ErrSeriesLength, s, -1, "has %d points, series 0 has %d", len(series), n)
		}
		for i, p := range series {
			if p.ID != series[0].ID {
				return invariantError(ErrSeriesIdentity, s, i, "id %d, series starts with id %d", p.ID, series[0].ID)
			}
			if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
				return invariantError(ErrNonFinite, s, i, "y=%v", p.Y)
			}
			if !p.X.Equal(ds[0][i].X) {
				return invariantError(ErrXAlignment, s, i, "x=%s, series 0 has x=%s", p.X, ds[0][i].X)
			}
			if i > 0 && p.X.Temporal && series[i-1].X.Temporal && p.X.Time.Before(series[i-1].X.Time) {
				return invariantError(ErrXOrder, s, i, "x=%s precedes x=%s", p.X, series[i-1].X)
			}
		}
	}
	return nil
}
